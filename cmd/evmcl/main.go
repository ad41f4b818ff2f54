// Package main provides the evmcl command.
package main

import (
	"os"

	"github.com/CommonsSwarm/evmscripter/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
