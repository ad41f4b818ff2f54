package commands

import (
	"github.com/CommonsSwarm/evmscripter/pkg/parser"
	"github.com/spf13/cobra"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the syntax tree of a script",
		Long: `Parse a script without interpreting it and print its syntax tree as YAML
(or JSON with -o json). No chain connection is made.`,
		Example: `  evmcl parse upgrade.evm
  echo 'exec 0x... "pause()"' | evmcl parse -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cc := NewCommandContext(cmd)

			src, _, err := readScript(cmd, path)
			if err != nil {
				return err
			}
			script, err := parser.Parse(src)
			if err != nil {
				cc.Renderer.RenderError(err, src)
				return ErrScriptFailed
			}
			return cc.Renderer.RenderScript(script)
		},
	}
}
