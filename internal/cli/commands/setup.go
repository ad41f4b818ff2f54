package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/CommonsSwarm/evmscripter/internal/chain"
	"github.com/CommonsSwarm/evmscripter/internal/cli/config"
	"github.com/CommonsSwarm/evmscripter/internal/cli/output"
	"github.com/CommonsSwarm/evmscripter/internal/interpreter"
	"github.com/CommonsSwarm/evmscripter/internal/ipfs"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/internal/modules"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrScriptFailed is returned after a script error has been rendered, so
// callers know not to print it again.
var ErrScriptFailed = errors.New("script failed")

// Dialer opens the chain client for url. Tests replace it with a fake.
type Dialer func(ctx context.Context, url string, from common.Address) (chain.Client, func(), error)

// DialChain is the Dialer used by commands that interpret scripts.
var DialChain Dialer = func(ctx context.Context, url string, from common.Address) (chain.Client, func(), error) {
	c, err := chain.Dial(ctx, url, from)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Registry *module.Registry
}

// NewCommandContext creates a CommandContext without an interpreter.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
		Registry: modules.Default(),
	}
}

// NewInterpreter dials the configured chain and builds an interpreter over
// the built-in modules. The returned cleanup closes the chain client.
func (c *CommandContext) NewInterpreter(ctx context.Context) (*interpreter.Interpreter, func(), error) {
	client, closeFn, err := DialChain(ctx, c.Cfg.RPCURL, c.Cfg.FromAddress())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", c.Cfg.RPCURL, err)
	}
	c.Logger.Debug("chain client ready", "rpc_url", c.Cfg.RPCURL, "from", c.Cfg.FromAddress().Hex())

	interp := interpreter.New(interpreter.Config{
		Client: client,
		Artifacts: ipfs.NewFetcher(ipfs.Config{
			Gateway: c.Cfg.IPFSGateway,
			Logger:  c.Logger,
		}),
		Registry:    c.Registry,
		ENSRegistry: c.Cfg.ENSRegistryAddress(),
		Logger:      c.Logger,
		Concurrency: c.Cfg.Concurrency,
	})
	return interp, closeFn, nil
}

// getConfig returns the current configuration, loading defaults and
// environment variables when no command has loaded it yet.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	if cfg, err := config.LoadConfig("", nil); err == nil {
		return cfg
	}
	return &config.Config{
		RPCURL:       config.DefaultRPCURL,
		From:         config.DefaultFrom,
		IPFSGateway:  config.DefaultIPFSGateway,
		Concurrency:  config.DefaultConcurrency,
		OutputFormat: config.DefaultOutput,
		LogLevel:     config.DefaultLogLevel,
		LogFormat:    config.DefaultLogFormat,
	}
}

// readScript reads the script at path, or stdin when path is empty or "-".
func readScript(cmd *cobra.Command, path string) (string, string, error) {
	if path == "" || path == "-" {
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return "", "", errors.New("no script given: pass a file or pipe one on stdin")
		}
		b, err := io.ReadAll(in)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), "<stdin>", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(b), path, nil
}
