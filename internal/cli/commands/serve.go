package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/CommonsSwarm/evmscripter/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interpreter over HTTP",
		Long: `Start an HTTP API around the interpreter.

Endpoints:
  POST /interpret   {"script": "..."} -> {"actions": [...]}
  GET  /modules     built-in modules with their commands and helpers
  GET  /healthz     liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cc := NewCommandContext(cmd)
			interp, cleanup, err := cc.NewInterpreter(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sc := cc.Cfg.GetServerConfig()
			return server.New(server.Config{
				Interpreter: interp,
				Registry:    cc.Registry,
				Port:        sc.Port,
				ReadTimeout: sc.ReadTimeout,
				Logger:      cc.Logger,
			}).Serve(ctx)
		},
	}

	cmd.Flags().Int("port", 0, "Port to listen on (default 8745)")
	cmd.Flags().Duration("read-timeout", 0, "Request read timeout (default 10s)")
	return cmd
}
