package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/CommonsSwarm/evmscripter/internal/interpreter"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces bursts of write events from editors.
const watchDebounce = 100 * time.Millisecond

// RunOptions holds options for the run command.
type RunOptions struct {
	Watch bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Interpret a script into a batch of actions",
		Long: `Interpret a script and print the resulting actions.

The script is read from the given file, or from stdin when no file is given.
Nothing is sent to the chain: contract reads are made to resolve names,
permissions and nonces, and the actions are printed for submission by
another tool.`,
		Example: `  # Interpret a script file
  evmcl run upgrade.evm

  # Read the script from stdin and print JSON
  cat upgrade.evm | evmcl run -o json

  # Re-run whenever the file changes
  evmcl run upgrade.evm --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runScript(cmd, path, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run the script when the file changes")
	return cmd
}

func runScript(cmd *cobra.Command, path string, opts *RunOptions) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)

	if opts.Watch && (path == "" || path == "-") {
		return fmt.Errorf("--watch requires a script file")
	}

	interp, cleanup, err := cc.NewInterpreter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if !opts.Watch {
		return cc.interpretFile(ctx, cmd, interp, path)
	}

	// Errors are rendered and watching continues.
	_ = cc.interpretFile(ctx, cmd, interp, path)
	return cc.watch(ctx, path, func() {
		cc.Renderer.Muted(fmt.Sprintf("%s changed, re-running", filepath.Base(path)))
		_ = cc.interpretFile(ctx, cmd, interp, path)
	})
}

func (c *CommandContext) interpretFile(ctx context.Context, cmd *cobra.Command, interp *interpreter.Interpreter, path string) error {
	src, name, err := readScript(cmd, path)
	if err != nil {
		return err
	}

	start := time.Now()
	actions, err := interp.Interpret(ctx, src)
	if err != nil {
		c.Logger.Debug("script failed", "script", name, "error", err)
		c.Renderer.RenderError(err, src)
		return ErrScriptFailed
	}
	c.Logger.Debug("script interpreted", "script", name, "actions", len(actions), "duration", time.Since(start))
	return c.Renderer.RenderActions(actions)
}

// watch calls onChange after each write to path until ctx is cancelled.
// The parent directory is watched so editors that replace the file on save
// keep triggering events.
func (c *CommandContext) watch(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	c.Logger.Debug("watching script", "path", abs)

	var debounce *time.Timer
	changed := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Error("watcher error", "error", err)
		}
	}
}
