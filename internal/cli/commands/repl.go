package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/CommonsSwarm/evmscripter/internal/interpreter"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "evmcl> "
	replContinuePrompt = "  ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Write scripts interactively",
		Long: `Start an interactive session. Lines are collected into a script buffer;
.run interprets the whole buffer and prints the resulting actions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cc := NewCommandContext(cmd)

			interp, cleanup, err := cc.NewInterpreter(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return runREPL(ctx, cmd, cc, interp)
		},
	}
}

func runREPL(ctx context.Context, cmd *cobra.Command, cc *CommandContext, interp *interpreter.Interpreter) error {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".evmcl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(cc),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "evmcl REPL. Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	session := &replSession{cc: cc, interp: interp, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if session.handle(ctx, line) {
			return nil
		}
		if session.buffer.Len() > 0 {
			rl.SetPrompt(replContinuePrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

// replSession holds the script buffer of a REPL.
type replSession struct {
	cc     *CommandContext
	interp *interpreter.Interpreter
	out    io.Writer
	errOut io.Writer
	buffer strings.Builder
}

func (s *replSession) reset() {
	s.buffer.Reset()
}

// handle processes one input line and reports whether the session ended.
func (s *replSession) handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ".") {
		if trimmed != "" {
			s.buffer.WriteString(line)
			s.buffer.WriteString("\n")
		}
		return false
	}

	switch strings.ToLower(strings.Fields(trimmed)[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".run":
		src := s.buffer.String()
		actions, err := s.interp.Interpret(ctx, src)
		if err != nil {
			s.cc.Renderer.RenderError(err, src)
			return false
		}
		if err := s.cc.Renderer.RenderActions(actions); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
		s.reset()

	case ".show":
		_, _ = fmt.Fprint(s.out, s.buffer.String())

	case ".reset":
		s.reset()

	case ".modules":
		if err := s.cc.Renderer.RenderModules(s.cc.Registry.All()); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", trimmed)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .run            Interpret the buffered script and print its actions
  .show           Print the buffered script
  .reset          Clear the buffered script
  .modules        List the modules scripts can load
  .help           Show this help message
  .quit / .exit   Exit the REPL

Tips:
  - Every other line is appended to the script buffer
  - A successful .run clears the buffer; a failed one keeps it for editing
  - Ctrl-C clears the buffer
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and the commands of every
// built-in module.
func newREPLCompleter(cc *CommandContext) *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".run"),
		readline.PcItem(".show"),
		readline.PcItem(".reset"),
		readline.PcItem(".modules"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
	}
	for _, def := range cc.Registry.All() {
		for _, name := range def.CommandNames() {
			if def.Name == interpreter.StdModule {
				items = append(items, readline.PcItem(name))
				continue
			}
			items = append(items, readline.PcItem(def.Name+":"+name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}
