package output

import (
	"fmt"
	"strings"

	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/jedib0t/go-pretty/v6/table"
)

// ActionsOutput is the structured form of an action batch.
type ActionsOutput struct {
	Actions []module.Action `json:"actions" yaml:"actions"`
}

// RenderActions writes an action batch in the effective mode.
func (r *Renderer) RenderActions(actions []module.Action) error {
	if actions == nil {
		actions = []module.Action{}
	}
	if ok, err := r.structured(ActionsOutput{Actions: actions}); ok {
		return err
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.renderActionsMarkdown(actions)
		return nil
	}

	if len(actions) == 0 {
		r.Println(r.styles.Muted.Render("(0 actions)"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "To", "Value", "Data"})
	for i, a := range actions {
		t.AppendRow(table.Row{i + 1, r.styles.Address.Render(a.To.Hex()), formatValue(a), hexutil.Encode(a.Data)})
	}
	t.Render()
	r.Printf("(%d %s)\n", len(actions), pluralize(len(actions), "action"))
	return nil
}

func (r *Renderer) renderActionsMarkdown(actions []module.Action) {
	r.Println(FormatHeader(2, fmt.Sprintf("Actions (%d)", len(actions))))
	r.Println()
	if len(actions) == 0 {
		r.Println("(0 actions)")
		return
	}
	r.Println("| # | To | Value | Data |")
	r.Println("| --- | --- | --- | --- |")
	for i, a := range actions {
		r.Printf("| %d | `%s` | %s | `%s` |\n", i+1, a.To.Hex(), formatValue(a), hexutil.Encode(a.Data))
	}
}

func formatValue(a module.Action) string {
	if a.Value == nil {
		return "-"
	}
	return a.Value.String()
}

// FormatHeader formats a markdown header of the given level.
func FormatHeader(level int, text string) string {
	return strings.Repeat("#", level) + " " + text
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
