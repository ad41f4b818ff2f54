package output

import (
	"strings"

	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/jedib0t/go-pretty/v6/table"
)

// ModulesOutput is the structured form of the module listing.
type ModulesOutput struct {
	Modules []module.Info `json:"modules" yaml:"modules"`
}

// RenderModules lists modules with their commands and helpers.
func (r *Renderer) RenderModules(defs []*module.Definition) error {
	infos := make([]module.Info, len(defs))
	for i, def := range defs {
		infos[i] = def.Info()
	}
	if ok, err := r.structured(ModulesOutput{Modules: infos}); ok {
		return err
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(2, "Modules"))
		r.Println()
		r.Println("| Module | Alias | Commands | Helpers |")
		r.Println("| --- | --- | --- | --- |")
		for _, info := range infos {
			r.Printf("| %s | %s | %s | %s |\n", info.Name, info.Alias, strings.Join(info.Commands, ", "), helperList(info.Helpers))
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Module", "Alias", "Commands", "Helpers"})
	for _, info := range infos {
		t.AppendRow(table.Row{r.styles.Bold.Render(info.Name), info.Alias, strings.Join(info.Commands, ", "), helperList(info.Helpers)})
	}
	t.Render()
	return nil
}

func helperList(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "@" + n
	}
	return strings.Join(out, ", ")
}
