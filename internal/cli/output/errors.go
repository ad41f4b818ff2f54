package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CommonsSwarm/evmscripter/internal/module"
	"gopkg.in/yaml.v3"
)

// ErrorOutput is the structured form of a failed run.
type ErrorOutput struct {
	Error module.Report `json:"error" yaml:"error"`
}

// RenderError writes err to the error stream. When src is non-empty and
// err carries a position, the offending source line is quoted with a
// caret under the column.
func (r *Renderer) RenderError(err error, src string) {
	report := module.NewReport(err)

	switch r.EffectiveMode() {
	case ModeJSON:
		enc := json.NewEncoder(r.errOut)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ErrorOutput{Error: report})
		return
	case ModeYAML:
		b, merr := yaml.Marshal(ErrorOutput{Error: report})
		if merr == nil {
			_, _ = r.errOut.Write(b)
			return
		}
	}

	_, _ = fmt.Fprintf(r.errOut, "%s %s\n", r.styles.Error.Render(report.Kind+":"), report.Message)
	if excerpt := sourceExcerpt(src, report.Line, report.Column); excerpt != "" {
		_, _ = fmt.Fprint(r.errOut, excerpt)
	}
}

// sourceExcerpt returns the line-th line of src followed by a caret line.
func sourceExcerpt(src string, line, column int) string {
	if src == "" || line < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return ""
	}
	text := strings.TrimRight(lines[line-1], "\r")
	if column < 1 {
		column = 1
	}
	prefix := fmt.Sprintf("%4d | ", line)
	return fmt.Sprintf("%s%s\n%s^\n", prefix, text, strings.Repeat(" ", len(prefix)+column-1))
}
