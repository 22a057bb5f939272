package scaffold

import "text/template"

var stubTemplate = template.Must(template.New("stub").Funcs(template.FuncMap{
	"quote": quote,
}).Parse(`// Code scaffolded by dagoc for graph {{ quote .Graph }}. Edit freely; dagoc
// will not overwrite this file unless scaffolding is forced.

package {{ .Package }}

{{ range .Stubs }}
// {{ .Func }} routes node {{ quote $.Node }} on the {{ quote .Condition }} condition.
//
// Returns: {{ .ReturnType }}
// Example: {{ .Example }}
{{- if .Parallel }}
// Parallel: yes. The executor runs all {{ .Cardinality }} returned nodes in the
// next concurrency step.
{{- else }}
// Parallel: no. Execution continues sequentially.
{{- end }}
func {{ .Func }}(state map[string]any) {{ .ReturnType }} {
	return {{ .Example }}
}
{{ end }}
`))

type stubFile struct {
	Graph   string
	Package string
	Node    string
	Stubs   []stub
}

type stub struct {
	Func        string
	Condition   string
	ReturnType  string
	Example     string
	Parallel    bool
	Cardinality int
}
