package graphspec

import (
	"strings"

	"github.com/aescanero/dagoc/pkg/domain"
)

// TargetDelimiter separates parallel targets within one edge cell.
const TargetDelimiter = "|"

// ParseEdgeTarget normalises the raw text of one edge cell.
//
// Blank text is Absent. Otherwise the text is split on "|", pieces are trimmed
// and empty pieces dropped. One remaining piece is Single even if a pipe was
// present; two or more distinct pieces are Parallel in source order. Degraded
// input never fails: it is reported through the returned warnings.
func ParseEdgeTarget(raw string) (domain.EdgeTarget, []string) {
	if strings.TrimSpace(raw) == "" {
		return domain.EdgeTarget{}, nil
	}

	var warnings []string
	pieces := strings.Split(raw, TargetDelimiter)
	names := make([]string, 0, len(pieces))
	seen := make(map[string]struct{}, len(pieces))
	empty := 0

	for _, piece := range pieces {
		name := strings.TrimSpace(piece)
		if name == "" {
			empty++
			continue
		}
		if _, dup := seen[name]; dup {
			warnings = append(warnings, "duplicate target "+quote(name)+" ignored")
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if empty > 0 {
		warnings = append(warnings, "empty target segment dropped")
	}
	if len(pieces) > 1 && len(names) == 1 {
		warnings = append(warnings, "target list collapsed to single target "+quote(names[0]))
	}

	// names are trimmed, non-empty and distinct, so construction cannot fail.
	target, _ := domain.NewEdgeTarget(names...)
	return target, warnings
}

// ParseFieldList splits a "|" delimited field list such as input_fields.
func ParseFieldList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var fields []string
	for _, piece := range strings.Split(raw, TargetDelimiter) {
		if f := strings.TrimSpace(piece); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func quote(s string) string {
	return `"` + s + `"`
}
