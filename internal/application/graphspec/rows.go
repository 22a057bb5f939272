package graphspec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row is one node definition from the tabular source.
type Row struct {
	// Line is the 1-based source line of the row, used in messages.
	Line        int
	GraphName   string
	Node        string
	AgentType   string
	Context     string
	Prompt      string
	Edge        string
	SuccessNext string
	FailureNext string
	InputFields string
	OutputField string
	Description string
}

// column keys after header normalisation.
const (
	colGraphName   = "graphname"
	colNode        = "node"
	colAgentType   = "agenttype"
	colContext     = "context"
	colPrompt      = "prompt"
	colEdge        = "edge"
	colSuccessNext = "successnext"
	colFailureNext = "failurenext"
	colInputFields = "inputfields"
	colOutputField = "outputfield"
	colDescription = "description"
)

var requiredColumns = []string{colGraphName, colNode}

// ReadRows parses CSV source into rows. Header matching ignores case, spaces,
// underscores and hyphens; unknown columns are ignored.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source is empty: missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("duplicate column %q in header", h)
		}
		index[key] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if isBlank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		rows = append(rows, Row{
			Line:        line,
			GraphName:   strings.TrimSpace(get(colGraphName)),
			Node:        strings.TrimSpace(get(colNode)),
			AgentType:   strings.TrimSpace(get(colAgentType)),
			Context:     get(colContext),
			Prompt:      get(colPrompt),
			Edge:        get(colEdge),
			SuccessNext: get(colSuccessNext),
			FailureNext: get(colFailureNext),
			InputFields: get(colInputFields),
			OutputField: strings.TrimSpace(get(colOutputField)),
			Description: get(colDescription),
		})
	}

	return rows, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(h)
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
