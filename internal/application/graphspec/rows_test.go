package graphspec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	source := "GraphName,Node,Agent_Type,Edge,Success_Next,Failure_Next,Input_Fields,Output_Field,Prompt,Extra\n" +
		"flow,Start,default,,A|B,Err,question,answer,\"Say hi, politely\",ignored\n" +
		",,,,,,,,,\n" +
		"flow,A,echo,End,,,,,,\n"

	rows, err := ReadRows(strings.NewReader(source))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{
		Line:        2,
		GraphName:   "flow",
		Node:        "Start",
		AgentType:   "default",
		SuccessNext: "A|B",
		FailureNext: "Err",
		InputFields: "question",
		OutputField: "answer",
		Prompt:      "Say hi, politely",
	}, rows[0])
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "End", rows[1].Edge)
}

func TestReadRows_HeaderVariants(t *testing.T) {
	testCases := []struct {
		name   string
		header string
	}{
		{name: "camel case", header: "GraphName,Node,Edge"},
		{name: "snake case", header: "graph_name,node,edge"},
		{name: "spaced", header: "Graph Name, Node ,EDGE"},
		{name: "byte order mark", header: "\ufeffGraphName,Node,Edge"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := ReadRows(strings.NewReader(tc.header + "\nflow,A,B\n"))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "flow", rows[0].GraphName)
			assert.Equal(t, "A", rows[0].Node)
			assert.Equal(t, "B", rows[0].Edge)
		})
	}
}

func TestReadRows_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		errMsg string
	}{
		{name: "empty source", source: "", errMsg: "missing header"},
		{name: "missing node column", source: "GraphName,Edge\nflow,A\n", errMsg: `missing required column "node"`},
		{name: "duplicate column", source: "GraphName,Node,graph_name\n", errMsg: "duplicate column"},
		{name: "malformed quoting", source: "GraphName,Node\nflow,\"A\n", errMsg: "failed to read row"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadRows(strings.NewReader(tc.source))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestReadRows_ShortRecords(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("GraphName,Node,Edge,Prompt\nflow,A\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Edge)
	assert.Empty(t, rows[0].Prompt)
}
