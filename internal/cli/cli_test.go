package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sammcj/mcp-sheets/internal/dispatch"
	"github.com/sammcj/mcp-sheets/internal/gateway"
	"github.com/sammcj/mcp-sheets/internal/registry"
	"github.com/sammcj/mcp-sheets/internal/schema"
	"github.com/sammcj/mcp-sheets/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(t *testing.T, output OutputFormat, disabled ...string) (*Runner, *testutils.StubGateway, *bytes.Buffer) {
	t.Helper()
	logger := testutils.CreateTestLogger()
	reg := registry.New(logger, disabled)
	stub := testutils.NewStubGateway()
	d, err := dispatch.New(reg, stub, dispatch.Options{Logger: logger, Transport: "cli"})
	require.NoError(t, err)

	var buf bytes.Buffer
	return NewRunner(reg, d, output, &buf), stub, &buf
}

func lookup(t *testing.T, name string) schema.ToolDescriptor {
	t.Helper()
	desc, ok := registry.New(nil, nil).Lookup(name)
	require.True(t, ok)
	return desc
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutputText, f)

	f, err = ParseOutputFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, f)

	_, err = ParseOutputFormat("yaml")
	assert.Error(t, err)
}

func TestListTools_Text(t *testing.T) {
	r, _, buf := newRunner(t, OutputText, schema.CreateSpreadsheet)
	require.NoError(t, r.ListTools())

	out := buf.String()
	assert.Contains(t, out, "list_spreadsheets")
	assert.Contains(t, out, "append_row")
	assert.NotContains(t, out, "create_spreadsheet")
	assert.Equal(t, len(schema.Tools())-1, testutils.CountLines(out))
}

func TestListTools_JSON(t *testing.T) {
	r, _, buf := newRunner(t, OutputJSON)
	require.NoError(t, r.ListTools())

	var entries []struct {
		Name     string `json:"name"`
		ReadOnly bool   `json:"read_only"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, len(schema.Tools()))
	assert.Equal(t, "append_row", entries[0].Name)

	for _, e := range entries {
		if e.Name == schema.ReadWorksheet {
			assert.True(t, e.ReadOnly)
		}
	}
}

func TestHelpTool(t *testing.T) {
	r, _, buf := newRunner(t, OutputText)
	require.NoError(t, r.HelpTool("update-cell"))

	out := buf.String()
	assert.Contains(t, out, "Tool: update_cell")
	assert.Contains(t, out, "--spreadsheet-id")
	assert.Contains(t, out, "(required)")
	assert.Contains(t, out, "string|number|boolean|null")

	buf.Reset()
	require.NoError(t, r.HelpTool(schema.CreateWorksheet))
	assert.Contains(t, buf.String(), "(default 100)")

	assert.Error(t, r.HelpTool("delete_everything"))
}

func TestHelpTool_JSON(t *testing.T) {
	r, _, buf := newRunner(t, OutputJSON)
	require.NoError(t, r.HelpTool(schema.AppendRow))

	var def map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &def))
	assert.Equal(t, "append_row", def["name"])
	assert.Contains(t, def, "inputSchema")
}

func TestRunTool_Flags(t *testing.T) {
	r, stub, buf := newRunner(t, OutputText)

	err := r.RunTool(testutils.CreateTestContext(), "update-cell", []string{
		"--spreadsheet-id=abc", "--worksheet-name", "Sheet1", "--cell=B2", "--value=42",
	})
	require.NoError(t, err)

	assert.Equal(t, "Successfully updated cell B2 in worksheet 'Sheet1' to value: 42\n", buf.String())
	call := stub.LastCall()
	assert.Equal(t, "WriteCell", call.Op)
	assert.Equal(t, []any{"abc", "Sheet1", "B2", float64(42)}, call.Args)
}

func TestRunTool_JSONArgument(t *testing.T) {
	r, stub, _ := newRunner(t, OutputText)

	err := r.RunTool(testutils.CreateTestContext(), schema.UpdateRange, []string{
		`{"spreadsheet_id":"abc","worksheet_name":"Sheet1","range":"A1:B2","values":[["a",1],["b",true]]}`,
		"--worksheet-name=Override",
	})
	require.NoError(t, err)

	call := stub.LastCall()
	assert.Equal(t, "WriteRange", call.Op)
	assert.Equal(t, "Override", call.Args[1])
	assert.Equal(t, gateway.Grid{{"a", float64(1)}, {"b", true}}, call.Args[3])
}

func TestRunTool_JSONOutput(t *testing.T) {
	r, _, buf := newRunner(t, OutputJSON)

	err := r.RunTool(testutils.CreateTestContext(), schema.CreateWorksheet, []string{
		"--spreadsheet-id=abc", "--title=Q3",
	})
	require.NoError(t, err)

	var out struct {
		Tool    string `json:"tool"`
		Outcome string `json:"outcome"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "create_worksheet", out.Tool)
	assert.Equal(t, "succeeded", out.Outcome)
	assert.Contains(t, out.Content, "Q3")
}

func TestRunTool_NotFoundIsNotAnError(t *testing.T) {
	r, stub, buf := newRunner(t, OutputText)
	stub.Err = gateway.NewWorksheetNotFound("Missing")

	err := r.RunTool(testutils.CreateTestContext(), schema.ReadWorksheet, []string{
		"--spreadsheet-id=abc", "--worksheet-name=Missing",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Worksheet 'Missing' not found")
}

func TestRunTool_Errors(t *testing.T) {
	r, stub, _ := newRunner(t, OutputText, schema.CreateSpreadsheet)
	ctx := testutils.CreateTestContext()

	err := r.RunTool(ctx, "nope", nil)
	assert.ErrorContains(t, err, "unknown tool")

	err = r.RunTool(ctx, schema.CreateSpreadsheet, []string{"--title=x"})
	assert.ErrorContains(t, err, "unknown tool")

	err = r.RunTool(ctx, schema.ReadWorksheet, []string{"--spreadsheet-id=abc"})
	assert.ErrorContains(t, err, "worksheet")

	err = r.RunTool(ctx, schema.ReadWorksheet, []string{"stray"})
	assert.ErrorContains(t, err, "unexpected argument")

	err = r.RunTool(ctx, schema.ReadWorksheet, []string{"--worksheet-name"})
	assert.ErrorContains(t, err, "requires a value")

	assert.Zero(t, stub.CallCount())
}

func TestParseArgs_CellValueKeepsNonJSONText(t *testing.T) {
	tests := []struct {
		arg  string
		want any
	}{
		{"--value=007", "007"},
		{`--value="42"`, "42"},
		{"--value=42", float64(42)},
		{"--value=-1.5", float64(-1.5)},
		{"--value=null", "null"},
		{"--value=12-34", "12-34"},
		{"--value=NaN", "NaN"},
		{`--value=[1]`, "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			params, err := parseArgs([]string{tt.arg}, lookup(t, schema.UpdateCell))
			require.NoError(t, err)
			assert.Equal(t, tt.want, params["value"])
		})
	}
}

func TestParseArgs_Coercion(t *testing.T) {
	params, err := parseArgs([]string{
		"--spreadsheet-id=abc", "--title=Q3", "--rows=10", "--cols", "4",
	}, lookup(t, schema.CreateWorksheet))
	require.NoError(t, err)
	assert.Equal(t, float64(10), params["rows"])
	assert.Equal(t, float64(4), params["cols"])

	params, err = parseArgs([]string{"--values=a,b,3"}, lookup(t, schema.AppendRow))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "3"}, params["values"])

	params, err = parseArgs([]string{`--values=["a",2,true,null]`}, lookup(t, schema.AppendRow))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", float64(2), true, nil}, params["values"])

	params, err = parseArgs([]string{"--value=true"}, lookup(t, schema.UpdateCell))
	require.NoError(t, err)
	assert.Equal(t, true, params["value"])

	params, err = parseArgs([]string{"--value=hello"}, lookup(t, schema.UpdateCell))
	require.NoError(t, err)
	assert.Equal(t, "hello", params["value"])

	_, err = parseArgs([]string{"{not json"}, lookup(t, schema.UpdateCell))
	assert.Error(t, err)
}
