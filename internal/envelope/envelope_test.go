package envelope_test

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-sheets/internal/envelope"
	"github.com/sammcj/mcp-sheets/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpreadsheets_FieldOrderAndIndent(t *testing.T) {
	env, err := envelope.Spreadsheets([]gateway.SpreadsheetFile{{ID: "abc", Name: "予算 <2024>"}})
	require.NoError(t, err)

	want := `[
  {
    "id": "abc",
    "name": "予算 <2024>",
    "url": "https://docs.google.com/spreadsheets/d/abc"
  }
]`
	assert.Equal(t, envelope.ContentTypeText, env.ContentType)
	assert.Equal(t, want, env.Body)
}

func TestSpreadsheets_Empty(t *testing.T) {
	env, err := envelope.Spreadsheets(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", env.Body)
}

func TestOpened(t *testing.T) {
	env, err := envelope.Opened(gateway.SpreadsheetHandle{
		ID:         "abc",
		Title:      "Budget",
		Worksheets: []gateway.WorksheetHandle{{ID: 0, Title: "Sheet1"}, {ID: 7, Title: "Sheet2"}},
	})
	require.NoError(t, err)

	want := `{
  "id": "abc",
  "title": "Budget",
  "url": "https://docs.google.com/spreadsheets/d/abc",
  "sheet_count": 2
}`
	assert.Equal(t, want, env.Body)
}

func TestCreated(t *testing.T) {
	env, err := envelope.Created(gateway.SpreadsheetHandle{ID: "new", Title: "Fresh"})
	require.NoError(t, err)
	assert.Equal(t, `{
  "id": "new",
  "title": "Fresh",
  "url": "https://docs.google.com/spreadsheets/d/new"
}`, env.Body)
}

func TestWorksheets(t *testing.T) {
	env, err := envelope.Worksheets([]gateway.WorksheetHandle{{ID: 12, Title: "Data", RowCount: 1000, ColCount: 26}})
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "id": 12,
    "title": "Data",
    "rows": 1000,
    "cols": 26
  }
]`, env.Body)

	single, err := envelope.Worksheet(gateway.WorksheetHandle{ID: 3, Title: "New", RowCount: 100, ColCount: 26})
	require.NoError(t, err)
	assert.Contains(t, single.Body, `"rows": 100`)
}

func TestGrid_KeepsJaggedRowsAndEmptyStrings(t *testing.T) {
	env, err := envelope.Grid(gateway.Grid{{"a", ""}, {"b"}, nil})
	require.NoError(t, err)
	assert.Equal(t, `[
  [
    "a",
    ""
  ],
  [
    "b"
  ],
  []
]`, env.Body)
}

func TestConfirmations(t *testing.T) {
	assert.Equal(t, "Successfully updated cell A1 in worksheet 'Sheet1' to value: 42",
		envelope.CellUpdated("A1", "Sheet1", float64(42)).Body)
	assert.Equal(t, "Successfully updated cell B2 in worksheet 'Sheet1' to value: 1.5",
		envelope.CellUpdated("B2", "Sheet1", 1.5).Body)
	assert.Equal(t, "Successfully updated cell C3 in worksheet 'Sheet1' to value: true",
		envelope.CellUpdated("C3", "Sheet1", true).Body)
	assert.Equal(t, "Successfully updated cell D4 in worksheet 'Sheet1' to value: hello",
		envelope.CellUpdated("D4", "Sheet1", "hello").Body)
	assert.Equal(t, "Successfully updated range A1:B2 in worksheet 'Data'",
		envelope.RangeUpdated("A1:B2", "Data").Body)
	assert.Equal(t, "Successfully appended row to worksheet 'Log'",
		envelope.RowAppended("Log").Body)
}

func TestNotFound(t *testing.T) {
	assert.Equal(t, "Spreadsheet 'My Budget' not found.",
		envelope.NotFound(true, gateway.NewSpreadsheetNotFound("My Budget", nil)).Body)
	assert.Equal(t, "Spreadsheet with ID 'X' not found.",
		envelope.NotFound(false, gateway.NewSpreadsheetNotFound("X", nil)).Body)
	assert.Equal(t, "Worksheet 'Sheet9' not found in spreadsheet.",
		envelope.NotFound(false, gateway.NewWorksheetNotFound("Sheet9")).Body)
}

func TestToCallToolResult(t *testing.T) {
	result := envelope.Text("hello").ToCallToolResult()
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "text", text.Type)
	assert.Equal(t, "hello", text.Text)
	assert.False(t, result.IsError)
}
