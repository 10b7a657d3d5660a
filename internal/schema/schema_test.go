package schema_test

import (
	"testing"

	"github.com/sammcj/mcp-sheets/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTools_RequiredFields(t *testing.T) {
	expected := map[string][]string{
		schema.ListSpreadsheets:  {},
		schema.OpenSpreadsheet:   {"identifier"},
		schema.ListWorksheets:    {"spreadsheet_id"},
		schema.ReadWorksheet:     {"spreadsheet_id", "worksheet_name"},
		schema.UpdateCell:        {"spreadsheet_id", "worksheet_name", "cell", "value"},
		schema.UpdateRange:       {"spreadsheet_id", "worksheet_name", "range", "values"},
		schema.AppendRow:         {"spreadsheet_id", "worksheet_name", "values"},
		schema.CreateSpreadsheet: {"title"},
		schema.CreateWorksheet:   {"spreadsheet_id", "title"},
	}

	tools := schema.Tools()
	require.Len(t, tools, len(expected))

	seen := map[string]int{}
	for _, tool := range tools {
		seen[tool.Name]++
		want, ok := expected[tool.Name]
		require.True(t, ok, "unexpected tool %s", tool.Name)
		assert.ElementsMatch(t, want, tool.InputSchema.Required, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	for name, count := range seen {
		assert.Equal(t, 1, count, "tool %s declared more than once", name)
	}
}

func TestTools_StableOrder(t *testing.T) {
	first := schema.Tools()
	second := schema.Tools()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
	}
	assert.Equal(t, schema.ListSpreadsheets, first[0].Name)
	assert.Equal(t, schema.CreateWorksheet, first[len(first)-1].Name)
}

func TestTools_ReturnsCopy(t *testing.T) {
	tools := schema.Tools()
	tools[1].InputSchema.Required = nil

	again := schema.Tools()
	assert.Equal(t, []string{"identifier"}, again[1].InputSchema.Required)
}

func TestNode_JSONSchema(t *testing.T) {
	var update schema.ToolDescriptor
	for _, tool := range schema.Tools() {
		if tool.Name == schema.UpdateCell {
			update = tool
		}
	}

	out := update.InputSchema.JSONSchema()
	assert.Equal(t, "object", out["type"])

	props, ok := out["properties"].(map[string]any)
	require.True(t, ok)

	value, ok := props["value"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"string", "number", "boolean"}, value["type"])

	cell, ok := props["cell"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", cell["type"])
	assert.Equal(t, "The cell reference (e.g., 'A1')", cell["description"])
}

func TestNode_JSONSchema_NestedArrays(t *testing.T) {
	var updateRange schema.ToolDescriptor
	for _, tool := range schema.Tools() {
		if tool.Name == schema.UpdateRange {
			updateRange = tool
		}
	}

	values, ok := updateRange.InputSchema.Property("values")
	require.True(t, ok)

	out := values.JSONSchema()
	assert.Equal(t, "array", out["type"])
	rows := out["items"].(map[string]any)
	assert.Equal(t, "array", rows["type"])
	cells := rows["items"].(map[string]any)
	assert.Equal(t, []string{"string", "number", "boolean", "null"}, cells["type"])
}

func TestNode_Accepts(t *testing.T) {
	union := &schema.Node{Kind: schema.KindUnion, Types: []schema.Kind{schema.KindString, schema.KindNumber}}
	assert.True(t, union.Accepts(schema.KindString))
	assert.True(t, union.Accepts(schema.KindInteger))
	assert.False(t, union.Accepts(schema.KindBoolean))
	assert.False(t, union.Accepts(schema.KindNull))

	integer := &schema.Node{Kind: schema.KindInteger}
	assert.True(t, integer.Accepts(schema.KindInteger))
	assert.False(t, integer.Accepts(schema.KindString))
}

func TestCreateWorksheetDefaults(t *testing.T) {
	var create schema.ToolDescriptor
	for _, tool := range schema.Tools() {
		if tool.Name == schema.CreateWorksheet {
			create = tool
		}
	}

	rows, ok := create.InputSchema.Property("rows")
	require.True(t, ok)
	assert.Equal(t, schema.DefaultWorksheetRows, rows.Default)

	cols, ok := create.InputSchema.Property("cols")
	require.True(t, ok)
	assert.Equal(t, schema.DefaultWorksheetCols, cols.Default)
	assert.False(t, create.InputSchema.IsRequired("rows"))
}
