package args_test

import (
	"errors"
	"testing"

	"github.com/sammcj/mcp-sheets/internal/args"
	"github.com/sammcj/mcp-sheets/internal/schema"
	"github.com/sammcj/mcp-sheets/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(t *testing.T, name string) schema.ToolDescriptor {
	t.Helper()
	for _, d := range schema.Tools() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("unknown tool %s", name)
	return schema.ToolDescriptor{}
}

func TestValidate_MissingRequiredField(t *testing.T) {
	for _, d := range schema.Tools() {
		for _, field := range d.InputSchema.Required {
			t.Run(d.Name+"/"+field, func(t *testing.T) {
				raw := testutils.ValidArguments(d.Name)
				delete(raw, field)

				_, err := args.Validate(d, raw)
				require.Error(t, err)
				assert.True(t, errors.Is(err, args.ErrMalformedArguments))
				assert.Contains(t, err.Error(), field)
				assert.Contains(t, err.Error(), d.Name)
			})
		}
	}
}

func TestValidate_CompleteArgumentsPass(t *testing.T) {
	for _, d := range schema.Tools() {
		t.Run(d.Name, func(t *testing.T) {
			_, err := args.Validate(d, testutils.ValidArguments(d.Name))
			assert.NoError(t, err)
		})
	}
}

func TestValidate_NotAnObject(t *testing.T) {
	_, err := args.Validate(descriptor(t, schema.OpenSpreadsheet), []any{"x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, args.ErrMalformedArguments))
	assert.Contains(t, err.Error(), "expected an object")

	_, err = args.Validate(descriptor(t, schema.OpenSpreadsheet), "My Budget")
	assert.True(t, errors.Is(err, args.ErrMalformedArguments))
}

func TestValidate_NilIsEmptyObject(t *testing.T) {
	record, err := args.Validate(descriptor(t, schema.ListSpreadsheets), nil)
	require.NoError(t, err)
	assert.Equal(t, args.ListSpreadsheets{}, record)

	_, err = args.Validate(descriptor(t, schema.OpenSpreadsheet), nil)
	assert.True(t, errors.Is(err, args.ErrMalformedArguments))
}

func TestValidate_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		tool  string
		field string
		value any
	}{
		{"identifier number", schema.OpenSpreadsheet, "identifier", float64(3)},
		{"identifier null", schema.OpenSpreadsheet, "identifier", nil},
		{"value object", schema.UpdateCell, "value", map[string]any{"a": 1}},
		{"value null", schema.UpdateCell, "value", nil},
		{"values not nested", schema.UpdateRange, "values", []any{"a", "b"}},
		{"append values object", schema.AppendRow, "values", map[string]any{}},
		{"append nested", schema.AppendRow, "values", []any{[]any{"a"}}},
		{"rows string", schema.CreateWorksheet, "rows", "ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testutils.ValidArguments(tt.tool)
			raw[tt.field] = tt.value

			_, err := args.Validate(descriptor(t, tt.tool), raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, args.ErrMalformedArguments))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_AppendRowPreservesValues(t *testing.T) {
	raw := map[string]any{
		"spreadsheet_id": "abc",
		"worksheet_name": "Sheet1",
		"values":         []any{"a", 2, true, nil},
	}

	record, err := args.Validate(descriptor(t, schema.AppendRow), raw)
	require.NoError(t, err)

	typed, ok := record.(args.AppendRow)
	require.True(t, ok)
	assert.Equal(t, "abc", typed.SpreadsheetID)
	assert.Equal(t, "Sheet1", typed.WorksheetName)
	assert.Equal(t, []any{"a", 2, true, nil}, typed.Values)
}

func TestValidate_UpdateRangeJaggedRows(t *testing.T) {
	raw := map[string]any{
		"spreadsheet_id": "abc",
		"worksheet_name": "Sheet1",
		"range":          "A1:C2",
		"values":         []any{[]any{"a", float64(1), true}, []any{nil}},
	}

	record, err := args.Validate(descriptor(t, schema.UpdateRange), raw)
	require.NoError(t, err)

	typed := record.(args.UpdateRange)
	assert.Equal(t, "A1:C2", typed.Range)
	assert.Equal(t, [][]any{{"a", float64(1), true}, {nil}}, typed.Values)
}

func TestValidate_CreateWorksheetDefaults(t *testing.T) {
	raw := map[string]any{"spreadsheet_id": "abc", "title": "New"}

	record, err := args.Validate(descriptor(t, schema.CreateWorksheet), raw)
	require.NoError(t, err)
	assert.Equal(t, args.CreateWorksheet{SpreadsheetID: "abc", Title: "New", Rows: 100, Cols: 26}, record)

	raw["rows"] = float64(10)
	raw["cols"] = nil
	record, err = args.Validate(descriptor(t, schema.CreateWorksheet), raw)
	require.NoError(t, err)
	assert.Equal(t, args.CreateWorksheet{SpreadsheetID: "abc", Title: "New", Rows: 10, Cols: 26}, record)
}

func TestValidate_NoRangeCheck(t *testing.T) {
	raw := map[string]any{"spreadsheet_id": "abc", "title": "New", "rows": float64(-5), "cols": float64(0)}

	record, err := args.Validate(descriptor(t, schema.CreateWorksheet), raw)
	require.NoError(t, err)
	assert.Equal(t, -5, record.(args.CreateWorksheet).Rows)
	assert.Equal(t, 0, record.(args.CreateWorksheet).Cols)
}

func TestValidate_OptionalRange(t *testing.T) {
	raw := map[string]any{"spreadsheet_id": "abc", "worksheet_name": "Sheet1"}

	record, err := args.Validate(descriptor(t, schema.ReadWorksheet), raw)
	require.NoError(t, err)
	assert.Equal(t, "", record.(args.ReadWorksheet).Range)

	raw["range"] = nil
	record, err = args.Validate(descriptor(t, schema.ReadWorksheet), raw)
	require.NoError(t, err)
	assert.Equal(t, "", record.(args.ReadWorksheet).Range)
}

func TestValidate_ExtraFieldsIgnored(t *testing.T) {
	raw := map[string]any{"identifier": "My Budget", "verbose": true}

	record, err := args.Validate(descriptor(t, schema.OpenSpreadsheet), raw)
	require.NoError(t, err)
	assert.Equal(t, args.OpenSpreadsheet{Identifier: "My Budget"}, record)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"spreadsheet_id": "abc", "title": "New"}

	_, err := args.Validate(descriptor(t, schema.CreateWorksheet), raw)
	require.NoError(t, err)
	assert.Len(t, raw, 2)
}
