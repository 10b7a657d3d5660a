package testutils

import "github.com/sammcj/mcp-sheets/internal/schema"

// ValidArguments returns a complete, schema-valid argument map for a tool.
// Numbers are float64 as they arrive from JSON.
func ValidArguments(tool string) map[string]any {
	switch tool {
	case schema.OpenSpreadsheet:
		return map[string]any{"identifier": "My Budget"}
	case schema.ListWorksheets:
		return map[string]any{"spreadsheet_id": "abc"}
	case schema.ReadWorksheet:
		return map[string]any{"spreadsheet_id": "abc", "worksheet_name": "Sheet1", "range": "A1:B2"}
	case schema.UpdateCell:
		return map[string]any{"spreadsheet_id": "abc", "worksheet_name": "Sheet1", "cell": "A1", "value": "x"}
	case schema.UpdateRange:
		return map[string]any{"spreadsheet_id": "abc", "worksheet_name": "Sheet1", "range": "A1:B1", "values": []any{[]any{"a", "b"}}}
	case schema.AppendRow:
		return map[string]any{"spreadsheet_id": "abc", "worksheet_name": "Sheet1", "values": []any{"a"}}
	case schema.CreateSpreadsheet:
		return map[string]any{"title": "New"}
	case schema.CreateWorksheet:
		return map[string]any{"spreadsheet_id": "abc", "title": "New", "rows": float64(5), "cols": float64(5)}
	default:
		return map[string]any{}
	}
}
