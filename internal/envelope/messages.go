package envelope

import (
	"fmt"

	"github.com/sammcj/mcp-sheets/internal/gateway"
)

// CellUpdated confirms a single cell write.
func CellUpdated(cell, worksheet string, value any) Envelope {
	return Text(fmt.Sprintf("Successfully updated cell %s in worksheet '%s' to value: %s", cell, worksheet, formatValue(value)))
}

// RangeUpdated confirms a range write.
func RangeUpdated(cellRange, worksheet string) Envelope {
	return Text(fmt.Sprintf("Successfully updated range %s in worksheet '%s'", cellRange, worksheet))
}

// RowAppended confirms an append.
func RowAppended(worksheet string) Envelope {
	return Text(fmt.Sprintf("Successfully appended row to worksheet '%s'", worksheet))
}

// NotFound renders a not-found error as a sentence naming the identifier.
// open_spreadsheet looks up by URL or title, so its wording omits "ID".
func NotFound(byIdentifier bool, nf *gateway.NotFoundError) Envelope {
	switch nf.Kind {
	case gateway.WorksheetNotFound:
		return Text(fmt.Sprintf("Worksheet '%s' not found in spreadsheet.", nf.Identifier))
	default:
		if byIdentifier {
			return Text(fmt.Sprintf("Spreadsheet '%s' not found.", nf.Identifier))
		}
		return Text(fmt.Sprintf("Spreadsheet with ID '%s' not found.", nf.Identifier))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case float64:
		// JSON numbers arrive as float64; print integers without an exponent.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
