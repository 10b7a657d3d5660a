// Package gateway defines the remote spreadsheet operations the dispatcher
// depends on, together with the plain records and domain errors they return.
package gateway

import (
	"context"
	"strings"
)

// SpreadsheetURLMarker is the path prefix that identifies a spreadsheet URL.
const SpreadsheetURLMarker = "https://docs.google.com/spreadsheets/d/"

// SpreadsheetFile is an entry returned by ListSpreadsheets.
type SpreadsheetFile struct {
	ID   string
	Name string
}

// SpreadsheetHandle is a resolved spreadsheet. Handles are never cached.
type SpreadsheetHandle struct {
	ID         string
	Title      string
	Worksheets []WorksheetHandle
}

// WorksheetHandle is a resolved worksheet with its declared grid size.
type WorksheetHandle struct {
	ID       int64
	Title    string
	RowCount int
	ColCount int
}

// Grid is a row-major block of cell values. Rows may be jagged on input.
type Grid [][]any

// Gateway is the facade over the remote spreadsheet service. Implementations
// must be safe for concurrent use. Not-found conditions are reported as
// *NotFoundError; every other error is opaque.
type Gateway interface {
	ListSpreadsheets(ctx context.Context) ([]SpreadsheetFile, error)
	// ResolveSpreadsheet opens a spreadsheet by URL or by exact title.
	ResolveSpreadsheet(ctx context.Context, identifier string) (SpreadsheetHandle, error)
	OpenSpreadsheet(ctx context.Context, spreadsheetID string) (SpreadsheetHandle, error)
	ResolveWorksheet(ctx context.Context, spreadsheetID, worksheet string) (WorksheetHandle, error)
	// ReadRange reads cellRange, or the whole worksheet when cellRange is empty.
	ReadRange(ctx context.Context, spreadsheetID, worksheet, cellRange string) (Grid, error)
	WriteCell(ctx context.Context, spreadsheetID, worksheet, cell string, value any) error
	WriteRange(ctx context.Context, spreadsheetID, worksheet, cellRange string, values Grid) error
	AppendRow(ctx context.Context, spreadsheetID, worksheet string, values []any) error
	CreateSpreadsheet(ctx context.Context, title string) (SpreadsheetHandle, error)
	CreateWorksheet(ctx context.Context, spreadsheetID, title string, rows, cols int) (WorksheetHandle, error)
}

// SpreadsheetURL returns the browser URL for a spreadsheet id.
func SpreadsheetURL(id string) string {
	return SpreadsheetURLMarker + id
}

// ParseIdentifier decides whether identifier is a spreadsheet URL. If it
// contains the URL marker anywhere, the first path segment after the marker is
// returned as the id, even when the caller meant a title that happens to
// contain the marker.
func ParseIdentifier(identifier string) (id string, isURL bool) {
	_, rest, found := strings.Cut(identifier, SpreadsheetURLMarker)
	if !found {
		return identifier, false
	}
	id, _, _ = strings.Cut(rest, "/")
	return id, true
}
