// Package envelope renders tool results and not-found narratives as the text
// content returned to MCP callers.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-sheets/internal/gateway"
)

// ContentTypeText is the only content type produced.
const ContentTypeText = "text"

// Envelope is the uniform response body for successful and not-found calls.
type Envelope struct {
	ContentType string
	Body        string
}

// Text wraps a plain string.
func Text(body string) Envelope {
	return Envelope{ContentType: ContentTypeText, Body: body}
}

// JSON pretty prints v with a two space indent. HTML characters and non-ASCII
// text are written as-is.
func JSON(v any) (Envelope, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return Envelope{}, fmt.Errorf("failed to encode response: %w", err)
	}
	return Text(string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))), nil
}

// ToCallToolResult converts the envelope into an MCP text result.
func (e Envelope) ToCallToolResult() *mcp.CallToolResult {
	return mcp.NewToolResultText(e.Body)
}

// SpreadsheetSummary is one entry of list_spreadsheets.
type SpreadsheetSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SpreadsheetInfo describes a created spreadsheet.
type SpreadsheetInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// OpenedSpreadsheet describes a resolved spreadsheet.
type OpenedSpreadsheet struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	SheetCount int    `json:"sheet_count"`
}

// WorksheetInfo describes a worksheet.
type WorksheetInfo struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
}

// Spreadsheets renders the list_spreadsheets payload.
func Spreadsheets(files []gateway.SpreadsheetFile) (Envelope, error) {
	out := make([]SpreadsheetSummary, 0, len(files))
	for _, f := range files {
		out = append(out, SpreadsheetSummary{ID: f.ID, Name: f.Name, URL: gateway.SpreadsheetURL(f.ID)})
	}
	return JSON(out)
}

// Opened renders the open_spreadsheet payload.
func Opened(s gateway.SpreadsheetHandle) (Envelope, error) {
	return JSON(OpenedSpreadsheet{
		ID:         s.ID,
		Title:      s.Title,
		URL:        gateway.SpreadsheetURL(s.ID),
		SheetCount: len(s.Worksheets),
	})
}

// Created renders the create_spreadsheet payload.
func Created(s gateway.SpreadsheetHandle) (Envelope, error) {
	return JSON(SpreadsheetInfo{ID: s.ID, Title: s.Title, URL: gateway.SpreadsheetURL(s.ID)})
}

// Worksheets renders the list_worksheets payload.
func Worksheets(ws []gateway.WorksheetHandle) (Envelope, error) {
	out := make([]WorksheetInfo, 0, len(ws))
	for _, w := range ws {
		out = append(out, worksheetInfo(w))
	}
	return JSON(out)
}

// Worksheet renders the create_worksheet payload.
func Worksheet(w gateway.WorksheetHandle) (Envelope, error) {
	return JSON(worksheetInfo(w))
}

func worksheetInfo(w gateway.WorksheetHandle) WorksheetInfo {
	return WorksheetInfo{ID: w.ID, Title: w.Title, Rows: w.RowCount, Cols: w.ColCount}
}

// Grid renders cell values row by row, keeping jagged rows and empty strings.
func Grid(g gateway.Grid) (Envelope, error) {
	out := make(gateway.Grid, len(g))
	for i, row := range g {
		if row == nil {
			row = []any{}
		}
		out[i] = row
	}
	return JSON(out)
}
