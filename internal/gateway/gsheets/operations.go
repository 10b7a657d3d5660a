package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sammcj/mcp-sheets/internal/gateway"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"
)

const (
	spreadsheetMimeQuery = "mimeType='application/vnd.google-apps.spreadsheet' and trashed=false"
	spreadsheetFields    = "spreadsheetId,properties.title,sheets.properties(sheetId,title,gridProperties(rowCount,columnCount))"
	listPageSize         = 1000
)

// ListSpreadsheets enumerates every spreadsheet the service account can see,
// shared drives included.
func (c *Client) ListSpreadsheets(ctx context.Context) ([]gateway.SpreadsheetFile, error) {
	var files []gateway.SpreadsheetFile
	pageToken := ""
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		call := c.drive.Files.List().
			Q(spreadsheetMimeQuery).
			Fields("nextPageToken", "files(id,name)").
			PageSize(listPageSize).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, f := range resp.Files {
			files = append(files, gateway.SpreadsheetFile{ID: f.Id, Name: f.Name})
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	c.logger.WithField("count", len(files)).Debug("Listed spreadsheets")
	return files, nil
}

// ResolveSpreadsheet opens by URL when identifier contains the spreadsheet URL
// marker, otherwise by exact title. Not-found errors carry identifier as given.
func (c *Client) ResolveSpreadsheet(ctx context.Context, identifier string) (gateway.SpreadsheetHandle, error) {
	if id, isURL := gateway.ParseIdentifier(identifier); isURL {
		return c.open(ctx, id, identifier)
	}

	id, err := c.findByTitle(ctx, identifier)
	if err != nil {
		return gateway.SpreadsheetHandle{}, err
	}
	return c.open(ctx, id, identifier)
}

// OpenSpreadsheet opens a spreadsheet by id.
func (c *Client) OpenSpreadsheet(ctx context.Context, spreadsheetID string) (gateway.SpreadsheetHandle, error) {
	return c.open(ctx, spreadsheetID, spreadsheetID)
}

// ResolveWorksheet finds a worksheet by exact title.
func (c *Client) ResolveWorksheet(ctx context.Context, spreadsheetID, worksheet string) (gateway.WorksheetHandle, error) {
	sheet, err := c.OpenSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return gateway.WorksheetHandle{}, err
	}
	for _, ws := range sheet.Worksheets {
		if ws.Title == worksheet {
			return ws, nil
		}
	}
	return gateway.WorksheetHandle{}, gateway.NewWorksheetNotFound(worksheet)
}

// ReadRange returns formatted cell values. The grid is padded with empty
// strings to the worksheet's declared size, or to the size of cellRange
// clipped to that declared size.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, worksheet, cellRange string) (gateway.Grid, error) {
	ws, err := c.ResolveWorksheet(ctx, spreadsheetID, worksheet)
	if err != nil {
		return nil, err
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, a1(ws.Title, cellRange)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapNotFound(err, spreadsheetID)
	}

	grid := gateway.Grid(resp.Values)
	height, width, ok := ws.RowCount, ws.ColCount, true
	if cellRange != "" {
		height, width, ok = gateway.RangeDimensions(cellRange, ws.RowCount, ws.ColCount)
	}
	if !ok {
		return grid, nil
	}
	return gateway.PadGrid(grid, height, width), nil
}

// WriteCell stores value in a single cell without parsing it.
func (c *Client) WriteCell(ctx context.Context, spreadsheetID, worksheet, cell string, value any) error {
	return c.update(ctx, spreadsheetID, worksheet, cell, [][]any{{value}})
}

// WriteRange stores values starting at cellRange without parsing them.
func (c *Client) WriteRange(ctx context.Context, spreadsheetID, worksheet, cellRange string, values gateway.Grid) error {
	return c.update(ctx, spreadsheetID, worksheet, cellRange, values)
}

// AppendRow inserts values as a new row after the worksheet's last table row.
func (c *Client) AppendRow(ctx context.Context, spreadsheetID, worksheet string, values []any) error {
	ws, err := c.ResolveWorksheet(ctx, spreadsheetID, worksheet)
	if err != nil {
		return err
	}

	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err = c.sheets.Spreadsheets.Values.Append(spreadsheetID, a1(ws.Title, ""), &sheets.ValueRange{Values: [][]any{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return mapNotFound(err, spreadsheetID)
}

// CreateSpreadsheet creates a spreadsheet owned by the service account.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (gateway.SpreadsheetHandle, error) {
	if err := c.wait(ctx); err != nil {
		return gateway.SpreadsheetHandle{}, err
	}
	resp, err := c.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Fields(spreadsheetFields).Context(ctx).Do()
	if err != nil {
		return gateway.SpreadsheetHandle{}, err
	}

	c.logger.WithField("spreadsheet_id", resp.SpreadsheetId).Info("Created spreadsheet")
	return toHandle(resp), nil
}

// CreateWorksheet adds a worksheet with the given grid size.
func (c *Client) CreateWorksheet(ctx context.Context, spreadsheetID, title string, rows, cols int) (gateway.WorksheetHandle, error) {
	if err := c.wait(ctx); err != nil {
		return gateway.WorksheetHandle{}, err
	}
	resp, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return gateway.WorksheetHandle{}, mapNotFound(err, spreadsheetID)
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return gateway.WorksheetHandle{}, errors.New("add sheet response carried no sheet properties")
	}
	return toWorksheet(resp.Replies[0].AddSheet.Properties), nil
}

func (c *Client) open(ctx context.Context, id, identifier string) (gateway.SpreadsheetHandle, error) {
	if err := c.wait(ctx); err != nil {
		return gateway.SpreadsheetHandle{}, err
	}
	resp, err := c.sheets.Spreadsheets.Get(id).Fields(spreadsheetFields).Context(ctx).Do()
	if err != nil {
		return gateway.SpreadsheetHandle{}, mapNotFound(err, identifier)
	}
	return toHandle(resp), nil
}

// findByTitle returns the id of the first spreadsheet whose name is exactly title.
func (c *Client) findByTitle(ctx context.Context, title string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	q := fmt.Sprintf("%s and name = '%s'", spreadsheetMimeQuery, escapeQuery(title))
	resp, err := c.drive.Files.List().
		Q(q).
		Fields("files(id,name)").
		PageSize(100).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	for _, f := range resp.Files {
		if f.Name == title {
			return f.Id, nil
		}
	}
	return "", gateway.NewSpreadsheetNotFound(title, nil)
}

func (c *Client) update(ctx context.Context, spreadsheetID, worksheet, cellRange string, values [][]any) error {
	ws, err := c.ResolveWorksheet(ctx, spreadsheetID, worksheet)
	if err != nil {
		return err
	}

	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err = c.sheets.Spreadsheets.Values.Update(spreadsheetID, a1(ws.Title, cellRange), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return mapNotFound(err, spreadsheetID)
}

// mapNotFound turns an HTTP 404 into a spreadsheet not-found error.
func mapNotFound(err error, identifier string) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return gateway.NewSpreadsheetNotFound(identifier, err)
	}
	return err
}

// a1 builds a range addressed to one worksheet. Titles are always quoted.
func a1(title, cellRange string) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if cellRange == "" {
		return quoted
	}
	return quoted + "!" + cellRange
}

// escapeQuery escapes a literal for a Drive search query.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func toHandle(s *sheets.Spreadsheet) gateway.SpreadsheetHandle {
	h := gateway.SpreadsheetHandle{ID: s.SpreadsheetId}
	if s.Properties != nil {
		h.Title = s.Properties.Title
	}
	for _, sh := range s.Sheets {
		if sh.Properties != nil {
			h.Worksheets = append(h.Worksheets, toWorksheet(sh.Properties))
		}
	}
	return h
}

func toWorksheet(p *sheets.SheetProperties) gateway.WorksheetHandle {
	ws := gateway.WorksheetHandle{ID: p.SheetId, Title: p.Title}
	if p.GridProperties != nil {
		ws.RowCount = int(p.GridProperties.RowCount)
		ws.ColCount = int(p.GridProperties.ColumnCount)
	}
	return ws
}

