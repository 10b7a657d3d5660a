package dispatch

import (
	"context"
	"fmt"

	"github.com/sammcj/mcp-sheets/internal/args"
	"github.com/sammcj/mcp-sheets/internal/envelope"
	"github.com/sammcj/mcp-sheets/internal/gateway"
	"github.com/sammcj/mcp-sheets/internal/schema"
)

// handler runs one tool against the gateway with an already validated record.
type handler struct {
	// action completes "error <action>: ..." for opaque failures
	action string
	// byIdentifier selects the URL-or-title wording for spreadsheet not-found
	byIdentifier bool
	run          func(ctx context.Context, gw gateway.Gateway, record any) (envelope.Envelope, error)
}

func bind[T any](action string, fn func(ctx context.Context, gw gateway.Gateway, a T) (envelope.Envelope, error)) handler {
	return handler{
		action: action,
		run: func(ctx context.Context, gw gateway.Gateway, record any) (envelope.Envelope, error) {
			a, ok := record.(T)
			if !ok {
				return envelope.Envelope{}, fmt.Errorf("unexpected argument record %T", record)
			}
			return fn(ctx, gw, a)
		},
	}
}

func handlers() map[string]handler {
	open := bind("opening spreadsheet", openSpreadsheet)
	open.byIdentifier = true

	return map[string]handler{
		schema.ListSpreadsheets:  bind("listing spreadsheets", listSpreadsheets),
		schema.OpenSpreadsheet:   open,
		schema.ListWorksheets:    bind("listing worksheets", listWorksheets),
		schema.ReadWorksheet:     bind("reading worksheet", readWorksheet),
		schema.UpdateCell:        bind("updating cell", updateCell),
		schema.UpdateRange:       bind("updating range", updateRange),
		schema.AppendRow:         bind("appending row", appendRow),
		schema.CreateSpreadsheet: bind("creating spreadsheet", createSpreadsheet),
		schema.CreateWorksheet:   bind("creating worksheet", createWorksheet),
	}
}

func listSpreadsheets(ctx context.Context, gw gateway.Gateway, _ args.ListSpreadsheets) (envelope.Envelope, error) {
	files, err := gw.ListSpreadsheets(ctx)
	if err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.Spreadsheets(files)
}

func openSpreadsheet(ctx context.Context, gw gateway.Gateway, a args.OpenSpreadsheet) (envelope.Envelope, error) {
	sheet, err := gw.ResolveSpreadsheet(ctx, a.Identifier)
	if err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.Opened(sheet)
}

func listWorksheets(ctx context.Context, gw gateway.Gateway, a args.ListWorksheets) (envelope.Envelope, error) {
	sheet, err := gw.OpenSpreadsheet(ctx, a.SpreadsheetID)
	if err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.Worksheets(sheet.Worksheets)
}

func readWorksheet(ctx context.Context, gw gateway.Gateway, a args.ReadWorksheet) (envelope.Envelope, error) {
	grid, err := gw.ReadRange(ctx, a.SpreadsheetID, a.WorksheetName, a.Range)
	if err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.Grid(grid)
}

func updateCell(ctx context.Context, gw gateway.Gateway, a args.UpdateCell) (envelope.Envelope, error) {
	if err := gw.WriteCell(ctx, a.SpreadsheetID, a.WorksheetName, a.Cell, a.Value); err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.CellUpdated(a.Cell, a.WorksheetName, a.Value), nil
}

func updateRange(ctx context.Context, gw gateway.Gateway, a args.UpdateRange) (envelope.Envelope, error) {
	if err := gw.WriteRange(ctx, a.SpreadsheetID, a.WorksheetName, a.Range, gateway.Grid(a.Values)); err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.RangeUpdated(a.Range, a.WorksheetName), nil
}

func appendRow(ctx context.Context, gw gateway.Gateway, a args.AppendRow) (envelope.Envelope, error) {
	if err := gw.AppendRow(ctx, a.SpreadsheetID, a.WorksheetName, a.Values); err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.RowAppended(a.WorksheetName), nil
}

func createSpreadsheet(ctx context.Context, gw gateway.Gateway, a args.CreateSpreadsheet) (envelope.Envelope, error) {
	sheet, err := gw.CreateSpreadsheet(ctx, a.Title)
	if err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.Created(sheet)
}

func createWorksheet(ctx context.Context, gw gateway.Gateway, a args.CreateWorksheet) (envelope.Envelope, error) {
	ws, err := gw.CreateWorksheet(ctx, a.SpreadsheetID, a.Title, a.Rows, a.Cols)
	if err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.Worksheet(ws)
}
