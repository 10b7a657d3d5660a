package testutils

import (
	"context"
	"sync"

	"github.com/sammcj/mcp-sheets/internal/gateway"
)

// GatewayCall records one operation invoked on a StubGateway.
type GatewayCall struct {
	Op   string
	Args []any
}

// StubGateway implements gateway.Gateway for tests. Every operation is
// recorded; when Err is set it is returned from every operation.
type StubGateway struct {
	Err         error
	Files       []gateway.SpreadsheetFile
	Spreadsheet gateway.SpreadsheetHandle
	Worksheet   gateway.WorksheetHandle
	Grid        gateway.Grid
	// Release, when non-nil, blocks every operation until it is closed.
	Release chan struct{}

	mu    sync.Mutex
	calls []GatewayCall
}

var _ gateway.Gateway = (*StubGateway)(nil)

// NewStubGateway returns a stub with a small spreadsheet preloaded.
func NewStubGateway() *StubGateway {
	return &StubGateway{
		Files: []gateway.SpreadsheetFile{{ID: "sheet-1", Name: "Budget"}},
		Spreadsheet: gateway.SpreadsheetHandle{
			ID:    "sheet-1",
			Title: "Budget",
			Worksheets: []gateway.WorksheetHandle{
				{ID: 0, Title: "Sheet1", RowCount: 1000, ColCount: 26},
			},
		},
		Worksheet: gateway.WorksheetHandle{ID: 0, Title: "Sheet1", RowCount: 1000, ColCount: 26},
		Grid:      gateway.Grid{{"a", "b"}, {"c", "d"}},
	}
}

// Calls returns a copy of the recorded calls.
func (s *StubGateway) Calls() []GatewayCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GatewayCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of recorded calls.
func (s *StubGateway) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// LastCall returns the most recent call, or a zero GatewayCall.
func (s *StubGateway) LastCall() GatewayCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return GatewayCall{}
	}
	return s.calls[len(s.calls)-1]
}

func (s *StubGateway) record(op string, args ...any) error {
	s.mu.Lock()
	s.calls = append(s.calls, GatewayCall{Op: op, Args: args})
	release := s.Release
	s.mu.Unlock()

	if release != nil {
		<-release
	}
	return s.Err
}

func (s *StubGateway) ListSpreadsheets(ctx context.Context) ([]gateway.SpreadsheetFile, error) {
	if err := s.record("ListSpreadsheets"); err != nil {
		return nil, err
	}
	return s.Files, nil
}

func (s *StubGateway) ResolveSpreadsheet(ctx context.Context, identifier string) (gateway.SpreadsheetHandle, error) {
	if err := s.record("ResolveSpreadsheet", identifier); err != nil {
		return gateway.SpreadsheetHandle{}, err
	}
	return s.Spreadsheet, nil
}

func (s *StubGateway) OpenSpreadsheet(ctx context.Context, spreadsheetID string) (gateway.SpreadsheetHandle, error) {
	if err := s.record("OpenSpreadsheet", spreadsheetID); err != nil {
		return gateway.SpreadsheetHandle{}, err
	}
	return s.Spreadsheet, nil
}

func (s *StubGateway) ResolveWorksheet(ctx context.Context, spreadsheetID, worksheet string) (gateway.WorksheetHandle, error) {
	if err := s.record("ResolveWorksheet", spreadsheetID, worksheet); err != nil {
		return gateway.WorksheetHandle{}, err
	}
	return s.Worksheet, nil
}

func (s *StubGateway) ReadRange(ctx context.Context, spreadsheetID, worksheet, cellRange string) (gateway.Grid, error) {
	if err := s.record("ReadRange", spreadsheetID, worksheet, cellRange); err != nil {
		return nil, err
	}
	return s.Grid, nil
}

func (s *StubGateway) WriteCell(ctx context.Context, spreadsheetID, worksheet, cell string, value any) error {
	return s.record("WriteCell", spreadsheetID, worksheet, cell, value)
}

func (s *StubGateway) WriteRange(ctx context.Context, spreadsheetID, worksheet, cellRange string, values gateway.Grid) error {
	return s.record("WriteRange", spreadsheetID, worksheet, cellRange, values)
}

func (s *StubGateway) AppendRow(ctx context.Context, spreadsheetID, worksheet string, values []any) error {
	return s.record("AppendRow", spreadsheetID, worksheet, values)
}

func (s *StubGateway) CreateSpreadsheet(ctx context.Context, title string) (gateway.SpreadsheetHandle, error) {
	if err := s.record("CreateSpreadsheet", title); err != nil {
		return gateway.SpreadsheetHandle{}, err
	}
	return gateway.SpreadsheetHandle{ID: "new-sheet", Title: title}, nil
}

func (s *StubGateway) CreateWorksheet(ctx context.Context, spreadsheetID, title string, rows, cols int) (gateway.WorksheetHandle, error) {
	if err := s.record("CreateWorksheet", spreadsheetID, title, rows, cols); err != nil {
		return gateway.WorksheetHandle{}, err
	}
	return gateway.WorksheetHandle{ID: 42, Title: title, RowCount: rows, ColCount: cols}, nil
}
