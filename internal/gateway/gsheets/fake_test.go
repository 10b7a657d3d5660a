package gsheets_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// fakeAPI serves the small part of the Sheets v4 and Drive v3 REST surface the
// client uses.
type fakeAPI struct {
	mu          sync.Mutex
	files       []*drive.File
	pageSize    int
	spreadsheet map[string]*sheets.Spreadsheet
	values      map[string][][]any
	// failWith, when non-zero, is returned for every request
	failWith int
	requests []recordedRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		files: []*drive.File{
			{Id: "budget-id", Name: "My Budget"},
			{Id: "quote-id", Name: "Bob's Sheet"},
			{Id: "ABC123", Name: "Linked"},
		},
		spreadsheet: map[string]*sheets.Spreadsheet{
			"budget-id": newSpreadsheet("budget-id", "My Budget", sheetProps(0, "Sheet1", 4, 3), sheetProps(7, "Q3 Plan", 10, 5)),
			"quote-id":  newSpreadsheet("quote-id", "Bob's Sheet", sheetProps(0, "Sheet1", 100, 26)),
			"ABC123":    newSpreadsheet("ABC123", "Linked", sheetProps(0, "Data", 1000, 26)),
		},
		values: map[string][][]any{
			"'Sheet1'":       {{"a", "b"}, {"c"}},
			"'Sheet1'!A1:B2": {{"a", "b"}},
			// the service clips ranges to the grid
			"'Sheet1'!A1:C5000": {{"a", "b"}, {"c"}},
		},
	}
}

func sheetProps(id int64, title string, rows, cols int64) *sheets.Sheet {
	return &sheets.Sheet{Properties: &sheets.SheetProperties{
		SheetId:        id,
		Title:          title,
		GridProperties: &sheets.GridProperties{RowCount: rows, ColumnCount: cols},
	}}
}

func newSpreadsheet(id, title string, tabs ...*sheets.Sheet) *sheets.Spreadsheet {
	return &sheets.Spreadsheet{
		SpreadsheetId: id,
		Properties:    &sheets.SpreadsheetProperties{Title: title},
		Sheets:        tabs,
	}
}

func (f *fakeAPI) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// last returns the most recent request whose path has the given suffix.
func (f *fakeAPI) last(t *testing.T, method, pathSuffix string) recordedRequest {
	t.Helper()
	reqs := f.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && strings.HasSuffix(reqs[i].Path, pathSuffix) {
			return reqs[i]
		}
	}
	t.Fatalf("no %s request ending in %s; got %+v", method, pathSuffix, reqs)
	return recordedRequest{}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: body})

	if f.failWith != 0 {
		writeError(w, f.failWith, "The caller does not have permission")
		return
	}

	path := r.URL.Path
	switch {
	case path == "/files":
		f.listFiles(w, r)
	case path == "/v4/spreadsheets" && r.Method == http.MethodPost:
		f.create(w, body)
	case strings.HasPrefix(path, "/v4/spreadsheets/"):
		f.spreadsheetRoute(w, r, strings.TrimPrefix(path, "/v4/spreadsheets/"), body)
	default:
		writeError(w, http.StatusNotFound, "unknown path "+path)
	}
}

func (f *fakeAPI) spreadsheetRoute(w http.ResponseWriter, r *http.Request, rest string, body []byte) {
	if id, ok := strings.CutSuffix(rest, ":batchUpdate"); ok {
		f.batchUpdate(w, id, body)
		return
	}

	id, rng, hasValues := strings.Cut(rest, "/values/")
	if _, ok := f.spreadsheet[id]; !ok {
		writeError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}

	switch {
	case !hasValues:
		writeJSON(w, f.spreadsheet[id])
	case strings.HasSuffix(rng, ":append"):
		writeJSON(w, map[string]any{"spreadsheetId": id})
	case r.Method == http.MethodGet:
		writeJSON(w, &sheets.ValueRange{Range: rng, Values: f.values[rng]})
	case r.Method == http.MethodPut:
		writeJSON(w, map[string]any{"spreadsheetId": id, "updatedRange": rng})
	default:
		writeError(w, http.StatusBadRequest, "unsupported")
	}
}

func (f *fakeAPI) listFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	matches := f.files
	if _, name, ok := strings.Cut(q, "name = '"); ok {
		name = strings.TrimSuffix(name, "'")
		name = strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(name)
		matches = nil
		for _, file := range f.files {
			if file.Name == name {
				matches = append(matches, file)
			}
		}
	}

	start := 0
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		_, _ = fmt.Sscanf(tok, "page-%d", &start)
	}
	end := len(matches)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	resp := &drive.FileList{Files: matches[start:end]}
	if end < len(matches) {
		resp.NextPageToken = fmt.Sprintf("page-%d", end)
	}
	writeJSON(w, resp)
}

func (f *fakeAPI) create(w http.ResponseWriter, body []byte) {
	var req sheets.Spreadsheet
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created := newSpreadsheet("created-id", req.Properties.Title, sheetProps(0, "Sheet1", 1000, 26))
	f.spreadsheet[created.SpreadsheetId] = created
	writeJSON(w, created)
}

func (f *fakeAPI) batchUpdate(w http.ResponseWriter, id string, body []byte) {
	sheet, ok := f.spreadsheet[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}

	var req sheets.BatchUpdateSpreadsheetRequest
	if err := json.Unmarshal(body, &req); err != nil || len(req.Requests) == 0 || req.Requests[0].AddSheet == nil {
		writeError(w, http.StatusBadRequest, "expected an addSheet request")
		return
	}

	props := req.Requests[0].AddSheet.Properties
	props.SheetId = 12345
	sheet.Sheets = append(sheet.Sheets, &sheets.Sheet{Properties: props})

	writeJSON(w, &sheets.BatchUpdateSpreadsheetResponse{
		SpreadsheetId: id,
		Replies:       []*sheets.Response{{AddSheet: &sheets.AddSheetResponse{Properties: props}}},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}
