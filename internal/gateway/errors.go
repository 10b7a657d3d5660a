package gateway

import (
	"errors"
	"fmt"
)

// NotFoundKind identifies which handle failed to resolve.
type NotFoundKind int

const (
	SpreadsheetNotFound NotFoundKind = iota + 1
	WorksheetNotFound
)

func (k NotFoundKind) String() string {
	switch k {
	case SpreadsheetNotFound:
		return "spreadsheet"
	case WorksheetNotFound:
		return "worksheet"
	default:
		return "unknown"
	}
}

var (
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
	ErrWorksheetNotFound   = errors.New("worksheet not found")
)

// NotFoundError reports an identifier that does not resolve. Identifier is the
// spreadsheet id, URL or title as the caller supplied it, or the worksheet name.
type NotFoundError struct {
	Kind       NotFoundKind
	Identifier string
	Err        error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Identifier)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *NotFoundError) Is(target error) bool {
	switch target {
	case ErrSpreadsheetNotFound:
		return e.Kind == SpreadsheetNotFound
	case ErrWorksheetNotFound:
		return e.Kind == WorksheetNotFound
	}
	return false
}

// NewSpreadsheetNotFound returns a spreadsheet not-found error, keeping the
// remote cause (if any) for logs.
func NewSpreadsheetNotFound(identifier string, cause error) *NotFoundError {
	return &NotFoundError{Kind: SpreadsheetNotFound, Identifier: identifier, Err: cause}
}

// NewWorksheetNotFound returns a worksheet not-found error.
func NewWorksheetNotFound(name string) *NotFoundError {
	return &NotFoundError{Kind: WorksheetNotFound, Identifier: name}
}

// AsNotFound extracts a *NotFoundError from err's chain.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}
