package dispatch

import (
	"errors"
	"fmt"

	"github.com/sammcj/mcp-sheets/internal/envelope"
)

// Outcome is the terminal state of one tool invocation.
type Outcome int

const (
	Succeeded Outcome = iota
	DomainNotFound
	OpaqueFailure
	ContractViolation
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case DomainNotFound:
		return "not_found"
	case OpaqueFailure:
		return "failed"
	case ContractViolation:
		return "contract_violation"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is what Dispatch returns. Envelope is set for Succeeded and
// DomainNotFound. Err is set for every outcome except Succeeded; for
// DomainNotFound it holds the *gateway.NotFoundError that was rendered.
type Result struct {
	Outcome  Outcome
	Envelope envelope.Envelope
	Err      error
}

// Failed reports whether the caller should see an error instead of an envelope.
func (r Result) Failed() bool {
	return r.Outcome == OpaqueFailure || r.Outcome == ContractViolation
}

// ErrUnknownTool is wrapped by ContractViolationError for names not in the registry.
var ErrUnknownTool = errors.New("unknown tool")

// ContractViolationError is returned when the request itself is wrong: an
// unknown tool or arguments that do not match the tool's schema.
type ContractViolationError struct {
	Tool string
	Err  error
}

func (e *ContractViolationError) Error() string {
	return e.Err.Error()
}

func (e *ContractViolationError) Unwrap() error {
	return e.Err
}

// OpaqueError is any gateway failure that is not a not-found condition.
type OpaqueError struct {
	Tool   string
	Action string
	Err    error
}

func (e *OpaqueError) Error() string {
	return fmt.Sprintf("error %s: %v", e.Action, e.Err)
}

func (e *OpaqueError) Unwrap() error {
	return e.Err
}
