// Package dispatch routes a tool call through validation and the gateway and
// classifies the result into one of four outcomes.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-sheets/internal/args"
	"github.com/sammcj/mcp-sheets/internal/envelope"
	"github.com/sammcj/mcp-sheets/internal/errorlog"
	"github.com/sammcj/mcp-sheets/internal/gateway"
	"github.com/sammcj/mcp-sheets/internal/registry"
	"github.com/sammcj/mcp-sheets/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Options configures a Dispatcher. Only Logger is required.
type Options struct {
	Logger *logrus.Logger
	// ErrorLog receives opaque failures in addition to Logger.
	ErrorLog *errorlog.Logger
	// Transport labels metrics and the error log ("stdio", "sse", "http", "cli").
	Transport string
}

// Dispatcher holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	registry  *registry.Registry
	gateway   gateway.Gateway
	handlers  map[string]handler
	logger    *logrus.Logger
	errorLog  *errorlog.Logger
	transport string
}

// New builds the handler table for every tool in reg. It fails if a tool has
// no handler.
func New(reg *registry.Registry, gw gateway.Gateway, opts Options) (*Dispatcher, error) {
	return newDispatcher(reg, gw, opts, handlers())
}

func newDispatcher(reg *registry.Registry, gw gateway.Gateway, opts Options, all map[string]handler) (*Dispatcher, error) {
	if reg == nil || gw == nil {
		return nil, fmt.Errorf("dispatcher requires a registry and a gateway")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	errLog := opts.ErrorLog
	if errLog == nil {
		errLog = errorlog.Disabled()
	}

	table := make(map[string]handler, len(all))
	for _, name := range reg.Names() {
		h, ok := all[name]
		if !ok {
			return nil, fmt.Errorf("no handler registered for tool %s", name)
		}
		table[name] = h
	}

	return &Dispatcher{
		registry:  reg,
		gateway:   gw,
		handlers:  table,
		logger:    logger,
		errorLog:  errLog,
		transport: opts.Transport,
	}, nil
}

// Dispatch runs one tool call. It never panics on bad input and never
// retries. No deadline is added to ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw any) Result {
	start := time.Now()
	argMap, _ := raw.(map[string]any)

	ctx, span := telemetry.StartToolSpan(ctx, name, argMap)
	res := d.dispatch(ctx, name, raw, argMap)

	var spanErr error
	if res.Failed() {
		spanErr = res.Err
	}
	telemetry.EndToolSpan(span, res.Outcome.String(), spanErr)
	telemetry.RecordToolCall(ctx, name, d.transport, res.Outcome.String(), float64(time.Since(start).Milliseconds()))

	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, raw any, argMap map[string]any) Result {
	log := d.logger.WithField("tool", name)

	desc, ok := d.registry.Lookup(name)
	if !ok {
		if d.registry.IsDisabled(name) {
			log.Debug("Rejected call to disabled tool")
		} else {
			log.Debug("Rejected call to unknown tool")
		}
		return Result{
			Outcome: ContractViolation,
			Err:     &ContractViolationError{Tool: name, Err: fmt.Errorf("%w: %s", ErrUnknownTool, name)},
		}
	}
	h := d.handlers[name]

	record, err := args.Validate(desc, raw)
	if err != nil {
		log.WithError(err).Debug("Rejected malformed arguments")
		telemetry.RecordToolError(ctx, name, telemetry.ErrorCategoryValidation)
		return Result{Outcome: ContractViolation, Err: &ContractViolationError{Tool: name, Err: err}}
	}

	log.Debug("Executing tool")
	env, err := h.run(ctx, d.gateway, record)
	if err == nil {
		return Result{Outcome: Succeeded, Envelope: env}
	}

	if nf, ok := gateway.AsNotFound(err); ok {
		log.WithField("identifier", nf.Identifier).Debugf("%s not found", nf.Kind)
		return Result{Outcome: DomainNotFound, Envelope: envelope.NotFound(h.byIdentifier, nf), Err: nf}
	}

	opaque := &OpaqueError{Tool: name, Action: h.action, Err: err}
	log.WithError(err).WithField("transport", d.transport).Errorf("Error %s", h.action)
	d.errorLog.Record(name, argMap, OpaqueFailure.String(), opaque, d.transport)
	telemetry.RecordToolError(ctx, name, telemetry.CategoriseToolError(err))

	return Result{Outcome: OpaqueFailure, Err: opaque}
}

// Call adapts Dispatch to the mcp-go handler shape. Succeeded and
// DomainNotFound become text results; the other outcomes become errors.
func (d *Dispatcher) Call(ctx context.Context, name string, raw any) (*mcp.CallToolResult, error) {
	res := d.Dispatch(ctx, name, raw)
	if res.Failed() {
		return nil, res.Err
	}
	return res.Envelope.ToCallToolResult(), nil
}

// Handle is an mcp-go ToolHandlerFunc for any registered tool.
func (d *Dispatcher) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return d.Call(ctx, request.Params.Name, request.Params.Arguments)
}
