package registry

import (
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-sheets/internal/schema"
	"github.com/sirupsen/logrus"
)

// Registry is the read-only set of tools the server advertises and routes.
type Registry struct {
	tools    []schema.ToolDescriptor
	byName   map[string]int
	disabled map[string]bool
	logger   *logrus.Logger
}

// New builds a registry from the static tool table, minus any disabled tools.
// Names in disabled that match no tool are ignored.
func New(logger *logrus.Logger, disabled []string) *Registry {
	r := &Registry{
		byName:   make(map[string]int),
		disabled: make(map[string]bool),
		logger:   logger,
	}

	for _, name := range disabled {
		name = strings.TrimSpace(name)
		if name != "" {
			r.disabled[name] = true
		}
	}

	for _, tool := range schema.Tools() {
		if r.disabled[tool.Name] {
			if logger != nil {
				logger.WithField("tool", tool.Name).Debug("Tool disabled")
			}
			continue
		}
		r.byName[tool.Name] = len(r.tools)
		r.tools = append(r.tools, tool)
	}

	if logger != nil {
		for name := range r.disabled {
			if !isKnownTool(name) {
				logger.WithField("tool", name).Debug("Ignoring unknown tool in disabled list")
			}
		}
		logger.WithField("count", len(r.tools)).Debug("Tool registry initialised")
	}

	return r
}

// ParseDisabledTools splits a comma separated tool list.
func ParseDisabledTools(value string) []string {
	var out []string
	for tool := range strings.SplitSeq(value, ",") {
		tool = strings.TrimSpace(tool)
		if tool != "" {
			out = append(out, tool)
		}
	}
	return out
}

// ListTools returns the enabled tools in their declared order.
func (r *Registry) ListTools() []schema.ToolDescriptor {
	return slices.Clone(r.tools)
}

// Lookup returns the descriptor for name. Disabled tools are not found.
func (r *Registry) Lookup(name string) (schema.ToolDescriptor, bool) {
	i, ok := r.byName[name]
	if !ok {
		return schema.ToolDescriptor{}, false
	}
	return r.tools[i], true
}

// Names returns the enabled tool names in declared order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name
	}
	return names
}

// IsDisabled reports whether name was disabled by the operator.
func (r *Registry) IsDisabled(name string) bool {
	return r.disabled[name]
}

// Definitions converts the enabled tools into mcp-go tool definitions.
func (r *Registry) Definitions() []mcp.Tool {
	defs := make([]mcp.Tool, len(r.tools))
	for i, t := range r.tools {
		defs[i] = Definition(t)
	}
	return defs
}

// Definition converts a single descriptor.
func Definition(t schema.ToolDescriptor) mcp.Tool {
	tool := mcp.NewTool(t.Name,
		mcp.WithDescription(t.Description),
		mcp.WithTitleAnnotation(t.Annotations.Title),
		mcp.WithReadOnlyHintAnnotation(t.Annotations.ReadOnly),
		mcp.WithDestructiveHintAnnotation(t.Annotations.Destructive),
		mcp.WithIdempotentHintAnnotation(t.Annotations.Idempotent),
		mcp.WithOpenWorldHintAnnotation(t.Annotations.OpenWorld),
	)

	if tool.InputSchema.Properties == nil {
		tool.InputSchema.Properties = make(map[string]any)
	}
	for _, p := range t.InputSchema.Properties {
		tool.InputSchema.Properties[p.Name] = p.Node.JSONSchema()
	}
	if len(t.InputSchema.Required) > 0 {
		tool.InputSchema.Required = slices.Clone(t.InputSchema.Required)
	}

	return tool
}

func isKnownTool(name string) bool {
	for _, t := range schema.Tools() {
		if t.Name == name {
			return true
		}
	}
	return false
}
