// Package cli runs the sheet tools straight from the command line. Calls go
// through the same dispatcher as the MCP server, so no server or network
// round-trip to an MCP client is needed.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sammcj/mcp-sheets/internal/dispatch"
	"github.com/sammcj/mcp-sheets/internal/registry"
	"github.com/sammcj/mcp-sheets/internal/schema"
)

// OutputFormat controls how tool results are rendered.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json"; empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use text or json)", s)
	}
}

// Runner executes CLI commands against the registry and dispatcher.
type Runner struct {
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	output     OutputFormat
	out        io.Writer
}

// NewRunner creates a Runner writing to w, or stdout when w is nil. The
// dispatcher may be nil for list and help, which never call the API.
func NewRunner(reg *registry.Registry, d *dispatch.Dispatcher, output OutputFormat, w io.Writer) *Runner {
	if w == nil {
		w = os.Stdout
	}
	return &Runner{registry: reg, dispatcher: d, output: output, out: w}
}

// ListTools prints all enabled tools with their descriptions.
func (r *Runner) ListTools() error {
	tools := r.registry.ListTools()
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	if r.output == OutputJSON {
		type jsonEntry struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			ReadOnly    bool   `json:"read_only"`
		}
		out := make([]jsonEntry, len(tools))
		for i, t := range tools {
			out[i] = jsonEntry{Name: t.Name, Description: firstLine(t.Description), ReadOnly: t.Annotations.ReadOnly}
		}
		return writeJSON(r.out, out)
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, firstLine(t.Description))
	}
	return w.Flush()
}

// HelpTool prints the parameters of a single tool.
func (r *Runner) HelpTool(name string) error {
	desc, ok := r.resolveTool(name)
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}

	if r.output == OutputJSON {
		return writeJSON(r.out, registry.Definition(desc))
	}

	fmt.Fprintf(r.out, "Tool: %s\n\n", desc.Name)
	if desc.Description != "" {
		fmt.Fprintf(r.out, "%s\n\n", desc.Description)
	}

	if len(desc.InputSchema.Properties) == 0 {
		fmt.Fprintln(r.out, "No parameters.")
		return nil
	}

	fmt.Fprintln(r.out, "Parameters:")

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, p := range desc.InputSchema.Properties {
		extra := ""
		if desc.InputSchema.IsRequired(p.Name) {
			extra = " (required)"
		} else if p.Node.Default != nil {
			extra = fmt.Sprintf(" (default %v)", p.Node.Default)
		}
		fmt.Fprintf(w, "  --%s\t%s\t%s%s\n", toFlagName(p.Name), typeLabel(p.Node), firstLine(p.Node.Description), extra)
	}
	return w.Flush()
}

// RunTool executes a tool by name. args can be a JSON object, --key=value
// flags, or both; flags take precedence over JSON.
func (r *Runner) RunTool(ctx context.Context, name string, args []string) error {
	desc, ok := r.resolveTool(name)
	if !ok {
		return fmt.Errorf("unknown tool: %s (run 'mcp-sheets tools list' to see available tools)", name)
	}
	if r.dispatcher == nil {
		return fmt.Errorf("no dispatcher configured")
	}

	params, err := parseArgs(args, desc)
	if err != nil {
		return fmt.Errorf("argument error: %w", err)
	}

	res := r.dispatcher.Dispatch(ctx, desc.Name, params)
	if res.Failed() {
		return fmt.Errorf("tool error: %w", res.Err)
	}

	if r.output == OutputJSON {
		return writeJSON(r.out, struct {
			Tool    string `json:"tool"`
			Outcome string `json:"outcome"`
			Content string `json:"content"`
		}{desc.Name, res.Outcome.String(), res.Envelope.Body})
	}

	_, err = fmt.Fprintln(r.out, res.Envelope.Body)
	return err
}

// resolveTool accepts the registered snake_case name or its kebab-case form.
func (r *Runner) resolveTool(name string) (schema.ToolDescriptor, bool) {
	if desc, ok := r.registry.Lookup(name); ok {
		return desc, true
	}
	return r.registry.Lookup(strings.ReplaceAll(name, "-", "_"))
}

// parseArgs converts CLI arguments into the raw argument object the
// dispatcher validates.
func parseArgs(args []string, desc schema.ToolDescriptor) (map[string]any, error) {
	params := make(map[string]any)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(arg), &obj); err != nil {
				return nil, fmt.Errorf("invalid JSON argument: %w", err)
			}
			for k, v := range obj {
				if _, exists := params[k]; !exists {
					params[k] = v
				}
			}
			continue
		}

		if strings.HasPrefix(arg, "--") {
			key, val, err := parseFlag(arg, args, &i, desc.InputSchema)
			if err != nil {
				return nil, err
			}
			params[key] = val
			continue
		}

		return nil, fmt.Errorf("unexpected argument: %s (use --key=value flags or pass a JSON object)", arg)
	}

	return params, nil
}

// parseFlag parses --key=value, --key value or a bare boolean --flag.
func parseFlag(arg string, args []string, idx *int, input *schema.Node) (string, any, error) {
	stripped := strings.TrimPrefix(arg, "--")

	if flagName, rawVal, found := strings.Cut(stripped, "="); found {
		paramName := strings.ReplaceAll(flagName, "-", "_")
		node, _ := input.Property(paramName)
		return paramName, coerceValue(rawVal, node), nil
	}

	paramName := strings.ReplaceAll(stripped, "-", "_")
	node, _ := input.Property(paramName)
	if node != nil && node.Kind == schema.KindBoolean {
		return paramName, true, nil
	}

	*idx++
	if *idx >= len(args) {
		return "", nil, fmt.Errorf("flag --%s requires a value", stripped)
	}
	return paramName, coerceValue(args[*idx], node), nil
}

// coerceValue converts a flag value to the kind the schema expects. Unknown
// parameters stay strings so the validator can report them.
func coerceValue(raw string, node *schema.Node) any {
	if node == nil {
		return raw
	}

	switch node.Kind {
	case schema.KindInteger, schema.KindNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		return raw
	case schema.KindBoolean:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		return raw
	case schema.KindArray:
		var arr []any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return arr
		}
		if node.Items != nil && node.Items.Kind == schema.KindArray {
			return raw
		}
		parts := strings.Split(raw, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out
	case schema.KindUnion:
		// only a JSON literal becomes a number, bool or null, so 007 stays text
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil && node.Accepts(jsonKind(v)) {
			return v
		}
		return raw
	default:
		return raw
	}
}

// jsonKind reports the schema kind of a decoded JSON scalar.
func jsonKind(v any) schema.Kind {
	switch v.(type) {
	case nil:
		return schema.KindNull
	case bool:
		return schema.KindBoolean
	case float64:
		return schema.KindNumber
	case string:
		return schema.KindString
	default:
		return schema.KindObject
	}
}

func typeLabel(n *schema.Node) string {
	switch n.Kind {
	case schema.KindUnion:
		parts := make([]string, len(n.Types))
		for i, t := range n.Types {
			parts[i] = string(t)
		}
		return strings.Join(parts, "|")
	case schema.KindArray:
		if n.Items != nil {
			return typeLabel(n.Items) + "[]"
		}
	}
	return string(n.Kind)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstLine(s string) string {
	if before, _, found := strings.Cut(s, "\n"); found {
		return before
	}
	return s
}

// toFlagName converts snake_case to kebab-case for CLI flags.
func toFlagName(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}
