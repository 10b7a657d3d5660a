// Package main generates tool reference documentation from the schema table
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/sammcj/mcp-sheets/internal/schema"
)

type ToolInfo struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ReadOnly    bool            `json:"read_only"`
	Parameters  []ParameterInfo `json:"parameters"`
}

type ParameterInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`
}

type EnvVarInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RegistryData struct {
	TotalTools           int          `json:"total_tools"`
	Tools                []ToolInfo   `json:"tools"`
	EnvironmentVariables []EnvVarInfo `json:"environment_variables"`
}

const referenceTemplate = `# Tool Reference

{{.TotalTools}} tools are available. Disable any of them with ` + "`DISABLED_TOOLS`" + `.
{{range .Tools}}
## {{.Name}}

{{.Description}}
{{if .ReadOnly}}
Read-only.
{{end}}{{if .Parameters}}
| Parameter | Type | Required | Default | Description |
|---|---|---|---|---|
{{range .Parameters}}| ` + "`{{.Name}}`" + ` | {{.Type}} | {{if .Required}}yes{{else}}no{{end}} | {{.Default}} | {{.Description}} |
{{end}}{{else}}
No parameters.
{{end}}{{end}}
## Environment Variables

| Variable | Description |
|---|---|
{{range .EnvironmentVariables}}| ` + "`{{.Name}}`" + ` | {{.Description}} |
{{end}}`

func main() {
	var (
		toolName = flag.String("tool", "", "Generate docs for specific tool only")
		output   = flag.String("output", "docs/tools.md", "Output file")
		format   = flag.String("format", "markdown", "Output format (markdown or json)")
	)
	flag.Parse()

	var tools []ToolInfo
	for _, desc := range schema.Tools() {
		if *toolName != "" && desc.Name != *toolName {
			continue
		}
		tools = append(tools, extractToolInfo(desc))
	}
	if len(tools) == 0 {
		fmt.Fprintf(os.Stderr, "no tool named %q\n", *toolName)
		os.Exit(1)
	}

	data := RegistryData{
		TotalTools:           len(tools),
		Tools:                tools,
		EnvironmentVariables: getEnvironmentVariables(),
	}

	if err := write(*output, *format, data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d tools to %s\n", len(tools), *output)
}

func write(path, format string, data RegistryData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "markdown":
		tmpl, err := template.New("reference").Parse(referenceTemplate)
		if err != nil {
			return fmt.Errorf("parsing template: %w", err)
		}
		return tmpl.Execute(file, data)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func extractToolInfo(desc schema.ToolDescriptor) ToolInfo {
	info := ToolInfo{
		Name:        desc.Name,
		Title:       desc.Annotations.Title,
		Description: desc.Description,
		ReadOnly:    desc.Annotations.ReadOnly,
	}
	for _, p := range desc.InputSchema.Properties {
		param := ParameterInfo{
			Name:        p.Name,
			Type:        getParameterType(p.Node),
			Required:    desc.InputSchema.IsRequired(p.Name),
			Description: p.Node.Description,
		}
		if p.Node.Default != nil {
			param.Default = fmt.Sprint(p.Node.Default)
		}
		info.Parameters = append(info.Parameters, param)
	}
	return info
}

func getParameterType(n *schema.Node) string {
	switch n.Kind {
	case schema.KindUnion:
		kinds := make([]string, len(n.Types))
		for i, k := range n.Types {
			kinds[i] = string(k)
		}
		return strings.Join(kinds, " \\| ")
	case schema.KindArray:
		if n.Items != nil {
			return "array of " + getParameterType(n.Items)
		}
	}
	return string(n.Kind)
}

func getEnvironmentVariables() []EnvVarInfo {
	return []EnvVarInfo{
		{"GOOGLE_SHEETS_CREDENTIALS_FILE", "Path to the service account JSON key (required)"},
		{"DISABLED_TOOLS", "Comma separated tool names to hide"},
		{"LOG_LEVEL", "debug, info, warn or error (default warn)"},
		{"LOG_TOOL_ERRORS", "Record failed tool calls in ~/.mcp-sheets/logs/tool-errors.log"},
		{"MCP_SHEETS_REQUESTS_PER_MINUTE", "Google API request budget (default 60)"},
		{"MCP_SHEETS_REQUEST_TIMEOUT", "Per request timeout, e.g. 30s (default none)"},
		{"MCP_AUTH_TOKEN", "Bearer token for the HTTP transport"},
		{"OTEL_EXPORTER_OTLP_ENDPOINT", "Enables OpenTelemetry traces and metrics"},
	}
}
