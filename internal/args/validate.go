// Package args checks raw tool arguments against the tool schema and narrows
// them into a typed record per tool.
package args

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/sammcj/mcp-sheets/internal/schema"
)

// Validate checks raw against the descriptor's input schema and returns the
// tool's typed record (for example OpenSpreadsheet for open_spreadsheet).
// It checks presence and shape only; values are not range checked. A nil raw
// value is treated as an empty object.
func Validate(desc schema.ToolDescriptor, raw any) (any, error) {
	bag, err := asObject(desc.Name, raw)
	if err != nil {
		return nil, err
	}

	root := desc.InputSchema
	for _, field := range root.Required {
		if _, ok := bag[field]; !ok {
			return nil, &ValidationError{Tool: desc.Name, Field: field, Message: "is required"}
		}
	}

	narrowed := make(map[string]any, len(bag))
	for _, p := range root.Properties {
		value, present := bag[p.Name]
		if !present || (value == nil && !root.IsRequired(p.Name)) {
			if p.Node.Default != nil {
				narrowed[p.Name] = p.Node.Default
			}
			continue
		}
		if msg := checkShape(p.Node, value); msg != "" {
			return nil, &ValidationError{Tool: desc.Name, Field: p.Name, Message: msg}
		}
		narrowed[p.Name] = value
	}

	record, err := newRecord(desc.Name)
	if err != nil {
		return nil, err
	}
	if err := mapstructure.Decode(narrowed, record); err != nil {
		return nil, &ValidationError{Tool: desc.Name, Message: err.Error()}
	}
	return reflect.ValueOf(record).Elem().Interface(), nil
}

func asObject(tool string, raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, &ValidationError{Tool: tool, Message: fmt.Sprintf("expected an object, got %T", raw)}
	}
}

// newRecord returns a pointer to the zero record for tool.
func newRecord(tool string) (any, error) {
	switch tool {
	case schema.ListSpreadsheets:
		return &ListSpreadsheets{}, nil
	case schema.OpenSpreadsheet:
		return &OpenSpreadsheet{}, nil
	case schema.ListWorksheets:
		return &ListWorksheets{}, nil
	case schema.ReadWorksheet:
		return &ReadWorksheet{}, nil
	case schema.UpdateCell:
		return &UpdateCell{}, nil
	case schema.UpdateRange:
		return &UpdateRange{}, nil
	case schema.AppendRow:
		return &AppendRow{}, nil
	case schema.CreateSpreadsheet:
		return &CreateSpreadsheet{}, nil
	case schema.CreateWorksheet:
		return &CreateWorksheet{}, nil
	default:
		return nil, fmt.Errorf("no argument record for tool: %s", tool)
	}
}

// checkShape returns a description of the mismatch, or "" when value fits.
func checkShape(node *schema.Node, value any) string {
	kind := kindOf(value)
	if !node.Accepts(kind) {
		return fmt.Sprintf("must be %s, got %s", describe(node), kind)
	}

	if kind == schema.KindArray && node.Items != nil {
		rv := reflect.ValueOf(value)
		for i := 0; i < rv.Len(); i++ {
			if msg := checkShape(node.Items, rv.Index(i).Interface()); msg != "" {
				return fmt.Sprintf("item %d %s", i, msg)
			}
		}
	}
	return ""
}

func kindOf(v any) schema.Kind {
	if v == nil {
		return schema.KindNull
	}
	if _, ok := v.(json.Number); ok {
		return schema.KindNumber
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.String:
		return schema.KindString
	case reflect.Bool:
		return schema.KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return schema.KindInteger
	case reflect.Float32, reflect.Float64:
		return schema.KindNumber
	case reflect.Slice, reflect.Array:
		return schema.KindArray
	case reflect.Map, reflect.Struct:
		return schema.KindObject
	default:
		return schema.Kind(fmt.Sprintf("%T", v))
	}
}

func describe(node *schema.Node) string {
	if node.Kind != schema.KindUnion {
		return string(node.Kind)
	}
	out := ""
	for i, t := range node.Types {
		if i > 0 {
			out += "|"
		}
		out += string(t)
	}
	return out
}
