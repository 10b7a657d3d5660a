// Package schema holds the static tool table advertised to MCP clients and
// used as the ground truth for argument validation.
package schema

// Kind is the JSON Schema type of a node.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
	// KindUnion accepts any of the kinds listed in Node.Types.
	KindUnion Kind = "union"
)

// Node describes the shape of a value.
type Node struct {
	Kind        Kind
	Types       []Kind
	Description string
	Properties  []Property
	Required    []string
	Items       *Node
	Default     any
}

// Property is a named field of an object node. Order is preserved.
type Property struct {
	Name string
	Node *Node
}

// Annotations are the behavioural hints passed through to MCP clients.
type Annotations struct {
	Title       string
	ReadOnly    bool
	Destructive bool
	Idempotent  bool
	OpenWorld   bool
}

// ToolDescriptor is an immutable tool definition.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema *Node
	Annotations Annotations
}

// Property returns the named property of an object node.
func (n *Node) Property(name string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is in the node's required set.
func (n *Node) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, r := range n.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Accepts reports whether a value of kind k fits the node. Integer and
// number are interchangeable: the validator checks shape, not range.
func (n *Node) Accepts(k Kind) bool {
	kinds := []Kind{n.Kind}
	if n.Kind == KindUnion {
		kinds = n.Types
	}
	for _, t := range kinds {
		if t == k || (isNumeric(t) && isNumeric(k)) {
			return true
		}
	}
	return false
}

func isNumeric(k Kind) bool {
	return k == KindNumber || k == KindInteger
}

// JSONSchema renders the node as a JSON Schema fragment.
func (n *Node) JSONSchema() map[string]any {
	out := map[string]any{}

	switch n.Kind {
	case KindUnion:
		types := make([]string, len(n.Types))
		for i, t := range n.Types {
			types[i] = string(t)
		}
		out["type"] = types
	default:
		out["type"] = string(n.Kind)
	}

	if n.Description != "" {
		out["description"] = n.Description
	}
	if n.Default != nil {
		out["default"] = n.Default
	}

	if n.Kind == KindObject {
		props := make(map[string]any, len(n.Properties))
		for _, p := range n.Properties {
			props[p.Name] = p.Node.JSONSchema()
		}
		out["properties"] = props
		if len(n.Required) > 0 {
			out["required"] = append([]string(nil), n.Required...)
		}
	}

	if n.Kind == KindArray && n.Items != nil {
		out["items"] = n.Items.JSONSchema()
	}

	return out
}
