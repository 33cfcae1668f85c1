// Package schema holds the one declarative definition of every resource the
// API accepts or stores. A definition compiles into an OpenAPI schema for
// request validation, an OpenAPI schema for in-process storage checks and a
// MongoDB $jsonSchema collection validator.
package schema

// Kind is the data type of a node.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindObject
	KindArray
	KindObjectID
	KindBinary
	KindTime
)

// Scope decides which compiled schemas a property ends up in.
type Scope int

const (
	// InBoth properties are accepted in requests and kept in storage.
	InBoth Scope = iota
	// InRequest properties only exist on the wire.
	InRequest
	// InStorage properties are set by the server and never accepted from clients.
	InStorage
)

func (s Scope) includes(target Scope) bool {
	return s == InBoth || s == target
}

// Node describes a single value.
type Node struct {
	Kind        Kind
	Description string
	Example     any

	Minimum   *float64
	Maximum   *float64
	MinLength *int64
	MaxLength *int64
	Pattern   string
	Format    string
	Enum      []any

	Items    *Node
	MinItems *int64
	MaxItems *int64

	Props []Prop
}

// Prop is a named property of an object node.
type Prop struct {
	Name     string
	Node     *Node
	Required bool
	Scope    Scope
}

func String() *Node   { return &Node{Kind: KindString} }
func Integer() *Node  { return &Node{Kind: KindInteger} }
func Number() *Node   { return &Node{Kind: KindNumber} }
func ObjectID() *Node { return &Node{Kind: KindObjectID, Example: "5bd3ddfdf20ff91132255496"} }
func Binary() *Node   { return &Node{Kind: KindBinary} }
func Time() *Node     { return &Node{Kind: KindTime} }

func Object(props ...Prop) *Node {
	return &Node{Kind: KindObject, Props: props}
}

func ArrayOf(items *Node) *Node {
	return &Node{Kind: KindArray, Items: items}
}

func (n *Node) Min(v float64) *Node {
	n.Minimum = &v
	return n
}

func (n *Node) Max(v float64) *Node {
	n.Maximum = &v
	return n
}

func (n *Node) MinLen(v int64) *Node {
	n.MinLength = &v
	return n
}

func (n *Node) MaxLen(v int64) *Node {
	n.MaxLength = &v
	return n
}

// Len fixes the number of items of an array node.
func (n *Node) Len(v int64) *Node {
	n.MinItems = &v
	n.MaxItems = &v
	return n
}

func (n *Node) OneOf(values ...any) *Node {
	n.Enum = values
	return n
}

func (n *Node) Matching(pattern string) *Node {
	n.Pattern = pattern
	return n
}

func (n *Node) Formatted(format string) *Node {
	n.Format = format
	return n
}

func (n *Node) Describe(s string) *Node {
	n.Description = s
	return n
}

func (n *Node) Eg(v any) *Node {
	n.Example = v
	return n
}

// Field creates an optional property that is accepted in requests and kept in storage.
func Field(name string, n *Node) Prop {
	return Prop{Name: name, Node: n}
}

func (p Prop) Req() Prop {
	p.Required = true
	return p
}

// RequestOnly limits the property to requests.
func (p Prop) RequestOnly() Prop {
	p.Scope = InRequest
	return p
}

// StorageOnly limits the property to storage.
func (p Prop) StorageOnly() Prop {
	p.Scope = InStorage
	return p
}

// Merge combines the properties of object nodes into a single object node.
// Later properties replace earlier ones with the same name and scope.
func Merge(nodes ...*Node) *Node {
	out := Object()
	for _, n := range nodes {
		if n == nil {
			continue
		}
		for _, p := range n.Props {
			replaced := false
			for i, existing := range out.Props {
				if existing.Name == p.Name && existing.Scope == p.Scope {
					out.Props[i] = p
					replaced = true
					break
				}
			}
			if !replaced {
				out.Props = append(out.Props, p)
			}
		}
	}
	return out
}

// Partial returns a copy of an object node in which no property is required,
// recursively. It is used for patch bodies.
func (n *Node) Partial() *Node {
	cp := *n
	if n.Kind != KindObject {
		return &cp
	}

	cp.Props = make([]Prop, 0, len(n.Props))
	for _, p := range n.Props {
		p.Required = false
		p.Node = p.Node.Partial()
		cp.Props = append(cp.Props, p)
	}
	return &cp
}
