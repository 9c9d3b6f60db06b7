// Package tree is the format-agnostic document shape produced by normalization.
//
// A Node is an object (ordered attributes, optional text and ordered children), a list
// or a scalar. Serializers decide how each shape maps to JSON or XML; the few places
// where the formats disagree are carried as hints on the node.
package tree

import "strconv"

type Kind int

const (
	KindObject Kind = iota
	KindList
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindList:
		return "list"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// StringType selects the XML lexical canonicalization applied to a string.
type StringType int

const (
	StringPlain StringType = iota
	StringNormalized
	StringToken
)

type Node struct {
	Kind Kind
	Name string
	// XMLName overrides Name for XML output.
	XMLName string

	// Object only.
	Attrs    []*Node
	Text     *Node
	Children []*Node
	// Wrap renders a JSON list item as {Name: object}.
	Wrap bool

	// Inline drops the XML container element of a list.
	Inline bool

	// XMLAttr renders a scalar list item as <Name XMLAttr="value"/>.
	XMLAttr    string
	StringType StringType

	scalar string
	truth  bool
}

func Object(name string, children ...*Node) *Node {
	n := &Node{Kind: KindObject, Name: name}
	return n.Add(children...)
}

func List(name string, items ...*Node) *Node {
	n := &Node{Kind: KindList, Name: name}
	return n.Add(items...)
}

func String(name, value string) *Node {
	return &Node{Kind: KindString, Name: name, scalar: value}
}

func NormalizedString(name, value string) *Node {
	return &Node{Kind: KindString, Name: name, scalar: value, StringType: StringNormalized}
}

func Token(name, value string) *Node {
	return &Node{Kind: KindString, Name: name, scalar: value, StringType: StringToken}
}

func Int(name string, value int) *Node {
	return &Node{Kind: KindNumber, Name: name, scalar: strconv.Itoa(value)}
}

func Float(name string, value float64) *Node {
	return &Node{Kind: KindNumber, Name: name, scalar: strconv.FormatFloat(value, 'f', -1, 64)}
}

func Bool(name string, value bool) *Node {
	return &Node{Kind: KindBool, Name: name, truth: value}
}

// Add appends children, skipping nil ones.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// AddAttr appends scalar attributes, skipping nil ones.
func (n *Node) AddAttr(attrs ...*Node) *Node {
	for _, a := range attrs {
		if a != nil {
			n.Attrs = append(n.Attrs, a)
		}
	}
	return n
}

// WithText sets the element text. In JSON it becomes a property named after text.
func (n *Node) WithText(text *Node) *Node {
	n.Text = text
	return n
}

func (n *Node) WithXMLName(name string) *Node {
	n.XMLName = name
	return n
}

func (n *Node) Wrapped() *Node {
	n.Wrap = true
	return n
}

func (n *Node) Inlined() *Node {
	n.Inline = true
	return n
}

func (n *Node) AsXMLAttr(attr string) *Node {
	n.XMLAttr = attr
	return n
}

// ElementName returns the XML element name.
func (n *Node) ElementName() string {
	if n.XMLName != "" {
		return n.XMLName
	}
	return n.Name
}

// Value returns the scalar text of a string, number or bool.
func (n *Node) Value() string {
	if n.Kind == KindBool {
		return strconv.FormatBool(n.truth)
	}
	return n.scalar
}

func (n *Node) BoolValue() bool {
	return n.truth
}

func (n *Node) IsScalar() bool {
	return n.Kind == KindString || n.Kind == KindNumber || n.Kind == KindBool
}

// Empty reports whether an object or list carries nothing. Scalars are never empty.
func (n *Node) Empty() bool {
	switch n.Kind {
	case KindObject:
		return len(n.Attrs) == 0 && len(n.Children) == 0 && n.Text == nil
	case KindList:
		return len(n.Children) == 0
	default:
		return false
	}
}

// Child returns the first attribute or child named name.
func (n *Node) Child(name string) *Node {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a
		}
	}
	if n.Text != nil && n.Text.Name == name {
		return n.Text
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Path follows Child through names.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		if cur == nil {
			return nil
		}
		cur = cur.Child(name)
	}
	return cur
}

// NonEmpty returns nil for empty strings, objects without content and empty lists.
func NonEmpty(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == KindString && n.scalar == "" {
		return nil
	}
	if n.Empty() {
		return nil
	}
	return n
}
