package serialize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/normalize"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
	"github.com/compozy/bomkit/pkg/backend"
	"github.com/compozy/bomkit/pkg/logger"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

// errIndentUnsupported is returned by an engine that cannot produce the requested indent.
var errIndentUnsupported = errors.New("indent not supported by xml engine")

type attr struct {
	name  string
	value string
}

// element is the XML view of a tree node with canonicalization and list inlining applied.
type element struct {
	name     string
	attrs    []attr
	text     string
	hasText  bool
	children []*element
}

// xmlEngine writes the declaration followed by root.
type xmlEngine interface {
	write(w io.Writer, root *element, indent string) error
}

const (
	EngineEtree  = "etree"
	EngineStdlib = "encoding/xml"
)

func xmlCandidates() []backend.Candidate[xmlEngine] {
	return []backend.Candidate[xmlEngine]{
		{Name: EngineEtree, Load: func() (xmlEngine, error) { return etreeEngine{}, nil }},
		{Name: EngineStdlib, Load: func() (xmlEngine, error) { return stdlibEngine{}, nil }},
	}
}

var defaultXMLEngines = backend.NewResolver("xml renderer", xmlCandidates()...)

type XMLOption func(*XMLSerializer)

// WithXMLEngines replaces the engine candidates, in priority order. Unknown names are
// kept and report as not installed.
func WithXMLEngines(names ...string) XMLOption {
	return func(s *XMLSerializer) {
		known := make(map[string]backend.Candidate[xmlEngine])
		for _, c := range xmlCandidates() {
			known[c.Name] = c
		}
		candidates := make([]backend.Candidate[xmlEngine], 0, len(names))
		for _, name := range names {
			c, ok := known[name]
			if !ok {
				c = backend.Candidate[xmlEngine]{Name: name}
			}
			candidates = append(candidates, c)
		}
		s.engines = backend.NewResolver("xml renderer", candidates...)
	}
}

type XMLSerializer struct {
	factory *normalize.Factory
	engines *backend.Resolver[xmlEngine]
}

// NewXMLSerializer fails with ErrUnsupportedFormat when the factory's version has no XML
// representation.
func NewXMLSerializer(f *normalize.Factory, opts ...XMLOption) (*XMLSerializer, error) {
	if err := checkFormat(f, spec.FormatXML); err != nil {
		return nil, err
	}
	s := &XMLSerializer{factory: f, engines: defaultXMLEngines}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *XMLSerializer) Format() spec.Format {
	return spec.FormatXML
}

func (s *XMLSerializer) Factory() *normalize.Factory {
	return s.factory
}

func (s *XMLSerializer) Serialize(ctx context.Context, b *model.Bom, opts Options) (string, error) {
	return serialize(ctx, s.factory, b, opts, s.Render)
}

// Render writes root as an XML document in the version's namespace.
func (s *XMLSerializer) Render(ctx context.Context, root *tree.Node, opts Options) (string, error) {
	if root == nil || root.Kind != tree.KindObject {
		return "", fmt.Errorf("render xml: root must be an object")
	}
	engine, name, err := s.engines.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("render xml: %w", err)
	}
	el := buildElement(root)
	el.attrs = append([]attr{{name: "xmlns", value: s.factory.Spec().Namespace()}}, el.attrs...)

	var out strings.Builder
	err = engine.write(&out, el, opts.indent())
	if errors.Is(err, errIndentUnsupported) {
		logger.FromContext(ctx).Debug("xml engine cannot indent, using built-in writer", "engine", name)
		out.Reset()
		err = stdlibEngine{}.write(&out, el, opts.indent())
	}
	if err != nil {
		return "", fmt.Errorf("render xml with %s: %w", name, err)
	}
	return out.String(), nil
}

func buildElement(n *tree.Node) *element {
	el := &element{name: n.ElementName()}
	for _, a := range n.Attrs {
		el.attrs = append(el.attrs, attr{name: a.ElementName(), value: scalarText(a)})
	}
	if n.Text != nil {
		el.text, el.hasText = scalarText(n.Text), true
	}
	for _, c := range n.Children {
		el.children = appendNode(el.children, c)
	}
	return el
}

func appendNode(dst []*element, n *tree.Node) []*element {
	switch n.Kind {
	case tree.KindObject:
		return append(dst, buildElement(n))
	case tree.KindList:
		items := make([]*element, 0, len(n.Children))
		for _, item := range n.Children {
			items = appendNode(items, item)
		}
		if n.Inline {
			return append(dst, items...)
		}
		return append(dst, &element{name: n.ElementName(), children: items})
	default:
		if n.XMLAttr != "" {
			return append(dst, &element{name: n.ElementName(), attrs: []attr{{name: n.XMLAttr, value: scalarText(n)}}})
		}
		return append(dst, &element{name: n.ElementName(), text: scalarText(n), hasText: true})
	}
}

func scalarText(n *tree.Node) string {
	if n.Kind == tree.KindString {
		return Canonicalize(n.Value(), n.StringType)
	}
	return n.Value()
}
