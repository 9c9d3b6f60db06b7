package serialize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/normalize"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
)

const bomFormat = "CycloneDX"

type JSONSerializer struct {
	factory *normalize.Factory
}

// NewJSONSerializer fails with ErrUnsupportedFormat when the factory's version has no JSON
// representation.
func NewJSONSerializer(f *normalize.Factory) (*JSONSerializer, error) {
	if err := checkFormat(f, spec.FormatJSON); err != nil {
		return nil, err
	}
	return &JSONSerializer{factory: f}, nil
}

func (s *JSONSerializer) Format() spec.Format {
	return spec.FormatJSON
}

func (s *JSONSerializer) Factory() *normalize.Factory {
	return s.factory
}

func (s *JSONSerializer) Serialize(ctx context.Context, b *model.Bom, opts Options) (string, error) {
	return serialize(ctx, s.factory, b, opts, s.Render)
}

// Render writes root as JSON. A bom root is prefixed with $schema, bomFormat and
// specVersion. Object members follow attributes, text and children in tree order.
func (s *JSONSerializer) Render(_ context.Context, root *tree.Node, opts Options) (string, error) {
	if root == nil {
		return "", fmt.Errorf("render json: empty tree")
	}
	w := newJSONWriter()
	var err error
	if root.Kind == tree.KindObject && root.Name == "bom" {
		sp := s.factory.Spec()
		err = w.object(root,
			member{"$schema", sp.JSONSchemaURI()},
			member{"bomFormat", bomFormat},
			member{"specVersion", sp.Version().String()},
		)
	} else {
		err = w.value(root)
	}
	if err != nil {
		return "", fmt.Errorf("render json: %w", err)
	}
	indent := opts.indent()
	if indent == "" {
		return w.buf.String(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, w.buf.Bytes(), "", indent); err != nil {
		return "", fmt.Errorf("render json: indent: %w", err)
	}
	return out.String(), nil
}

type member struct {
	key   string
	value string
}

type jsonWriter struct {
	buf     bytes.Buffer
	scratch bytes.Buffer
	enc     *json.Encoder
}

func newJSONWriter() *jsonWriter {
	w := &jsonWriter{}
	w.enc = json.NewEncoder(&w.scratch)
	w.enc.SetEscapeHTML(false)
	return w
}

func (w *jsonWriter) str(s string) error {
	w.scratch.Reset()
	if err := w.enc.Encode(s); err != nil {
		return err
	}
	w.buf.Write(bytes.TrimSuffix(w.scratch.Bytes(), []byte{'\n'}))
	return nil
}

func (w *jsonWriter) key(first *bool, name string) error {
	if !*first {
		w.buf.WriteByte(',')
	}
	*first = false
	if err := w.str(name); err != nil {
		return err
	}
	w.buf.WriteByte(':')
	return nil
}

func (w *jsonWriter) object(n *tree.Node, prefix ...member) error {
	w.buf.WriteByte('{')
	first := true
	for _, m := range prefix {
		if m.value == "" {
			continue
		}
		if err := w.key(&first, m.key); err != nil {
			return err
		}
		if err := w.str(m.value); err != nil {
			return err
		}
	}
	for _, a := range n.Attrs {
		if err := w.key(&first, a.Name); err != nil {
			return err
		}
		if err := w.scalar(a); err != nil {
			return err
		}
	}
	if n.Text != nil {
		if err := w.key(&first, n.Text.Name); err != nil {
			return err
		}
		if err := w.scalar(n.Text); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := w.key(&first, c.Name); err != nil {
			return err
		}
		if err := w.value(c); err != nil {
			return err
		}
	}
	w.buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) array(n *tree.Node) error {
	w.buf.WriteByte('[')
	for i, item := range n.Children {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		if item.Kind == tree.KindObject && item.Wrap {
			w.buf.WriteByte('{')
			if err := w.str(item.Name); err != nil {
				return err
			}
			w.buf.WriteByte(':')
			if err := w.object(item); err != nil {
				return err
			}
			w.buf.WriteByte('}')
			continue
		}
		if err := w.value(item); err != nil {
			return err
		}
	}
	w.buf.WriteByte(']')
	return nil
}

func (w *jsonWriter) value(n *tree.Node) error {
	switch n.Kind {
	case tree.KindObject:
		return w.object(n)
	case tree.KindList:
		return w.array(n)
	default:
		return w.scalar(n)
	}
}

func (w *jsonWriter) scalar(n *tree.Node) error {
	switch n.Kind {
	case tree.KindString:
		return w.str(n.Value())
	case tree.KindNumber, tree.KindBool:
		v := n.Value()
		if !gjson.Valid(v) {
			return fmt.Errorf("field %s: %q is not a JSON number", n.Name, v)
		}
		w.buf.WriteString(v)
		return nil
	default:
		return fmt.Errorf("field %s: %s is not a scalar", n.Name, n.Kind)
	}
}
