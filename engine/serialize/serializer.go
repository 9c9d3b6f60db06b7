// Package serialize renders normalized trees as CycloneDX JSON or XML documents.
package serialize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/bomkit/engine/bomref"
	"github.com/compozy/bomkit/engine/model"
	"github.com/compozy/bomkit/engine/normalize"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/tree"
	"github.com/compozy/bomkit/pkg/logger"
)

var ErrUnsupportedFormat = errors.New("format not supported by spec version")

// Options controls layout. IndentString wins over Indent; neither set means compact output.
type Options struct {
	Indent       int
	IndentString string
}

func (o Options) indent() string {
	if o.IndentString != "" {
		return o.IndentString
	}
	if o.Indent > 0 {
		return strings.Repeat(" ", o.Indent)
	}
	return ""
}

type Serializer interface {
	Format() spec.Format
	Factory() *normalize.Factory
	// Render writes an already normalized tree.
	Render(ctx context.Context, root *tree.Node, opts Options) (string, error)
	// Serialize discriminates the bom-refs of b, normalizes and renders it, then restores
	// the original refs.
	Serialize(ctx context.Context, b *model.Bom, opts Options) (string, error)
}

// New returns the serializer for format.
func New(f *normalize.Factory, format spec.Format) (Serializer, error) {
	switch format {
	case spec.FormatJSON:
		return NewJSONSerializer(f)
	case spec.FormatXML:
		return NewXMLSerializer(f)
	default:
		return nil, fmt.Errorf("%w: %q", spec.ErrUnknownFormat, format)
	}
}

func checkFormat(f *normalize.Factory, format spec.Format) error {
	if f == nil {
		return errors.New("serializer requires a normalization factory")
	}
	if !f.Spec().SupportsFormat(format) {
		return fmt.Errorf("%w: %s has no %s representation", ErrUnsupportedFormat, f.Spec(), format)
	}
	return nil
}

type renderFunc func(ctx context.Context, root *tree.Node, opts Options) (string, error)

func serialize(
	ctx context.Context,
	f *normalize.Factory,
	b *model.Bom,
	opts Options,
	render renderFunc,
) (string, error) {
	if b == nil {
		return "", errors.New("serialize: bom is nil")
	}
	log := logger.FromContext(ctx)
	var out string
	err := bomref.Session(b, func(d *bomref.Discriminator) error {
		log.Debug("discriminated bom-refs", "refs", d.Len(), "spec", f.Spec().String())
		root, err := f.Bom(b)
		if err != nil {
			return err
		}
		out, err = render(ctx, root, opts)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("serialize bom: %w", err)
	}
	return out, nil
}
