package helpers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tidwall/pretty"

	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/pkg/logger"
)

// ReadInput reads a file, or standard input for "" and "-".
func ReadInput(ctx context.Context, source string, stdin io.Reader) ([]byte, error) {
	log := logger.FromContext(ctx)
	switch source {
	case "", "-":
		log.Debug("reading input from stdin")
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	default:
		log.Debug("reading input file", "path", source)
		data, err := os.ReadFile(filepath.Clean(source))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		return data, nil
	}
}

// WriteDocument writes a rendered document to path, or to w when path is "" or "-".
// JSON written to a colour-capable terminal is highlighted.
func WriteDocument(ctx context.Context, w io.Writer, path string, format spec.Format, doc string) error {
	if path != "" && path != "-" {
		if err := os.WriteFile(filepath.Clean(path), []byte(doc+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.FromContext(ctx).Info("wrote document", "path", path, "format", format, "bytes", len(doc))
		return nil
	}
	out := []byte(doc)
	if f, ok := w.(*os.File); ok && format == spec.FormatJSON && ShouldUseColor(f) {
		out = pretty.Color(out, nil)
	}
	out = append(out, '\n')
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
