package schema

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/kaptinlin/jsonschema"

	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/pkg/logger"
)

type Result = jsonschema.EvaluationResult

type compiled struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// compiledSchemaCache holds one *compiled per spec.Version.
var compiledSchemaCache sync.Map

// Compile returns the compiled JSON schema for v, compiling it on first use. Concurrent
// callers for the same version share one compilation.
func Compile(ctx context.Context, v spec.Version) (*jsonschema.Schema, error) {
	if !HasJSONSchema(v) {
		return nil, fmt.Errorf("%w: CycloneDX %s json", ErrNoSchema, v)
	}
	start := time.Now()
	entry, loaded := compiledSchemaCache.LoadOrStore(v, &compiled{})
	c := entry.(*compiled)
	c.once.Do(func() {
		c.schema, c.err = compile(v)
		logger.FromContext(ctx).Debug("compiled json schema", "spec", v, "err", c.err)
	})
	recordSchemaCompile(ctx, time.Since(start), loaded)
	if c.err != nil {
		return nil, c.err
	}
	return c.schema, nil
}

// Validate checks instance, a decoded JSON document, against the schema for v.
func Validate(ctx context.Context, v spec.Version, instance any) (*Result, error) {
	s, err := Compile(ctx, v)
	if err != nil {
		return nil, err
	}
	return s.Validate(instance), nil
}

func compile(v spec.Version) (*jsonschema.Schema, error) {
	raw, err := JSONSchema(v)
	if err != nil {
		return nil, err
	}
	compiler := newCompiler()
	for _, dep := range []struct{ file, id string }{
		{SPDXJSONSchemaFile, SPDXJSONSchemaID},
		{JSFJSONSchemaFile, JSFJSONSchemaID},
	} {
		data, err := fs.ReadFile(FS(), dep.file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dep.file, err)
		}
		if _, err := compileDocument(compiler, data, dep.id); err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", dep.file, err)
		}
	}
	s, err := compileDocument(compiler, raw, spec.JSONSchemaURI(v))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", JSONSchemaFile(v), err)
	}
	return s, nil
}

// compileDocument translates a draft-07 document and compiles it under id. References may
// only reach the document itself and the shared SPDX and JSF schemas.
func compileDocument(compiler *jsonschema.Compiler, raw []byte, id string) (*jsonschema.Schema, error) {
	translated, err := translate(raw, SPDXJSONSchemaID, JSFJSONSchemaID)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(translated, id)
}

func newCompiler() *jsonschema.Compiler {
	refuse := func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("%w: %s", ErrRemoteReference, url)
	}
	compiler := jsonschema.NewCompiler()
	compiler.RegisterLoader("http", refuse)
	compiler.RegisterLoader("https", refuse)
	return compiler
}

func cacheSize() int64 {
	var count int64
	compiledSchemaCache.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
