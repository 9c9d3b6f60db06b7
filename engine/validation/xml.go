package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/beevik/etree"

	"github.com/compozy/bomkit/engine/schema"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/pkg/backend"
	"github.com/compozy/bomkit/pkg/logger"
)

// BackendXMLLint is the libxml2 command line validator.
const BackendXMLLint = "xmllint"

func xmlCandidates() []backend.Candidate[engine] {
	return []backend.Candidate[engine]{
		{Name: BackendXMLLint, Load: loadXMLLint},
	}
}

var defaultXMLEngines = backend.NewResolver("xml validator", xmlCandidates()...)

type XMLValidator struct {
	*base
}

// NewXMLValidator fails only for unknown versions. Versions without an XSD build a
// validator whose Validate reports ErrNotImplemented.
func NewXMLValidator(v spec.Version, opts ...Option) (*XMLValidator, error) {
	b, err := newBase(v, spec.FormatXML, "xml schema", defaultXMLEngines, xmlCandidates, opts)
	if err != nil {
		return nil, err
	}
	return &XMLValidator{base: b}, nil
}

func loadXMLLint() (engine, error) {
	path, err := exec.LookPath(BackendXMLLint)
	if err != nil {
		return nil, err
	}
	return &xmllintEngine{path: path}, nil
}

var (
	xsdDirOnce sync.Once
	xsdDir     string
	xsdDirErr  error
)

// schemaDir materializes the embedded XSDs once per process.
func schemaDir() (string, error) {
	xsdDirOnce.Do(func() {
		dir, err := os.MkdirTemp("", "bomkit-xsd-")
		if err != nil {
			xsdDirErr = fmt.Errorf("create xsd directory: %w", err)
			return
		}
		if err := schema.ExtractXSDs(dir); err != nil {
			xsdDirErr = err
			return
		}
		xsdDir = dir
	})
	return xsdDir, xsdDirErr
}

type xmllintEngine struct {
	path string
}

// xmllint exit statuses for validation failures.
const (
	xmllintValidationError = 3
	xmllintSchemaError     = 4
)

var xmllintLine = regexp.MustCompile(`^-:(\d+): (.*)$`)

func (e *xmllintEngine) validate(ctx context.Context, v spec.Version, doc string) (Errors, error) {
	if err := etree.NewDocument().ReadFromString(doc); err != nil {
		return nil, &MalformedDocumentError{Format: spec.FormatXML, Cause: err}
	}
	dir, err := schemaDir()
	if err != nil {
		return nil, fmt.Errorf("validate xml: %w", err)
	}
	xsd := filepath.Join(dir, schema.XSDFile(v))
	cmd := exec.CommandContext(ctx, e.path, "--noout", "--nonet", "--schema", xsd, "-")
	cmd.Stdin = strings.NewReader(doc)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	if runErr == nil {
		return nil, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		return nil, fmt.Errorf("run %s: %w", BackendXMLLint, runErr)
	}
	switch exitErr.ExitCode() {
	case xmllintValidationError, xmllintSchemaError:
		errs := parseXMLLint(stderr.String())
		if len(errs) == 0 {
			errs = Errors{{Message: strings.TrimSpace(stderr.String())}}
		}
		return errs, nil
	default:
		logger.FromContext(ctx).Debug("xmllint failed", "status", exitErr.ExitCode(), "stderr", stderr.String())
		return nil, fmt.Errorf("run %s: exit status %d: %s",
			BackendXMLLint, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	}
}

// parseXMLLint turns "-:12: element x: Schemas validity error : message" lines into
// violations.
func parseXMLLint(out string) Errors {
	var errs Errors
	for _, line := range strings.Split(out, "\n") {
		m := xmllintLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		msg := m[2]
		if _, after, ok := strings.Cut(msg, "Schemas validity error : "); ok {
			msg = after
		}
		errs = append(errs, ValidationError{Path: "line " + m[1], Message: strings.TrimSpace(msg)})
	}
	return errs
}
