package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/beevik/etree"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/compozy/bomkit/cli/cmd"
	"github.com/compozy/bomkit/cli/helpers"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/validation"
	"github.com/compozy/bomkit/pkg/config"
	"github.com/compozy/bomkit/pkg/logger"
)

func NewValidateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Validate a CycloneDX document against its schema",
		Long: `Validate a rendered CycloneDX document against the bundled JSON schema or XSD.
The version is read from the document unless --spec is given, and the format is
inferred from the file extension unless --format is given. Reads stdin when FILE
is omitted or "-". Exits with status 2 when the document has violations.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ModeHandlers{
				JSON: handleValidateJSON,
				Text: handleValidateText,
			}, args)
		},
	}
	helpers.AddConfigFlags(command, false, "output.spec_version", "output.format")
	command.Flags().Bool(helpers.JSONFlag, false, "Print the report as JSON")
	return command
}

// Report is the outcome of one validation run.
type Report struct {
	Spec       spec.Version `json:"spec"`
	Format     spec.Format  `json:"format"`
	Valid      bool         `json:"valid"`
	Violations []Violation  `json:"violations,omitempty"`
}

type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func handleValidateJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	report, err := run(ctx, cobraCmd, executor, args)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cobraCmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return reportError(report)
}

func handleValidateText(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	report, err := run(ctx, cobraCmd, executor, args)
	if err != nil {
		return err
	}
	WriteReport(cobraCmd.OutOrStdout(), report)
	return reportError(report)
}

func reportError(report *Report) error {
	if report.Valid {
		return nil
	}
	return helpers.NewViolationsError(len(report.Violations))
}

func run(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) (*Report, error) {
	source := "-"
	if len(args) == 1 {
		source = args[0]
	}
	data, err := helpers.ReadInput(ctx, source, cobraCmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	doc := string(data)
	cfg := executor.Config()
	f, err := resolveFormat(ctx, cfg, source, doc)
	if err != nil {
		return nil, err
	}
	v, err := resolveVersion(ctx, cfg, f, doc)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("validating document", "source", source, "spec", v, "format", f)
	errs, err := Check(ctx, v, f, doc)
	if err != nil {
		return nil, err
	}
	return NewReport(v, f, errs), nil
}

// Check validates doc with the validator for v and f.
func Check(ctx context.Context, v spec.Version, f spec.Format, doc string) (validation.Errors, error) {
	validator, err := validation.New(v, f)
	if err != nil {
		return nil, err
	}
	return validator.Validate(ctx, doc)
}

func NewReport(v spec.Version, f spec.Format, errs validation.Errors) *Report {
	report := &Report{Spec: v, Format: f, Valid: len(errs) == 0}
	for _, e := range errs {
		report.Violations = append(report.Violations, Violation{Path: e.Path, Message: e.Message, Value: e.Value})
	}
	return report
}

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
)

// WriteReport prints a human-readable report.
func WriteReport(w io.Writer, report *Report) {
	if report.Valid {
		fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("✓ valid CycloneDX %s %s", report.Spec, report.Format)))
		return
	}
	fmt.Fprintln(w, failStyle.Render(fmt.Sprintf("✗ %d violation(s) against CycloneDX %s %s",
		len(report.Violations), report.Spec, report.Format)))
	for _, v := range report.Violations {
		line := fmt.Sprintf("  %s %s", pathStyle.Render(v.Path), v.Message)
		if v.Value != "" {
			line += " " + valueStyle.Render("(got "+v.Value+")")
		}
		fmt.Fprintln(w, line)
	}
}

// resolveFormat prefers an explicit setting, then the file extension, then sniffs the
// document.
func resolveFormat(ctx context.Context, cfg *config.Config, source, doc string) (spec.Format, error) {
	if config.SourceOf(ctx, "output.format") != config.SourceDefault {
		return spec.ParseFormat(cfg.Output.Format)
	}
	if f, ok := spec.FormatFromPath(source); ok {
		return f, nil
	}
	if gjson.Valid(doc) {
		return spec.FormatJSON, nil
	}
	if etree.NewDocument().ReadFromString(doc) == nil {
		return spec.FormatXML, nil
	}
	return spec.ParseFormat(cfg.Output.Format)
}

var errNoVersion = errors.New("document does not declare a CycloneDX version, pass --spec")

// resolveVersion prefers an explicit setting, then the version declared by the document.
func resolveVersion(ctx context.Context, cfg *config.Config, f spec.Format, doc string) (spec.Version, error) {
	if config.SourceOf(ctx, "output.spec_version") != config.SourceDefault {
		return spec.ParseVersion(cfg.Output.SpecVersion)
	}
	if v, ok := DetectVersion(f, doc); ok {
		return v, nil
	}
	return "", errNoVersion
}

// DetectVersion reads specVersion from JSON or the root namespace from XML.
func DetectVersion(f spec.Format, doc string) (spec.Version, bool) {
	switch f {
	case spec.FormatJSON:
		raw := gjson.Get(doc, "specVersion")
		if !raw.Exists() {
			return "", false
		}
		v, err := spec.ParseVersion(raw.String())
		return v, err == nil
	case spec.FormatXML:
		d := etree.NewDocument()
		if err := d.ReadFromString(doc); err != nil || d.Root() == nil {
			return "", false
		}
		ns := d.Root().SelectAttrValue("xmlns", "")
		for _, v := range spec.All() {
			if spec.Namespace(v) == ns {
				return v, true
			}
		}
	}
	return "", false
}
