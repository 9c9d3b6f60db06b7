package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/bomkit/cli/cmd"
	"github.com/compozy/bomkit/cli/cmd/validate"
	"github.com/compozy/bomkit/cli/helpers"
	"github.com/compozy/bomkit/engine/intake"
	"github.com/compozy/bomkit/engine/normalize"
	"github.com/compozy/bomkit/engine/serialize"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/validation"
	"github.com/compozy/bomkit/pkg/config"
	"github.com/compozy/bomkit/pkg/logger"
)

const (
	inputFlag  = "input"
	outputFlag = "output"
)

func NewRenderCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "render [FILE]",
		Short: "Render a BOM description as a CycloneDX document",
		Long: `Render a YAML or JSON BOM description as a CycloneDX document of the chosen
version and format. The version defaults to the description's specVersion when
--spec is not given. Reads stdin when no input is named and writes stdout unless
--output is set.`,
		Example: `  bomkit render bom.yaml --spec 1.4 --format xml -o bom.cdx.xml
  cat bom.yaml | bomkit render --sort --validate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ModeHandlers{
				JSON: handleRenderJSON,
				Text: handleRenderText,
			}, args)
		},
	}
	command.Flags().StringP(inputFlag, "i", "", "BOM description to read (\"-\" for stdin)")
	command.Flags().StringP(outputFlag, "o", "", "File to write the document to (\"-\" for stdout)")
	helpers.AddConfigFlags(command, false,
		"output.spec_version",
		"output.format",
		"output.indent",
		"output.indent_string",
		"output.sort_lists",
		"validation.enabled",
		"validation.fail_on_missing_backend",
	)
	command.Flags().Bool(helpers.JSONFlag, false, "Print a JSON summary instead of the document")
	return command
}

// Result describes one rendered document.
type Result struct {
	Spec      spec.Version     `json:"spec"`
	Format    spec.Format      `json:"format"`
	Output    string           `json:"output,omitempty"`
	Document  string           `json:"document,omitempty"`
	Validated bool             `json:"validated"`
	Report    *validate.Report `json:"report,omitempty"`
}

func handleRenderText(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	result, err := run(ctx, cobraCmd, executor, args)
	if err != nil {
		return err
	}
	if err := helpers.WriteDocument(ctx, cobraCmd.OutOrStdout(), result.Output, result.Format, result.Document); err != nil {
		return err
	}
	if result.Report != nil && !result.Report.Valid {
		validate.WriteReport(cobraCmd.ErrOrStderr(), result.Report)
		return helpers.NewViolationsError(len(result.Report.Violations))
	}
	return nil
}

func handleRenderJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	result, err := run(ctx, cobraCmd, executor, args)
	if err != nil {
		return err
	}
	if result.Output != "" && result.Output != "-" {
		if err := helpers.WriteDocument(ctx, cobraCmd.OutOrStdout(), result.Output, result.Format, result.Document); err != nil {
			return err
		}
		result.Document = ""
	}
	enc := json.NewEncoder(cobraCmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if result.Report != nil && !result.Report.Valid {
		return helpers.NewViolationsError(len(result.Report.Violations))
	}
	return nil
}

func run(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) (*Result, error) {
	source, err := cobraCmd.Flags().GetString(inputFlag)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		if source != "" {
			return nil, helpers.NewCliError("INVALID_ARGUMENT", "Input given twice", "use either FILE or --input")
		}
		source = args[0]
	}
	output, err := cobraCmd.Flags().GetString(outputFlag)
	if err != nil {
		return nil, err
	}
	data, err := helpers.ReadInput(ctx, source, cobraCmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	doc, err := intake.Parse(data)
	if err != nil {
		return nil, err
	}
	cfg := executor.Config()
	v, err := resolveVersion(ctx, cfg, doc)
	if err != nil {
		return nil, err
	}
	f, err := resolveFormat(ctx, cfg, output)
	if err != nil {
		return nil, err
	}
	bom, err := doc.ToModel()
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With("spec", v, "format", f)
	factory, err := normalize.NewFactory(v,
		normalize.WithSortLists(cfg.Output.SortLists),
		normalize.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	serializer, err := serialize.New(factory, f)
	if err != nil {
		return nil, err
	}
	rendered, err := serializer.Serialize(ctx, bom, serialize.Options{
		Indent:       cfg.Output.Indent,
		IndentString: cfg.Output.IndentString,
	})
	if err != nil {
		return nil, err
	}
	result := &Result{Spec: v, Format: f, Output: output, Document: rendered}
	if cfg.Validation.Enabled {
		report, err := check(ctx, cfg, v, f, rendered)
		if err != nil {
			return nil, err
		}
		result.Validated = report != nil
		result.Report = report
	}
	return result, nil
}

// check validates the rendered document. A missing backend is only a warning unless
// validation.fail_on_missing_backend is set.
func check(ctx context.Context, cfg *config.Config, v spec.Version, f spec.Format, doc string) (*validate.Report, error) {
	errs, err := validate.Check(ctx, v, f, doc)
	var missing *validation.MissingOptionalDependencyError
	switch {
	case err == nil:
		return validate.NewReport(v, f, errs), nil
	case errors.As(err, &missing) && !cfg.Validation.FailOnMissingBackend:
		logger.FromContext(ctx).Warn("skipping validation", "reason", err)
		return nil, nil
	case errors.Is(err, validation.ErrNotImplemented):
		logger.FromContext(ctx).Warn("skipping validation", "reason", err)
		return nil, nil
	default:
		return nil, err
	}
}

// resolveVersion prefers an explicit setting, then the specVersion declared by the
// description.
func resolveVersion(ctx context.Context, cfg *config.Config, doc *intake.Document) (spec.Version, error) {
	if config.SourceOf(ctx, "output.spec_version") == config.SourceDefault {
		if v, ok := doc.Spec(); ok {
			return v, nil
		}
	}
	return spec.ParseVersion(cfg.Output.SpecVersion)
}

// resolveFormat prefers an explicit setting, then the extension of the output file.
func resolveFormat(ctx context.Context, cfg *config.Config, output string) (spec.Format, error) {
	if config.SourceOf(ctx, "output.format") == config.SourceDefault {
		if f, ok := spec.FormatFromPath(output); ok {
			return f, nil
		}
	}
	return spec.ParseFormat(cfg.Output.Format)
}
