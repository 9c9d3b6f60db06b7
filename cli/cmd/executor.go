package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/bomkit/cli/helpers"
	"github.com/compozy/bomkit/engine/intake"
	"github.com/compozy/bomkit/engine/normalize"
	"github.com/compozy/bomkit/engine/serialize"
	"github.com/compozy/bomkit/engine/spec"
	"github.com/compozy/bomkit/engine/validation"
	"github.com/compozy/bomkit/pkg/config"
	"github.com/compozy/bomkit/pkg/logger"
)

// CommandExecutor carries what every command handler needs: output mode and the loaded
// configuration.
type CommandExecutor struct {
	mode helpers.Mode
	cfg  *config.Config
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// ModeHandlers contains handlers for different output modes. A nil JSON handler falls
// back to Text.
type ModeHandlers struct {
	JSON HandlerFunc
	Text HandlerFunc
}

func NewCommandExecutor(cmd *cobra.Command) *CommandExecutor {
	ctx := cmd.Context()
	mode := DetectMode(cmd)
	logger.FromContext(ctx).Debug("detected output mode", "mode", mode)
	return &CommandExecutor{mode: mode, cfg: config.FromContext(ctx)}
}

// DetectMode returns ModeJSON when the command has a --json flag set to true.
func DetectMode(cmd *cobra.Command) helpers.Mode {
	if f := cmd.Flags().Lookup(helpers.JSONFlag); f != nil && f.Value.String() == "true" {
		return helpers.ModeJSON
	}
	return helpers.ModeText
}

func (e *CommandExecutor) Execute(ctx context.Context, cmd *cobra.Command, handlers ModeHandlers, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	switch {
	case e.mode == helpers.ModeJSON && handlers.JSON != nil:
		return handlers.JSON(ctx, cmd, e, args)
	case handlers.Text != nil:
		return handlers.Text(ctx, cmd, e, args)
	default:
		return fmt.Errorf("%s mode handler not implemented", e.mode)
	}
}

func (e *CommandExecutor) Mode() helpers.Mode {
	return e.mode
}

func (e *CommandExecutor) Config() *config.Config {
	return e.cfg
}

// ExecuteCommand creates an executor, runs the handler for its mode and reports errors.
func ExecuteCommand(cmd *cobra.Command, handlers ModeHandlers, args []string) error {
	executor := NewCommandExecutor(cmd)
	return HandleCommonErrors(cmd, executor.Execute(cmd.Context(), cmd, handlers, args), executor.Mode())
}

// HandleCommonErrors prints err once, in the output mode, and returns it for the exit code.
func HandleCommonErrors(cmd *cobra.Command, err error, mode helpers.Mode) error {
	if err == nil {
		return nil
	}
	if cliErr := categorizeError(err); cliErr != nil {
		err = cliErr
	}
	helpers.WriteError(cmd.ErrOrStderr(), err, mode)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return err
}

// categorizeError converts errors to structured CLI errors
func categorizeError(err error) *helpers.CliError {
	var cliErr *helpers.CliError
	var notImpl *validation.NotImplementedError
	var missing *validation.MissingOptionalDependencyError
	var malformed *validation.MalformedDocumentError
	switch {
	case errors.As(err, &cliErr):
		return cliErr
	case errors.Is(err, context.Canceled):
		return helpers.NewCliError("OPERATION_CANCELED", "Operation was canceled by user")
	case errors.Is(err, context.DeadlineExceeded):
		return helpers.NewCliError("OPERATION_TIMEOUT", "Operation timed out")
	case errors.Is(err, spec.ErrUnknownVersion), errors.Is(err, spec.ErrUnknownFormat):
		return wrap("INVALID_ARGUMENT", "Unsupported version or format", err)
	case errors.Is(err, serialize.ErrUnsupportedFormat):
		return wrap("UNSUPPORTED_FORMAT", "Format not available for this version", err)
	case errors.As(err, &notImpl):
		return wrap("NOT_IMPLEMENTED", "No schema available", err)
	case errors.As(err, &missing):
		return wrap("MISSING_DEPENDENCY", "Validation backend not installed", err)
	case errors.As(err, &malformed):
		return wrap("MALFORMED_DOCUMENT", "Document could not be parsed", err)
	case errors.Is(err, intake.ErrUnknownRef), errors.Is(err, intake.ErrNotDependable):
		return wrap("INVALID_REFERENCE", "Unresolvable bom-ref", err)
	default:
		var nerr *normalize.Error
		if errors.As(err, &nerr) {
			return wrap("INVALID_BOM", "BOM cannot be rendered", err)
		}
		return nil
	}
}

func wrap(code, message string, cause error) *helpers.CliError {
	e := helpers.NewCliError(code, message, cause.Error())
	e.Cause = cause
	return e
}
