package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Exit codes returned by the bomkit binary.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitViolations = 2
)

// ErrViolations reports that a document failed schema validation.
var ErrViolations = errors.New("document does not conform to the schema")

// CliError represents a CLI-specific error with enhanced context
type CliError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	// Exit is the process exit status, ExitError when zero.
	Exit  int   `json:"-"`
	Cause error `json:"-"`
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CliError) Unwrap() error {
	return e.Cause
}

// NewCliError creates a new CLI error with context
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// NewViolationsError wraps ErrViolations with the number of violations found.
func NewViolationsError(count int) *CliError {
	return &CliError{
		Code:    "VALIDATION_FAILED",
		Message: ErrViolations.Error(),
		Details: fmt.Sprintf("%d violation(s)", count),
		Exit:    ExitViolations,
		Cause:   ErrViolations,
	}
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cliErr *CliError
	if errors.As(err, &cliErr) && cliErr.Exit != 0 {
		return cliErr.Exit
	}
	return ExitError
}

// FormatError renders err for the given output mode.
func FormatError(err error, mode Mode) string {
	if err == nil {
		return ""
	}
	switch mode {
	case ModeJSON:
		return formatErrorJSON(err)
	default:
		return formatErrorText(err)
	}
}

func formatErrorJSON(err error) string {
	response := map[string]any{"error": err.Error(), "details": ""}
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		response = map[string]any{
			"code":    cliErr.Code,
			"error":   cliErr.Message,
			"details": cliErr.Details,
		}
	}
	jsonBytes, mErr := json.MarshalIndent(response, "", "  ")
	if mErr != nil {
		return `{"error": "JSON marshaling failed", "details": ""}`
	}
	return string(jsonBytes)
}

func formatErrorText(err error) string {
	message, details := err.Error(), ""
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		message, details = cliErr.Message, cliErr.Details
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6B6B")).
		Bold(true)
	result := "✗ " + style.Render(message)
	if details != "" {
		detailStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
		result += "\n" + detailStyle.Render("Details: "+details)
	}
	return result
}

// OutputError writes err to stderr in the appropriate format
func OutputError(err error, mode Mode) {
	WriteError(os.Stderr, err, mode)
}

func WriteError(w io.Writer, err error, mode Mode) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err, mode))
}
