package specs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/compozy/bomkit/cli/cmd"
	"github.com/compozy/bomkit/cli/helpers"
	"github.com/compozy/bomkit/engine/spec"
)

const versionFlag = "version"

func NewSpecsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "specs",
		Short: "List the supported CycloneDX versions",
		Long: `List every supported CycloneDX version with its formats, XML namespace and the
number of optional features it can represent. Pass --version to list the features
of a single version.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ModeHandlers{
				JSON: handleSpecsJSON,
				Text: handleSpecsText,
			}, args)
		},
	}
	command.Flags().StringP(versionFlag, "v", "", "Show the features of one version")
	command.Flags().Bool(helpers.JSONFlag, false, "Print the listing as JSON")
	return command
}

// Entry describes one registry entry.
type Entry struct {
	Version   spec.Version   `json:"version"`
	Formats   []spec.Format  `json:"formats"`
	Namespace string         `json:"namespace"`
	Schema    string         `json:"schema,omitempty"`
	Features  []spec.Feature `json:"features"`
}

func entries(cobraCmd *cobra.Command) ([]Entry, error) {
	raw, err := cobraCmd.Flags().GetString(versionFlag)
	if err != nil {
		return nil, err
	}
	versions := spec.All()
	if raw != "" {
		v, err := spec.ParseVersion(raw)
		if err != nil {
			return nil, err
		}
		versions = []spec.Version{v}
	}
	out := make([]Entry, 0, len(versions))
	for _, v := range versions {
		s, err := spec.Get(v)
		if err != nil {
			return nil, err
		}
		e := Entry{
			Version:   v,
			Formats:   s.Formats(),
			Namespace: s.Namespace(),
			Features:  s.Features(),
		}
		if s.SupportsFormat(spec.FormatJSON) {
			e.Schema = s.JSONSchemaURI()
		}
		out = append(out, e)
	}
	return out, nil
}

func handleSpecsJSON(_ context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	list, err := entries(cobraCmd)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cobraCmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("failed to encode specs: %w", err)
	}
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func handleSpecsText(_ context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	list, err := entries(cobraCmd)
	if err != nil {
		return err
	}
	out := cobraCmd.OutOrStdout()
	if len(list) == 1 && cobraCmd.Flags().Changed(versionFlag) {
		writeDetail(out, &list[0])
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tFORMATS\tFEATURES\tNAMESPACE")
	for i := range list {
		e := &list[i]
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Version, joinFormats(e.Formats), len(e.Features), e.Namespace)
	}
	return w.Flush()
}

func writeDetail(out io.Writer, e *Entry) {
	fmt.Fprintln(out, headerStyle.Render("CycloneDX "+e.Version.String()))
	fmt.Fprintf(out, "  formats:   %s\n", joinFormats(e.Formats))
	fmt.Fprintf(out, "  namespace: %s\n", e.Namespace)
	if e.Schema != "" {
		fmt.Fprintf(out, "  schema:    %s\n", e.Schema)
	}
	fmt.Fprintf(out, "  features (%d):\n", len(e.Features))
	for _, f := range e.Features {
		fmt.Fprintf(out, "    %s\n", f)
	}
}

func joinFormats(fs []spec.Format) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}
