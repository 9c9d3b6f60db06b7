package version

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/bomkit/cli/cmd"
	"github.com/compozy/bomkit/cli/helpers"
	"github.com/compozy/bomkit/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ModeHandlers{
				JSON: handleVersionJSON,
				Text: handleVersionText,
			}, args)
		},
	}
	command.Flags().Bool(helpers.JSONFlag, false, "Print build information as JSON")
	return command
}

func handleVersionJSON(_ context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	enc := json.NewEncoder(cobraCmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(version.Get()); err != nil {
		return fmt.Errorf("failed to encode version: %w", err)
	}
	return nil
}

func handleVersionText(_ context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	_, err := fmt.Fprintln(cobraCmd.OutOrStdout(), version.Get().String())
	return err
}
