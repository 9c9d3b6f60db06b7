package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	clicmd "github.com/compozy/bomkit/cli/cmd"
	"github.com/compozy/bomkit/cli/cmd/render"
	"github.com/compozy/bomkit/cli/cmd/specs"
	"github.com/compozy/bomkit/cli/cmd/validate"
	"github.com/compozy/bomkit/cli/cmd/version"
	"github.com/compozy/bomkit/cli/helpers"
	"github.com/compozy/bomkit/engine/infra/monitoring"
	"github.com/compozy/bomkit/pkg/config"
	"github.com/compozy/bomkit/pkg/logger"
)

const (
	configFlag  = "config"
	envFileFlag = "env-file"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bomkit",
		Short: "Render and validate CycloneDX documents",
		Long: `bomkit turns a version-neutral BOM description into a CycloneDX document of any
version from 1.0 to 1.6, in JSON or XML, and validates documents against the
bundled schemas.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return clicmd.HandleCommonErrors(cmd, SetupGlobalConfig(cmd), clicmd.DetectMode(cmd))
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return clicmd.HandleCommonErrors(cmd, FlushMetrics(cmd.Context()), clicmd.DetectMode(cmd))
		},
	}
	root.PersistentFlags().String(configFlag, "bomkit.yaml", "Path to the configuration file")
	root.PersistentFlags().String(envFileFlag, ".env", "Path to an environment file with BOMKIT_* variables")
	helpers.AddConfigFlags(root, true, "log.level", "log.json", "log.source", "metrics.file")

	root.AddCommand(
		render.NewRenderCommand(),
		validate.NewValidateCommand(),
		specs.NewSpecsCommand(),
		version.NewVersionCommand(),
	)
	return root
}

// SetupGlobalConfig loads the env file, then the configuration for cmd (defaults, the YAML
// file, changed flags, then the environment), installs the logger and the meter provider and stores
// them in the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	flag := cmd.Flag(configFlag)
	if flag == nil {
		return fmt.Errorf("missing --%s flag", configFlag)
	}
	path := flag.Value.String()
	if envFlag := cmd.Flag(envFileFlag); envFlag != nil {
		if _, err := helpers.LoadEnvFile(envFlag.Value.String()); err != nil {
			return helpers.NewCliError("INVALID_CONFIG", "Environment file could not be loaded", err.Error())
		}
	}
	flags := helpers.ChangedFlags(cmd)
	if raw, ok := flags["indent-string"].(string); ok {
		flags["indent-string"] = helpers.UnescapeIndent(raw)
	}

	service := config.NewService()
	cfg, err := service.Load(ctx, config.NewYAMLProvider(path), config.NewCLIProvider(flags))
	if err != nil {
		return helpers.NewCliError("INVALID_CONFIG", "Configuration could not be loaded", err.Error())
	}

	logger.SetupLogger(cfg.Log.Level, cfg.Log.JSON, cfg.Log.Source)
	log := logger.GetDefault()
	log.Debug("configuration loaded", "config", path, "spec", cfg.Output.SpecVersion, "format", cfg.Output.Format)

	ctx = logger.ContextWithLogger(ctx, log)
	monitor := monitoring.NewMonitoringServiceWithFallback(ctx, monitoring.FromFile(cfg.Metrics.File))
	monitor.SetAsGlobal()

	ctx = config.ContextWithConfig(ctx, cfg)
	ctx = config.ContextWithService(ctx, service)
	ctx = monitoring.ContextWithService(ctx, monitor)
	cmd.SetContext(ctx)
	return nil
}

// FlushMetrics writes the metrics file, when one is configured, and stops the meter
// provider.
func FlushMetrics(ctx context.Context) error {
	monitor := monitoring.FromContext(ctx)
	if err := monitor.WriteTextfile(ctx); err != nil {
		return err
	}
	return monitor.Shutdown(ctx)
}
