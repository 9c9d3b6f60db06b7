package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/compozy/bomkit/cli/helpers"
	"github.com/compozy/bomkit/pkg/config"
)

const description = `
bomFormat: CycloneDX
specVersion: "1.5"
metadata:
  component:
    type: application
    name: shop
    bom-ref: app
    dependsOn: [lib]
components:
  - type: library
    name: left-pad
    version: "1.3.0"
    bom-ref: lib
    purl: pkg:npm/left-pad@1.3.0
    licenses:
      - license:
          id: MIT
`

const invalidDocument = `{"bomFormat":"CycloneDX","specVersion":"1.4","version":1,"components":[{"type":"gadget","name":"acme"}]}`

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the bomkit command line with a configuration file that does not exist.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := RootCmd()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := root.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSetupGlobalConfig(t *testing.T) {
	t.Run("Should inject YAML configuration and its sources into the context", func(t *testing.T) {
		cfgPath := writeFile(t, "bomkit.yaml", "output:\n  format: xml\n  spec_version: \"1.3\"\n")
		cmd := RootCmd()
		require.NoError(t, cmd.PersistentFlags().Set("config", cfgPath))

		require.NoError(t, SetupGlobalConfig(cmd))

		ctx := cmd.Context()
		cfg := config.FromContext(ctx)
		assert.Equal(t, "xml", cfg.Output.Format)
		assert.Equal(t, "1.3", cfg.Output.SpecVersion)
		assert.Equal(t, config.SourceYAML, config.SourceOf(ctx, "output.format"))
		assert.Equal(t, config.SourceDefault, config.SourceOf(ctx, "output.indent"))
	})

	t.Run("Should let changed flags override the file", func(t *testing.T) {
		cfgPath := writeFile(t, "bomkit.yaml", "log:\n  level: warn\n")
		cmd := RootCmd()
		require.NoError(t, cmd.PersistentFlags().Set("config", cfgPath))
		require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))

		require.NoError(t, SetupGlobalConfig(cmd))

		assert.Equal(t, "error", config.FromContext(cmd.Context()).Log.Level)
		assert.Equal(t, config.SourceCLI, config.SourceOf(cmd.Context(), "log.level"))
	})

	t.Run("Should read BOMKIT variables from the env file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bomkit.env"), []byte("BOMKIT_INDENT=4\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("BOMKIT_INDENT") })
		cmd := RootCmd()
		require.NoError(t, cmd.PersistentFlags().Set("config", filepath.Join(dir, "none.yaml")))
		require.NoError(t, cmd.PersistentFlags().Set("env-file", "bomkit.env"))

		require.NoError(t, SetupGlobalConfig(cmd))

		assert.Equal(t, 4, config.FromContext(cmd.Context()).Output.Indent)
		assert.Equal(t, config.SourceEnv, config.SourceOf(cmd.Context(), "output.indent"))
	})

	t.Run("Should reject invalid configuration", func(t *testing.T) {
		cfgPath := writeFile(t, "bomkit.yaml", "output:\n  spec_version: \"9.9\"\n")
		cmd := RootCmd()
		require.NoError(t, cmd.PersistentFlags().Set("config", cfgPath))

		err := SetupGlobalConfig(cmd)
		var cliErr *helpers.CliError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, "INVALID_CONFIG", cliErr.Code)
	})
}

func TestRenderCommand(t *testing.T) {
	t.Run("Should render stdin as JSON for the requested version", func(t *testing.T) {
		res := run(t, description, "render", "--spec", "1.4")
		require.NoError(t, res.err, res.stderr)

		assert.Equal(t, "1.4", gjson.Get(res.stdout, "specVersion").String())
		assert.Equal(t, "CycloneDX", gjson.Get(res.stdout, "bomFormat").String())
		assert.Equal(t, "left-pad", gjson.Get(res.stdout, "components.0.name").String())
		assert.Equal(t, "MIT", gjson.Get(res.stdout, "components.0.licenses.0.license.id").String())
	})

	t.Run("Should default to the version declared by the description", func(t *testing.T) {
		input := writeFile(t, "bom.yaml", description)
		res := run(t, "", "render", input)
		require.NoError(t, res.err, res.stderr)

		assert.Equal(t, "1.5", gjson.Get(res.stdout, "specVersion").String())
	})

	t.Run("Should render compact output with indent 0", func(t *testing.T) {
		res := run(t, description, "render", "--indent", "0")
		require.NoError(t, res.err, res.stderr)

		assert.Equal(t, 1, strings.Count(strings.TrimSpace(res.stdout), "\n")+1)
	})

	t.Run("Should infer XML from the output file name", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "bom.cdx.xml")
		res := run(t, description, "render", "--spec", "1.3", "-o", out)
		require.NoError(t, res.err, res.stderr)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), `xmlns="http://cyclonedx.org/schema/bom/1.3"`)
		assert.Contains(t, string(data), "<name>left-pad</name>")
		assert.Empty(t, res.stdout)
	})

	t.Run("Should print a JSON summary with validation results", func(t *testing.T) {
		res := run(t, description, "render", "--json", "--validate")
		require.NoError(t, res.err, res.stderr)

		var summary map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary))
		assert.Equal(t, "1.5", summary["spec"])
		assert.Equal(t, "json", summary["format"])
		assert.Equal(t, true, summary["validated"])
		doc, ok := summary["document"].(string)
		require.True(t, ok)
		assert.Equal(t, "1.5", gjson.Get(doc, "specVersion").String())
	})

	t.Run("Should reject a format the version cannot represent", func(t *testing.T) {
		res := run(t, description, "render", "--spec", "1.0", "--format", "json")
		require.Error(t, res.err)
		assert.Equal(t, helpers.ExitError, helpers.ExitCode(res.err))

		res = run(t, description, "render", "--spec", "1.1", "--format", "xml")
		require.NoError(t, res.err, res.stderr)
		assert.Contains(t, res.stdout, `xmlns="http://cyclonedx.org/schema/bom/1.1"`)
	})

	t.Run("Should report unresolved references", func(t *testing.T) {
		input := strings.Replace(description, "dependsOn: [lib]", "dependsOn: [missing]", 1)
		res := run(t, input, "render", "--json")
		require.Error(t, res.err)

		var cliErr *helpers.CliError
		require.ErrorAs(t, res.err, &cliErr)
		assert.Equal(t, "INVALID_REFERENCE", cliErr.Code)
		assert.Equal(t, "INVALID_REFERENCE", gjson.Get(res.stderr, "code").String())
	})
}

func TestValidateCommand(t *testing.T) {
	t.Run("Should accept a rendered document", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "bom.cdx.json")
		res := run(t, description, "render", "--spec", "1.6", "-o", out)
		require.NoError(t, res.err, res.stderr)

		res = run(t, "", "validate", out)
		require.NoError(t, res.err, res.stderr)
		assert.Contains(t, res.stdout, "valid CycloneDX 1.6 json")
	})

	t.Run("Should exit with the violations code for an invalid document", func(t *testing.T) {
		res := run(t, invalidDocument, "validate", "--json")
		require.Error(t, res.err)
		assert.Equal(t, helpers.ExitViolations, helpers.ExitCode(res.err))

		assert.False(t, gjson.Get(res.stdout, "valid").Bool())
		assert.Equal(t, "1.4", gjson.Get(res.stdout, "spec").String())
		assert.NotEmpty(t, gjson.Get(res.stdout, "violations").Array())
	})

	t.Run("Should list violations in text mode", func(t *testing.T) {
		input := writeFile(t, "bad.json", invalidDocument)
		res := run(t, "", "validate", input)
		require.Error(t, res.err)
		assert.Contains(t, res.stdout, "violation(s)")
		assert.Contains(t, res.stdout, "components.0.type")
	})

	t.Run("Should require a version when the document has none", func(t *testing.T) {
		res := run(t, `{"bomFormat":"CycloneDX"}`, "validate")
		require.Error(t, res.err)
		assert.Equal(t, helpers.ExitError, helpers.ExitCode(res.err))
	})
}

func TestSpecsCommand(t *testing.T) {
	t.Run("Should list every version", func(t *testing.T) {
		res := run(t, "", "specs", "--json")
		require.NoError(t, res.err, res.stderr)

		versions := gjson.Get(res.stdout, "#.version").Array()
		require.Len(t, versions, 7)
		assert.Equal(t, "1.0", versions[0].String())
		assert.Equal(t, "1.6", versions[6].String())
		formats := gjson.Get(res.stdout, "0.formats").Array()
		require.Len(t, formats, 1)
		assert.Equal(t, "xml", formats[0].String())
	})

	t.Run("Should print a table", func(t *testing.T) {
		res := run(t, "", "specs")
		require.NoError(t, res.err, res.stderr)
		assert.Contains(t, res.stdout, "VERSION")
		assert.Contains(t, res.stdout, "http://cyclonedx.org/schema/bom/1.6")
	})

	t.Run("Should show the features of one version", func(t *testing.T) {
		res := run(t, "", "specs", "--version", "1.6")
		require.NoError(t, res.err, res.stderr)
		assert.Contains(t, res.stdout, "CycloneDX 1.6")
		assert.Contains(t, res.stdout, "formulation")
	})
}

func TestVersionCommand(t *testing.T) {
	t.Run("Should print build information as JSON", func(t *testing.T) {
		res := run(t, "", "version", "--json")
		require.NoError(t, res.err, res.stderr)
		assert.True(t, gjson.Get(res.stdout, "go_version").Exists())
	})
}

func TestMetricsFile(t *testing.T) {
	t.Run("Should write Prometheus metrics after a command", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bomkit.prom")
		res := run(t, description, "render", "--validate", "--metrics-file", path)
		require.NoError(t, res.err, res.stderr)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "bomkit_build_info")
		assert.Contains(t, string(data), "bomkit_schema_validations")
	})

	t.Run("Should not fail the command for an unusable metrics file", func(t *testing.T) {
		res := run(t, "", "specs", "--metrics-file", "metrics.txt")
		require.NoError(t, res.err, res.stderr)
	})
}
