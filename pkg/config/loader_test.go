package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Load() (map[string]any, error) { return nil, errors.New("boom") }
func (failingSource) Type() SourceType             { return SourceYAML }

func newTestLoader(environ ...string) *loader {
	l := NewService().(*loader)
	l.environ = func() []string { return environ }
	return l
}

func TestLoader_Load(t *testing.T) {
	t.Run("Should load default configuration when no sources provided", func(t *testing.T) {
		cfg, err := newTestLoader().Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
	t.Run("Should apply sources in precedence order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bomkit.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output:\n  format: xml\n  indent: 4\nlog:\n  level: debug\n"), 0o600))
		l := newTestLoader("BOMKIT_LOG_LEVEL=warn")
		cfg, err := l.Load(t.Context(),
			NewYAMLProvider(path),
			NewCLIProvider(map[string]any{"indent": 0, "sort": true}),
		)
		require.NoError(t, err)
		assert.Equal(t, "xml", cfg.Output.Format)
		assert.Equal(t, 0, cfg.Output.Indent)
		assert.True(t, cfg.Output.SortLists)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "1.6", cfg.Output.SpecVersion)

		assert.Equal(t, SourceYAML, l.GetSource("output.format"))
		assert.Equal(t, SourceCLI, l.GetSource("output.indent"))
		assert.Equal(t, SourceEnv, l.GetSource("log.level"))
		assert.Equal(t, SourceDefault, l.GetSource("output.spec_version"))
	})
	t.Run("Should read the spec version from the environment", func(t *testing.T) {
		cfg, err := newTestLoader("BOMKIT_SPEC_VERSION=1.4", "BOMKIT_VALIDATE=true").Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "1.4", cfg.Output.SpecVersion)
		assert.True(t, cfg.Validation.Enabled)
	})
	t.Run("Should ignore variables without the prefix", func(t *testing.T) {
		cfg, err := newTestLoader("SPEC_VERSION=1.2", "OUTPUT_FORMAT=xml").Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "1.6", cfg.Output.SpecVersion)
		assert.Equal(t, "json", cfg.Output.Format)
	})
	t.Run("Should validate configuration after loading", func(t *testing.T) {
		_, err := newTestLoader("BOMKIT_SPEC_VERSION=9.9").Load(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
	})
	t.Run("Should handle nil sources gracefully", func(t *testing.T) {
		_, err := newTestLoader().Load(t.Context(), nil, NewCLIProvider(nil))
		assert.NoError(t, err)
	})
	t.Run("Should handle source loading errors", func(t *testing.T) {
		_, err := newTestLoader().Load(t.Context(), failingSource{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
	t.Run("Should reset state between loads", func(t *testing.T) {
		l := newTestLoader()
		_, err := l.Load(t.Context(), NewCLIProvider(map[string]any{"format": "xml"}))
		require.NoError(t, err)
		cfg, err := l.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.Output.Format)
		assert.Equal(t, SourceDefault, l.GetSource("output.format"))
	})
}

func TestTransformEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "BOMKIT_OUTPUT_INDENT_STRING", want: "output.indent_string"},
		{in: "BOMKIT_LOG_LEVEL", want: "log.level"},
		{in: "BOMKIT_VERBOSE", want: "verbose"},
		{in: "BOMKIT__LOG__JSON_", want: "log.json"},
		{in: "BOMKIT_", want: ""},
	}
	for _, tt := range tests {
		t.Run("Should transform "+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, transformEnvKey(tt.in))
		})
	}
}
