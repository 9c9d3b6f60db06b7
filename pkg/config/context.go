package config

import (
	"context"
	"sync"

	"github.com/compozy/bomkit/pkg/logger"
)

// ContextKey is an alias used for storing values in context
type ContextKey string

const (
	ConfigCtxKey  ContextKey = "config"
	ServiceCtxKey ContextKey = "config_service"
)

func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ConfigCtxKey, cfg)
}

var (
	defaultConfig     *Config
	defaultConfigOnce sync.Once
)

// FromContext returns the configuration stored in ctx, falling back to defaults plus
// environment variables when none was attached.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(ConfigCtxKey).(*Config); ok && cfg != nil {
			return cfg
		}
	}
	return getDefaultConfig(ctx)
}

func getDefaultConfig(ctx context.Context) *Config {
	defaultConfigOnce.Do(func() {
		cfg, err := NewService().Load(ctx)
		if err != nil {
			logger.FromContext(ctx).Warn("failed to load default configuration, using built-in defaults", "error", err)
			cfg = Default()
		}
		defaultConfig = cfg
	})
	return defaultConfig
}

// ContextWithService stores the service that produced the configuration, so callers can
// ask where a value came from.
func ContextWithService(ctx context.Context, svc Service) context.Context {
	return context.WithValue(ctx, ServiceCtxKey, svc)
}

// SourceOf reports which source set key. Without a stored service every key is a default.
func SourceOf(ctx context.Context, key string) SourceType {
	if ctx != nil {
		if svc, ok := ctx.Value(ServiceCtxKey).(Service); ok && svc != nil {
			return svc.GetSource(key)
		}
	}
	return SourceDefault
}
