// Package config loads the Host's tunables from a YAML file and/or the
// environment, following the viper-backed pattern used by
// zjrosen-perles and webitel-im-delivery-service's config layers.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/infoton-run/actorhost/internal/runtime"
)

const envPrefix = "ACTORHOST"

// Load reads a runtime.Config from path (if non-empty) and environment
// variables prefixed ACTORHOST_, falling back to runtime.DefaultConfig
// for anything unset.
func Load(path string) (runtime.Config, error) {
	v := viper.New()
	defaults := runtime.DefaultConfig()

	v.SetDefault("scheduler_count", defaults.SchedulerCount)
	v.SetDefault("network_host", defaults.NetworkHost)
	v.SetDefault("view_size", defaults.ViewSize)
	v.SetDefault("target_actor_count", defaults.TargetActorCount)
	v.SetDefault("inbound_queue_bound", defaults.InboundQueueBound)
	v.SetDefault("startup_stagger", defaults.StartupStagger)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return runtime.Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	cfg := runtime.Config{
		SchedulerCount:    v.GetInt("scheduler_count"),
		NetworkHost:       v.GetString("network_host"),
		ViewSize:          float32(v.GetFloat64("view_size")),
		TargetActorCount:  v.GetInt("target_actor_count"),
		InboundQueueBound: v.GetInt("inbound_queue_bound"),
		StartupStagger:    v.GetDuration("startup_stagger"),
	}

	if cfg.SchedulerCount <= 0 {
		return runtime.Config{}, fmt.Errorf("config: scheduler_count must be positive, got %d", cfg.SchedulerCount)
	}

	return cfg, nil
}

// WithStartupStagger is a convenience override for tests and demos that
// want a nonzero stagger without writing a config file.
func WithStartupStagger(cfg runtime.Config, d time.Duration) runtime.Config {
	cfg.StartupStagger = d
	return cfg
}
