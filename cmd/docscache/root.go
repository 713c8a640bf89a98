package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/docscache/cache"
	"github.com/jonwraymond/docscache/config"
	"github.com/jonwraymond/docscache/observe"
)

// app is the state shared by every subcommand, built once per invocation.
type app struct {
	settings config.Settings
	observer observe.Observer
	metrics  observe.Metrics
	logger   observe.Logger
	cache    *cache.DiskCache
}

type rootFlags struct {
	configFile string
	envFile    string
	cacheDir   string
	ttl        string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     = &app{}
	)

	cmd := &cobra.Command{
		Use:           "docscache",
		Short:         "Inspect and manage the documentation response cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return a.init(cmd, flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.shutdown()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "YAML config file")
	pf.StringVar(&flags.envFile, "env-file", config.DefaultEnvFile, ".env file (ignored when missing)")
	pf.StringVar(&flags.cacheDir, "cache-dir", "", "cache directory (overrides CACHE_DIR)")
	pf.StringVar(&flags.ttl, "ttl", "", "entry lifetime in days (overrides CACHE_TTL)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug|info|warn|error (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newClearCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newHealthCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, flags rootFlags) error {
	s, err := config.Loader{ConfigFile: flags.configFile, EnvFile: flags.envFile}.Load()
	if err != nil {
		return err
	}

	pf := cmd.Flags()
	if pf.Changed("cache-dir") {
		s.CacheDir = flags.cacheDir
	}
	if pf.Changed("ttl") {
		s.CacheTTL = flags.ttl
	}
	if pf.Changed("log-level") {
		s.LogLevel = flags.logLevel
	}
	if err := s.Validate(); err != nil {
		return err
	}

	obsCfg := s.Observe(version)
	obsCfg.Output = cmd.ErrOrStderr()
	obs, err := observe.NewObserver(cmd.Context(), obsCfg)
	if err != nil {
		return fmt.Errorf("observer: %w", err)
	}
	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		_ = obs.Shutdown(context.Background())
		return fmt.Errorf("metrics: %w", err)
	}

	a.settings = s
	a.observer = obs
	a.metrics = metrics
	a.logger = obs.Logger()
	a.cache = cache.New(s.CacheDir,
		cache.WithPolicy(s.Policy()),
		cache.WithLogger(a.logger),
		cache.WithMetrics(metrics),
	)
	return nil
}

func (a *app) shutdown() error {
	if a.observer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.observer.Shutdown(ctx)
}
