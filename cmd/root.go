// Package cmd wires the loom command line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loomkit/loom/internal/config"
	"github.com/loomkit/loom/internal/environment"
	"github.com/loomkit/loom/internal/log"
	"github.com/loomkit/loom/internal/reader"
	"github.com/loomkit/loom/internal/registry"
	"github.com/loomkit/loom/internal/resource"
	"github.com/loomkit/loom/internal/tracing"
)

var (
	version  = "dev"
	cfgFile  string
	logFile  string
	profiles []string
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Load and inspect declarative component definitions",
	Long: `Loom reads component definition documents, follows their imports,
and registers the components they declare. Use it to validate definition
sets, list what a set registers, or watch definitions for changes.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .loom/config.yaml or ~/.config/loom/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write debug logs to this file")
	rootCmd.PersistentFlags().StringSliceVarP(&profiles, "profile", "p", nil,
		"activate a profile (repeatable)")
	rootCmd.PersistentFlags().Bool("override", false,
		"allow later definitions to replace earlier ones")

	_ = viper.BindPFlag("allow_override", rootCmd.PersistentFlags().Lookup("override"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .loom/config.yaml (current directory)
		// 2. ~/.config/loom/config.yaml (user config)
		if _, err := os.Stat(".loom/config.yaml"); err == nil {
			viper.SetConfigFile(".loom/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "loom"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)

	if len(profiles) > 0 {
		cfg.Profiles = append(cfg.Profiles, profiles...)
	}

	if logFile != "" {
		if _, err := log.Init(logFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: initializing log file: %v\n", err)
		}
	}
}

// locationsFromArgs prefers explicit arguments over configured locations.
func locationsFromArgs(args []string) ([]string, error) {
	locations := args
	if len(locations) == 0 {
		locations = cfg.Locations
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("no definition locations: pass them as arguments or set locations in the config file")
	}
	return locations, nil
}

// newReader assembles a reader from the effective configuration. The
// returned cleanup flushes tracing; callers must invoke it before exit.
func newReader(reg *registry.Registry, extra ...reader.Option) (*reader.Reader, func(), error) {
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var resolver resource.LocationResolver = resource.NewResolver()
	if cfg.Cache.Enabled {
		resolver = resource.NewCachingResolver(resource.NewResolver(), cfg.Cache.TTL)
	}

	env := environment.New(
		environment.WithActiveProfiles(cfg.Profiles...),
		environment.WithProperties(cfg.Properties),
	)

	provider, err := tracing.NewProvider(cfg.Tracing.Enabled, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up tracing: %w", err)
	}

	opts := append([]reader.Option{
		reader.WithEnvironment(env),
		reader.WithResolver(resolver),
		reader.WithTracer(provider.Tracer()),
	}, extra...)

	r := reader.New(reg, opts...)
	cleanup := func() {
		if err := provider.Shutdown(rootCmd.Context()); err != nil {
			log.Warn(log.CatConfig, "tracing shutdown: %v", err)
		}
	}
	return r, cleanup, nil
}

// newRegistry creates the registry honoring the override policy.
func newRegistry() *registry.Registry {
	if cfg.AllowOverride {
		return registry.New(registry.WithOverride())
	}
	return registry.New()
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
