package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hopper/internal/app"
	"github.com/zjrosen/hopper/internal/config"
	"github.com/zjrosen/hopper/internal/log"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot race the chooser's input loop.
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is checked before the user config directory.
const localConfigPath = ".hopper/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	debug      bool
	cfg        config.Config
	configPath string
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "hopper",
	Short: "Hop between matches of named search patterns",
	Long: `hopper keeps a registry of named instances, each a regex or a set of
literal strings plus a placement rule, and hops a cursor forward or
backward through their occurrences in a text, reporting "match i of n".`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .hopper/config.yaml, then ~/.config/hopper/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write debug log to ~/.config/hopper/debug.log (also "+log.EnvDebug+")")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("registry.backend", defaults.Registry.Backend)
	viper.SetDefault("registry.path", defaults.Registry.Path)
	viper.SetDefault("navigation.lookback_window", defaults.Navigation.LookbackWindow)
	viper.SetDefault("navigation.pattern_cache_ttl", defaults.Navigation.PatternCacheTTL)
	viper.SetDefault("navigation.match_timeout", defaults.Navigation.MatchTimeout)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	for name, v := range defaults.Flags {
		viper.SetDefault("flags."+name, v)
	}

	userConfig := filepath.Join(config.ConfigDir(), "config.yaml")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .hopper/config.yaml (current directory)
		// 2. ~/.config/hopper/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			viper.SetConfigFile(userConfig)
		}
	}
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		// No config file yet: write the default where we looked and use it.
		target := viper.ConfigFileUsed()
		if _, statErr := os.Stat(target); os.IsNotExist(statErr) {
			if writeErr := config.WriteDefaultConfig(target); writeErr == nil {
				_ = viper.ReadInConfig()
			}
		}
	}

	cfg = config.Config{}
	_ = viper.Unmarshal(&cfg)
	configPath = viper.ConfigFileUsed()
}

func setupLogging(*cobra.Command, []string) error {
	if !debug && os.Getenv(log.EnvDebug) == "" {
		return nil
	}
	path := filepath.Join(config.ConfigDir(), "debug.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	cleanup, err := log.Init(path)
	if err != nil {
		return fmt.Errorf("initializing debug log: %w", err)
	}
	logCleanup = cleanup
	log.SetMinLevel(log.ParseLevel(os.Getenv(log.EnvDebug)))
	log.Info(log.CatConfig, "Debug logging enabled", "config", configPath)
	return nil
}

// newApp builds the application from the loaded config. Callers must Close
// it.
func newApp(ctx context.Context) (*app.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return app.New(ctx, cfg, configPath)
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
