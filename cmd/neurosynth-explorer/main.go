// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the neurosynth-explorer CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/neurosynth-explorer/internal/api"
	"github.com/pdiddy/neurosynth-explorer/internal/render"
	"github.com/pdiddy/neurosynth-explorer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is loaded from defaults, the config file, the environment and
	// flags before every command runs.
	cfg = types.DefaultConfig()

	logger  = zap.NewNop()
	verbose bool
)

// rootCmd is the base command for the neurosynth-explorer CLI.
var rootCmd = &cobra.Command{
	Use:   "neurosynth-explorer",
	Short: "Browse Neurosynth terms, related terms and studies",
	Long: `neurosynth-explorer queries the Neurosynth term/study API.

List every term, look up the terms most related to a term, or run a boolean
study query such as "pain AND NOT memory" and filter the studies by year.
Use explore for an interactive terminal UI and serve for a local web page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		l, err := newLogger(cfg.Log, verbose, cmd.Name() == "explore")
		if err != nil {
			return err
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./neurosynth-explorer.yaml or ~/.config/neurosynth-explorer/neurosynth-explorer.yaml)")
	pf.String("base-url", "", "API origin (default "+types.DefaultBaseURL+")")
	pf.Duration("timeout", 0, "HTTP timeout per attempt (default 60s)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default warn)")
	pf.String("log-file", "", "write logs to this file instead of stderr")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("api.base_url", pf.Lookup("base-url"))
	_ = viper.BindPFlag("api.timeout", pf.Lookup("timeout"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.file", pf.Lookup("log-file"))

	setDefaults(types.DefaultConfig())
}

// setDefaults registers every config key with viper so that environment
// variables such as NEUROSYNTH_EXPLORER_API_BASE_URL are seen.
func setDefaults(d types.Config) {
	viper.SetDefault("api.base_url", d.API.BaseURL)
	viper.SetDefault("api.timeout", d.API.Timeout)
	viper.SetDefault("api.user_agent", d.API.UserAgent)
	viper.SetDefault("api.max_retries", d.API.MaxRetries)
	viper.SetDefault("api.retry_base_delay", d.API.RetryBaseDelay)
	viper.SetDefault("explorer.debounce", d.Explorer.Debounce)
	viper.SetDefault("explorer.request_timeout", d.Explorer.RequestTimeout)
	viper.SetDefault("serve.addr", d.Serve.Addr)
	viper.SetDefault("serve.concurrency", d.Serve.Concurrency)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.file", d.Log.File)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("neurosynth-explorer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "neurosynth-explorer"))
		}
	}

	viper.SetEnvPrefix("NEUROSYNTH_EXPLORER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Reading config file: %v\n", err)
		}
	}
}

func loadConfig() error {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = c
	return nil
}

// newLogger builds the zap logger from lc. When quiet is set and no log
// file is configured, logging is disabled so it cannot disturb a
// full-screen UI.
func newLogger(lc types.LogConfig, verbose, quiet bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	if lc.File == "" && quiet {
		return zap.NewNop(), nil
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if lc.File != "" {
		zc.OutputPaths = []string{lc.File}
		zc.ErrorOutputPaths = []string{lc.File}
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

func newClient() *api.Client {
	return api.NewClient(cfg.API, logger)
}

func addFormatFlag(c *cobra.Command) {
	c.Flags().String("format", "table", "output format: table, json or yaml")
}

func newPrinter(cmd *cobra.Command) (*render.Printer, error) {
	s, _ := cmd.Flags().GetString("format")
	f, err := render.ParseFormat(s)
	if err != nil {
		return nil, err
	}
	return &render.Printer{W: cmd.OutOrStdout(), Format: f, Styles: render.DefaultStyles()}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
