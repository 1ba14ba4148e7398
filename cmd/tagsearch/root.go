package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/tagsearch/internal/actions"
	"github.com/MrSnakeDoc/tagsearch/internal/app"
	"github.com/MrSnakeDoc/tagsearch/internal/config"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/registry"
	"github.com/MrSnakeDoc/tagsearch/internal/utils"
	"github.com/MrSnakeDoc/tagsearch/internal/version"
)

// Global configuration and state
var (
	cfg        *config.Config
	log        logger.Logger
	globalOpts struct {
		configPath string
		store      string
		filePath   string
		logLevel   string
	}
)

var rootCmd = &cobra.Command{
	Use:   "tagsearch",
	Short: "Save, list and open tagged search queries",
	Long: `tagsearch keeps a list of named ("tagged") search queries.

Each tag maps to the latest query saved under it and the time it was saved.
Tags are unique regardless of case and listed in case-insensitive order.

Running tagsearch without a subcommand starts the HTTP server.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		applyFlagsToEnv()

		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		log = logger.New(cfg.LogLevel, cfg.PrettyLog)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if log != nil {
			_ = log.Sync()
		}
		return nil
	},
	RunE: runServe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalOpts.configPath, "config", "", "TOML config file (env: TAGSEARCH_CONFIG_FILE)")
	pf.StringVar(&globalOpts.store, "store", "", "store backend: file, redis or memory (env: TAGSEARCH_STORE)")
	pf.StringVar(&globalOpts.filePath, "file", "", "file store path (env: TAGSEARCH_FILE_PATH)")
	pf.StringVar(&globalOpts.logLevel, "log-level", "", "debug, info, warn or error (env: TAGSEARCH_LOG_LEVEL)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ tagsearch: %v\n", err)
		os.Exit(1)
	}
}

// applyFlagsToEnv lets flags win over environment and config file.
func applyFlagsToEnv() {
	for env, val := range map[string]string{
		"TAGSEARCH_CONFIG_FILE": globalOpts.configPath,
		"TAGSEARCH_STORE":       globalOpts.store,
		"TAGSEARCH_FILE_PATH":   globalOpts.filePath,
		"TAGSEARCH_LOG_LEVEL":   globalOpts.logLevel,
	} {
		if val != "" {
			_ = os.Setenv(env, val)
		}
	}
}

// loadConfig turns config.Load's fatal panics into an error.
func loadConfig() (c *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid configuration: %v", r)
		}
	}()
	return config.Load(), nil
}

// withRegistry opens the configured store, runs fn and closes the store.
func withRegistry(cmd *cobra.Command, fn func(ctx context.Context, reg *registry.Registry, h *actions.Handler) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reg, s, err := app.OpenRegistry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer utils.CloseLogged(s, "store", log)

	return fn(ctx, reg, app.NewActions(cfg, reg, log))
}
