// Package cmd implements the aggrechat command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linanwx/aggrechat/aggregator"
	"github.com/linanwx/aggrechat/config"
	"github.com/linanwx/aggrechat/logger"
	"github.com/linanwx/aggrechat/reveal"
	"github.com/linanwx/aggrechat/session"
)

var rootCmd = &cobra.Command{
	Use:   "aggrechat",
	Short: "Chat with several models at once through an aggregation service",
	Long: `aggrechat sends your conversation to an aggregation service that asks
several models and merges their answers, then types the combined answer out.

Run without a subcommand to start an interactive chat.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
	RunE:              runChat,
}

var (
	configDirFlag string

	// runtimeCfg is loaded once per invocation by loadRuntime.
	runtimeCfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Config directory (default ~/.aggrechat)")
	addChatFlags(rootCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRuntime(cmd *cobra.Command, _ []string) error {
	config.SetConfigDir(configDirFlag)

	cfg, err := config.Load()
	if err != nil {
		if cmd.Name() != onboardCmd.Name() {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.DefaultConfig()
	}
	runtimeCfg = cfg

	configDir, _ := config.ConfigDir()
	if err := logger.Init(cfg.BuildLoggerConfig(), configDir); err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
	}
	return nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			logger.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func newClient(cfg *config.Config) *aggregator.HTTPClient {
	return aggregator.NewHTTPClient(aggregator.Options{
		URL:     cfg.Service.URL,
		APIKey:  cfg.Service.APIKey,
		Timeout: cfg.Timeout(),
	})
}

func newController(cfg *config.Config) *session.Controller {
	return session.New(newClient(cfg), session.Options{
		Reveal: reveal.Options{
			Interval: cfg.RevealInterval(),
			Step:     cfg.Reveal.Step,
		},
		Theme:       session.ParseTheme(cfg.UI.Theme),
		ShowDetails: cfg.UI.ShowDetails,
	})
}
