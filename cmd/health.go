package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/linanwx/aggrechat/config"
	"github.com/linanwx/aggrechat/internal/health"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report config, log file and service status as JSON",
	RunE:  runHealth,
}

var healthProbe bool

func init() {
	healthCmd.Flags().BoolVar(&healthProbe, "probe", false, "Send a GET to the service URL to check it is reachable")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	cfg := runtimeCfg
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	configPath, _ := config.ConfigPath()

	logFile := cfg.Logging.File
	if logFile != "" && !filepath.IsAbs(logFile) {
		logFile = filepath.Join(configDir, logFile)
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	snapshot := health.Collect(ctx, health.Options{
		ConfigDir:    configDir,
		ConfigPath:   configPath,
		LogFile:      logFile,
		ServiceURL:   cfg.Service.URL,
		APIKey:       cfg.Service.APIKey,
		Probe:        healthProbe,
		ProbeTimeout: cfg.Timeout(),
	})

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal health snapshot: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(pretty.Pretty(data))
	return err
}
