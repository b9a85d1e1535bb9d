package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/linanwx/aggrechat/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize aggrechat configuration",
	Long:  `Create the aggrechat configuration directory and config file.`,
	RunE:  runOnboard,
}

var onboardForce bool

func init() {
	onboardCmd.Flags().BoolVar(&onboardForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err == nil && !onboardForce {
		fmt.Fprintln(cmd.OutOrStdout(), "Config already exists at:", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "To reconfigure, edit the file directly or run 'aggrechat onboard --force'.")
		return nil
	}

	cfg := runtimeCfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// --- interactive wizard ---

	var (
		serviceURL  = cfg.Service.URL
		apiKey      = cfg.Service.APIKey
		theme       = cfg.UI.Theme
		showDetails = cfg.UI.ShowDetails
	)

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Aggregation service URL").
				Description("The endpoint that accepts {\"conversation\": [...]} and returns the combined answer.").
				Validate(validateServiceURL).
				Value(&serviceURL),
			huh.NewInput().
				Title("API key").
				Description("Sent as a Bearer token. Leave empty if the service is open.").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&theme),
			huh.NewConfirm().
				Title("Show answer details by default?").
				Description("You can toggle them any time with ctrl+d.").
				Value(&showDetails),
		),
	).Run()
	if err != nil {
		return err
	}

	// --- apply config ---

	cfg.Service.URL = strings.TrimSpace(serviceURL)
	cfg.Service.APIKey = strings.TrimSpace(apiKey)
	cfg.UI.Theme = theme
	cfg.UI.ShowDetails = showDetails

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "aggrechat initialized successfully!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Config:", configPath)
	fmt.Fprintln(out, "  Service:", cfg.Service.URL)
	fmt.Fprintln(out, "  Theme:", cfg.UI.Theme)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'aggrechat' to start chatting.")
	return nil
}

func validateServiceURL(s string) error {
	probe := config.DefaultConfig()
	probe.Service.URL = s
	return probe.Validate()
}
