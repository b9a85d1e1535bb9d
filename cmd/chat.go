package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/linanwx/aggrechat/channel"
	"github.com/linanwx/aggrechat/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session.

On a terminal this opens a full-screen UI:
  ctrl+d   show or hide the details of the last answer
  ctrl+t   switch between dark and light themes
  ctrl+c   quit (or type /quit)

When stdin is not a terminal, or with --plain, lines are read from stdin and
answers are printed as they are revealed.`,
	RunE: runChat,
}

var (
	chatURL   string
	chatTheme string
	chatPlain bool
)

func init() {
	addChatFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func addChatFlags(c *cobra.Command) {
	c.Flags().StringVar(&chatURL, "url", "", "Aggregation service URL (overrides config)")
	c.Flags().StringVar(&chatTheme, "theme", "", "Theme: dark or light (overrides config)")
	c.Flags().BoolVar(&chatPlain, "plain", false, "Use the line-based interface even on a terminal")
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg := runtimeCfg
	if chatURL != "" {
		cfg.Service.URL = chatURL
	}
	if chatTheme != "" {
		cfg.UI.Theme = chatTheme
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctrl := newController(cfg)
	defer ctrl.Close()

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	ch := channel.NewCLIChannel(ctrl, channel.Options{
		WordWrap: cfg.UI.WordWrap,
		Plain:    chatPlain,
		Out:      cmd.OutOrStdout(),
	})
	logger.Info("chat session starting", "session", ctrl.ID(), "channel", ch.Name(), "url", cfg.Service.URL)

	err := ch.Run(ctx)
	logger.Info("chat session ended", "session", ctrl.ID(), "turns", ctrl.Log().Len())
	return err
}
