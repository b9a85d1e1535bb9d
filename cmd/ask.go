package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/linanwx/aggrechat/aggregator"
	"github.com/linanwx/aggrechat/conversation"
	"github.com/linanwx/aggrechat/render"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a single question and print the combined answer",
	Long: `Send one question to the aggregation service and print the answer.

Output is rendered Markdown on a terminal and plain text otherwise.

Examples:
  aggrechat ask -m "What is a monad?"
  aggrechat ask -m "Compare TCP and QUIC" --details`,
	RunE: runAsk,
}

var (
	askMessage string
	askURL     string
	askDetails bool
)

func init() {
	askCmd.Flags().StringVarP(&askMessage, "message", "m", "", "Question to ask (required)")
	askCmd.Flags().StringVar(&askURL, "url", "", "Aggregation service URL (overrides config)")
	askCmd.Flags().BoolVar(&askDetails, "details", false, "Also print the diagnostics record")
	_ = askCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, _ []string) error {
	cfg := runtimeCfg
	if askURL != "" {
		cfg.Service.URL = askURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	text := strings.TrimSpace(askMessage)
	if text == "" {
		return fmt.Errorf("message is empty")
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	payload, err := newClient(cfg).Aggregate(ctx, []conversation.Turn{conversation.AuthorTurn(askMessage)})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	display, diag := aggregator.Normalize(payload)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatAnswer(out, display, cfg.UI.Theme, cfg.UI.WordWrap))
	if askDetails {
		fmt.Fprintln(out)
		fmt.Fprintln(out, diag.JSON())
	}
	return nil
}

// formatAnswer renders Markdown for a terminal and plain text for anything else.
func formatAnswer(w io.Writer, markdown, theme string, wordWrap int) string {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return render.Plain(markdown)
	}
	width := wordWrap
	if width <= 0 {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = tw
		}
	}
	return render.NewRenderer().Render(markdown, theme, width)
}
