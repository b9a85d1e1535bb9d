// Package channel provides the terminal front ends that drive a chat session.
package channel

import (
	"context"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/linanwx/aggrechat/session"
)

// Channel is an interactive front end bound to one session.
type Channel interface {
	// Name returns the channel name ("tui" or "plain").
	Name() string

	// Run blocks until the user quits, input ends, or ctx is canceled.
	Run(ctx context.Context) error
}

// Options configures a CLI channel.
type Options struct {
	WordWrap int  // 0 = terminal width
	Plain    bool // never start the TUI

	In  io.Reader // defaults to os.Stdin
	Out io.Writer // defaults to os.Stdout
}

// NewCLIChannel creates a CLI channel for ctrl.
// If stdin is a terminal, it returns a TUI-based channel; otherwise a plain line reader.
func NewCLIChannel(ctrl *session.Controller, cfg Options) Channel {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if !cfg.Plain && isTerminal(cfg.In) {
		return newTUIChannel(ctrl, cfg)
	}
	return newPlainChannel(ctrl, cfg)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// isExit reports whether a line ends the session.
func isExit(text string) bool {
	switch strings.TrimSpace(text) {
	case "exit", "quit", "/exit", "/quit":
		return true
	}
	return false
}
