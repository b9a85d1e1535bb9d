package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/linanwx/aggrechat/conversation"
	"github.com/linanwx/aggrechat/logger"
	"github.com/linanwx/aggrechat/session"
)

const plainPrompt = "you> "

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	answerColor  = color.New(color.FgGreen, color.Bold)
	noticeColor  = color.New(color.FgYellow)
	detailsColor = color.New(color.Faint)
)

// plainChannel reads one line at a time and prints the reveal as it grows.
// Used when stdin is not a terminal or --plain is set.
type plainChannel struct {
	ctrl *session.Controller
	in   io.Reader
	out  io.Writer

	mu      sync.Mutex
	index   int // turn being streamed, -1 before the first answer
	printed int // bytes of that turn already written
}

func newPlainChannel(ctrl *session.Controller, cfg Options) *plainChannel {
	return &plainChannel{
		ctrl:  ctrl,
		in:    cfg.In,
		out:   cfg.Out,
		index: -1,
	}
}

func (c *plainChannel) Name() string { return "plain" }

func (c *plainChannel) Run(ctx context.Context) error {
	logger.Info("cli channel started (plain mode)")
	unsubscribe := c.ctrl.Log().Subscribe(c.stream)
	defer unsubscribe()

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		promptColor.Fprint(c.out, plainPrompt)

		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}

		text := scanner.Text()
		switch strings.TrimSpace(text) {
		case "":
			continue
		case "/details":
			c.printDetails()
			continue
		case "/theme":
			noticeColor.Fprintf(c.out, "theme: %s\n", c.ctrl.ToggleTheme())
			continue
		}
		if isExit(text) {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}

		if !c.ctrl.Submit(ctx, text) {
			if ctx.Err() != nil || c.ctrl.Closed() {
				noticeColor.Fprintln(c.out, "session closed")
				return nil
			}
			noticeColor.Fprintln(c.out, "a request is already in progress")
			continue
		}
		c.ctrl.Wait()

		c.mu.Lock()
		fmt.Fprint(c.out, "\n\n")
		c.mu.Unlock()
	}
}

// stream writes the part of the last respondent turn not yet printed.
func (c *plainChannel) stream(turns []conversation.Turn) {
	if len(turns) == 0 {
		return
	}
	last := len(turns) - 1
	turn := turns[last]
	if turn.Role != conversation.RoleRespondent {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if last != c.index {
		c.index = last
		c.printed = 0
		answerColor.Fprint(c.out, "\nassistant> ")
	}
	if len(turn.Content) > c.printed {
		io.WriteString(c.out, turn.Content[c.printed:])
		c.printed = len(turn.Content)
	}
}

func (c *plainChannel) printDetails() {
	diag, ok := c.ctrl.Diagnostics().Get()
	if !ok {
		noticeColor.Fprintln(c.out, "no diagnostics yet")
		return
	}
	detailsColor.Fprintln(c.out, diag.JSON())
}
