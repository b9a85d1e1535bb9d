// Package logger provides a minimal slog-based logging wrapper.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config describes logger settings.
type Config struct {
	Enabled bool
	Level   string
	Stdout  bool
	File    string
}

var (
	mu      sync.RWMutex
	base    = slog.New(slog.NewTextHandler(os.Stderr, nil))
	enabled = true

	savedCfg  Config
	savedFile *os.File
	intercept io.Writer // non-nil while the TUI owns the terminal
)

// Init configures the logger. Relative file paths resolve against configDir.
func Init(cfg Config, configDir string) error {
	mu.Lock()
	defer mu.Unlock()

	savedCfg = cfg
	if savedFile != nil {
		savedFile.Close()
		savedFile = nil
	}

	if !cfg.Enabled {
		enabled = false
		base = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	var initErr error
	if cfg.File != "" {
		path := expandPath(cfg.File, configDir)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			initErr = fmt.Errorf("logger: create log dir: %w", err)
		} else if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err != nil {
			initErr = fmt.Errorf("logger: open log file: %w", err)
		} else {
			savedFile = f
		}
	}

	rebuild()
	return initErr
}

// Intercept sends console output to w instead of stderr. The log file, if
// any, keeps receiving every record.
func Intercept(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	intercept = w
	if enabled {
		rebuild()
	}
}

// Restore undoes Intercept.
func Restore() {
	mu.Lock()
	defer mu.Unlock()
	intercept = nil
	if enabled {
		rebuild()
	}
}

// rebuild must be called with mu held.
func rebuild() {
	opts := &slog.HandlerOptions{Level: parseLevel(savedCfg.Level)}

	var writers []io.Writer
	switch {
	case intercept != nil:
		writers = append(writers, intercept)
	case savedCfg.Stdout:
		writers = append(writers, os.Stderr)
	}
	if savedFile != nil {
		writers = append(writers, savedFile)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	base = slog.New(slog.NewTextHandler(io.MultiWriter(writers...), opts))
	enabled = true
}

// With returns a logger carrying args on every record, for component-scoped
// fields such as a session id. It follows later Init, Intercept and Restore
// calls.
func With(args ...any) *slog.Logger {
	return slog.New(liveHandler{}).With(args...)
}

// liveHandler resolves the current base handler on every record.
type liveHandler struct {
	scope []func(slog.Handler) slog.Handler
}

func (h liveHandler) current() slog.Handler {
	mu.RLock()
	l, on := base, enabled
	mu.RUnlock()
	if !on || l == nil {
		return nil
	}
	hd := l.Handler()
	for _, apply := range h.scope {
		hd = apply(hd)
	}
	return hd
}

func (h liveHandler) Enabled(ctx context.Context, level slog.Level) bool {
	hd := h.current()
	return hd != nil && hd.Enabled(ctx, level)
}

func (h liveHandler) Handle(ctx context.Context, r slog.Record) error {
	hd := h.current()
	if hd == nil {
		return nil
	}
	return hd.Handle(ctx, r)
}

func (h liveHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(hd slog.Handler) slog.Handler { return hd.WithAttrs(attrs) })
}

func (h liveHandler) WithGroup(name string) slog.Handler {
	return h.with(func(hd slog.Handler) slog.Handler { return hd.WithGroup(name) })
}

func (h liveHandler) with(fn func(slog.Handler) slog.Handler) liveHandler {
	scope := make([]func(slog.Handler) slog.Handler, 0, len(h.scope)+1)
	scope = append(scope, h.scope...)
	return liveHandler{scope: append(scope, fn)}
}

// Debug logs a debug message.
func Debug(msg string, args ...any) { log(slog.LevelDebug, msg, args...) }

// Info logs an info message.
func Info(msg string, args ...any) { log(slog.LevelInfo, msg, args...) }

// Warn logs a warning message.
func Warn(msg string, args ...any) { log(slog.LevelWarn, msg, args...) }

// Error logs an error message.
func Error(msg string, args ...any) { log(slog.LevelError, msg, args...) }

func log(level slog.Level, msg string, args ...any) {
	mu.RLock()
	l, on := base, enabled
	mu.RUnlock()

	if !on || l == nil {
		return
	}
	l.Log(context.Background(), level, msg, args...)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func expandPath(path, configDir string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	if filepath.IsAbs(path) || configDir == "" {
		return path
	}
	return filepath.Join(configDir, path)
}
