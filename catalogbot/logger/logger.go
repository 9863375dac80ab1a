package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeQuery   LogType = "QRY"
	TypeDB      LogType = "DB"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
)

// Options configures the console handler.
type Options struct {
	Level     slog.Leveler
	AddSource bool
	// Color disables ANSI colors when false, for files and tests.
	Color bool
}

type CustomHandler struct {
	opts   Options
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

func NewHandler(out io.Writer, opts Options) *CustomHandler {
	if out == nil {
		out = os.Stdout
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &CustomHandler{
		opts: opts,
		out:  out,
		mu:   &sync.Mutex{},
	}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *CustomHandler) groupPrefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

// WithAttrs qualifies attrs with the groups opened so far.
func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clip(h.attrs)
	prefix := h.groupPrefix()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}

func (h *CustomHandler) color(c string) string {
	if !h.opts.Color {
		return ""
	}
	return c
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(&r) {
		return nil
	}

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	attrs := h.collect(&r)
	message := r.Message
	if r.Level >= slog.LevelError {
		if location := attrs["error_location"]; location != "" {
			message = fmt.Sprintf("%s (%s)", message, location)
		} else if h.opts.AddSource && r.PC != 0 {
			frame := sourceFrame(r.PC)
			message = fmt.Sprintf("%s (%s)", message, frame)
		}
		if details := attrs["error"]; details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	}
	if name, user := attrs["name"], attrs["user_name"]; name != "" && user != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, name, user)
	} else if name != "" {
		message = fmt.Sprintf("%s [%s]", message, name)
	}
	if status := attrs["status"]; status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}
	if took := attrs["took"]; took != "" {
		message = fmt.Sprintf("%s (took %s)", message, took)
	}

	var extra strings.Builder
	for _, a := range h.attrs {
		if !isInternalAttr(a.Key) {
			fmt.Fprintf(&extra, " %s=%v", a.Key, a.Value)
		}
	}
	prefix := h.groupPrefix()
	r.Attrs(func(a slog.Attr) bool {
		if !isInternalAttr(a.Key) {
			fmt.Fprintf(&extra, " %s%s=%v", prefix, a.Key, a.Value)
		}
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[catalogbot] [%s] [%s%s%s] [%s] %s%s%s\n",
		h.color(colorWhite),
		r.Time.Format("15:04:05"),
		h.color(levelColor),
		levelText,
		h.color(colorWhite),
		logType(attrs["type"]),
		message,
		extra.String(),
		h.color(colorReset),
	)
	return err
}

// collect flattens the handler and record attributes, record values winning.
func (h *CustomHandler) collect(r *slog.Record) map[string]string {
	values := make(map[string]string, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		values[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		values[a.Key] = a.Value.String()
		return true
	})
	return values
}

func sourceFrame(pc uintptr) string {
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

func shouldSkipLog(r *slog.Record) bool {
	skippedMessages := []string{
		"locking buckets",
		"unlocking buckets",
		"gateway event",
		"cleaning up bucket",
		"cleaned up rate limit buckets",
		"binary message received",
		"received gateway message",
		"locking gateway rate limiter",
		"unlocking gateway rate limiter",
		"sending gateway command",
		"new request",
		"new response",
		"locking rest bucket",
		"unlocking rest bucket",
		"rate limit response headers",
		"sending heartbeat",
	}

	message := strings.ToLower(r.Message)
	for _, skip := range skippedMessages {
		if strings.Contains(message, skip) {
			return true
		}
	}
	return false
}

func logType(t string) LogType {
	switch t {
	case "cmd", "component":
		return TypeCommand
	case "query":
		return TypeQuery
	case "db":
		return TypeDB
	case "error":
		return TypeError
	default:
		return TypeSystem
	}
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "name", "user_name", "status", "took", "error", "error_location":
		return true
	}
	return false
}
