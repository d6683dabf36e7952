package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const moduleKey = "module"

// DiscardHandler returns a handler that drops every record.
func DiscardHandler() slog.Handler {
	return discardHandler{}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// TerminalHandler renders records as
//
//	LEVEL|module|message key=value ...
type TerminalHandler struct {
	mu     *sync.Mutex
	wr     io.Writer
	lvl    slog.Level
	attrs  []slog.Attr
	colors bool
}

// NewTerminalHandlerWithLevel returns a handler that writes records at or above lvl to wr.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl slog.Level, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		mu:     new(sync.Mutex),
		wr:     wr,
		lvl:    lvl,
		colors: useColor,
	}
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	module := ""
	var kv []string

	collect := func(a slog.Attr) bool {
		if a.Key == moduleKey && module == "" {
			module = a.Value.String()
			return true
		}
		kv = append(kv, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	level := LevelAlignedString(r.Level)
	if h.colors {
		level = levelColor(r.Level) + level + "\033[0m"
	}
	b.WriteString(level)
	b.WriteByte('|')
	b.WriteString(module)
	b.WriteByte('|')
	b.WriteString(r.Message)
	if len(kv) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(kv, " "))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.wr, b.String())
	return err
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TerminalHandler{mu: h.mu, wr: h.wr, lvl: h.lvl, attrs: merged, colors: h.colors}
}

// WithGroup is not supported; groups are flattened.
func (h *TerminalHandler) WithGroup(string) slog.Handler {
	return h
}

func levelColor(l slog.Level) string {
	switch {
	case l >= LevelCrit:
		return "\033[35m"
	case l >= slog.LevelError:
		return "\033[31m"
	case l >= slog.LevelWarn:
		return "\033[33m"
	case l >= slog.LevelInfo:
		return "\033[32m"
	default:
		return "\033[90m"
	}
}
