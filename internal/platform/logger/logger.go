// Package logger provides structured logging with colored output.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New creates a logger writing to w at the given level. format is
// FormatText (the default) or FormatJSON.
func New(w io.Writer, level, format string, useColor bool) *slog.Logger {
	l := ParseLevel(level)
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
	}
	return slog.New(&coloredTextHandler{
		out:     &lockedWriter{w: w},
		level:   l,
		palette: newPalette(useColor),
	})
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// UseColor reports whether colored output is wanted: NO_COLOR or
// LOG_COLOR=false turn it off.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if v := strings.ToLower(os.Getenv("LOG_COLOR")); v == "false" || v == "0" {
		return false
	}
	return true
}

type palette struct {
	muted  *color.Color
	levels map[slog.Level]*color.Color
}

// newPalette sets colors on or off explicitly; fatih/color would otherwise
// decide from stdout, but logs go to stderr.
func newPalette(useColor bool) *palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &palette{
		muted: mk(color.FgHiBlack),
		levels: map[slog.Level]*color.Color{
			slog.LevelDebug: mk(color.FgCyan),
			slog.LevelInfo:  mk(color.FgBlue),
			slog.LevelWarn:  mk(color.FgYellow),
			slog.LevelError: mk(color.FgRed, color.Bold),
		},
	}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// coloredTextHandler writes one line per record:
// "2006-01-02 15:04:05 LEVEL message key=value ...".
type coloredTextHandler struct {
	out     *lockedWriter
	level   slog.Level
	palette *palette
	attrs   []slog.Attr // pre-qualified with groups
	group   string      // dotted prefix for keys
}

func (h *coloredTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *coloredTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	if !r.Time.IsZero() {
		buf.WriteString(h.palette.muted.Sprint(r.Time.Format("2006-01-02 15:04:05")))
		buf.WriteByte(' ')
	}
	buf.WriteString(h.palette.levels[levelBucket(r.Level)].Sprint(padLevel(r.Level)))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.group, a)
		return true
	})

	buf.WriteByte('\n')
	_, err := io.WriteString(h.out, buf.String())
	return err
}

func (h *coloredTextHandler) writeAttr(buf *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, prefix, ga)
		}
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(h.palette.muted.Sprint(prefix + a.Key + "="))
	buf.WriteString(a.Value.String())
}

func (h *coloredTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	qualified := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	qualified = append(qualified, h.attrs...)
	for _, a := range attrs {
		qualified = append(qualified, slog.Attr{Key: h.group + a.Key, Value: a.Value})
	}
	clone := *h
	clone.attrs = qualified
	return &clone
}

func (h *coloredTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

func levelBucket(l slog.Level) slog.Level {
	switch {
	case l >= slog.LevelError:
		return slog.LevelError
	case l >= slog.LevelWarn:
		return slog.LevelWarn
	case l >= slog.LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func padLevel(l slog.Level) string {
	return (levelBucket(l).String() + "     ")[:5]
}
