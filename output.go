package stegtext

import (
	"context"
	"io"
	"log/slog"
)

// OutputLevel is the amount of progress output Hide and Dig produce.
type OutputLevel int

const (
	OutputNone  OutputLevel = iota // Nothing.
	OutputSteps                    // One line per pipeline step.
	OutputInfo                     // Steps plus image and capacity details.
	OutputDebug                    // Everything, including the raw frame header.
)

const levelTrace = slog.LevelDebug - 4

func (l OutputLevel) String() string {
	switch l {
	case OutputNone:
		return "none"
	case OutputSteps:
		return "steps"
	case OutputInfo:
		return "info"
	case OutputDebug:
		return "debug"
	default:
		return "<unknown>"
	}
}

// SlogLevel returns the minimum slog level a handler needs to show output at l.
func (l OutputLevel) SlogLevel() slog.Level {
	switch {
	case l <= OutputNone:
		return slog.LevelError + 4
	case l == OutputSteps:
		return slog.LevelInfo
	case l == OutputInfo:
		return slog.LevelDebug
	default:
		return levelTrace
	}
}

// NewLogger returns a text logger writing to w that shows output up to level.
func NewLogger(w io.Writer, level OutputLevel) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.SlogLevel()}))
}

func logLvl(logger *slog.Logger, level OutputLevel, msg string, args ...any) {
	var l slog.Level
	switch level {
	case OutputSteps:
		l = slog.LevelInfo
	case OutputInfo:
		l = slog.LevelDebug
	default:
		l = levelTrace
	}
	logger.Log(context.Background(), l, msg, args...)
}
