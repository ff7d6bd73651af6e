// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the logging front of the daemon. Records are produced by the go-ethereum slog
// based logger, so formatting of *uint256.Int, addresses and durations is consistent everywhere.
package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels, re-exported so callers don't need to import go-ethereum.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Legacy verbosity values accepted on the command line.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// Logger writes key/value pairs.
type Logger interface {
	With(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

// WithContext returns a logger carrying ctx. The root logger is looked up on every record,
// so package level loggers follow the handler installed later by SetDefault.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

// Root returns the current root logger.
func Root() Logger {
	return WithContext()
}

// SetDefault installs h as the root handler.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// FromLegacyLevel converts a 0-5 verbosity into a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	return ethlog.FromLegacyLevel(lvl)
}

// TerminalHandler returns a human friendly handler, filtered by lvl.
func TerminalHandler(wr io.Writer, lvl *slog.LevelVar, useColor bool) slog.Handler {
	return NewLeveledHandler(ethlog.NewTerminalHandler(wr, useColor), lvl)
}

// JSONHandler returns a handler emitting one JSON object per record, filtered by lvl.
func JSONHandler(wr io.Writer, lvl *slog.LevelVar) slog.Handler {
	return NewLeveledHandler(ethlog.JSONHandler(wr), lvl)
}

// DiscardHandler drops everything.
func DiscardHandler() slog.Handler {
	return NewLeveledHandler(ethlog.DiscardHandler(), nil)
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) root() ethlog.Logger {
	if len(l.ctx) == 0 {
		return ethlog.Root()
	}
	return ethlog.Root().With(l.ctx...)
}

func (l *lazyLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &lazyLogger{ctx: append(merged, ctx...)}
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }

// Crit logs and exits, same as the go-ethereum logger.
func (l *lazyLogger) Crit(msg string, ctx ...any) { l.root().Crit(msg, ctx...) }

// leveledHandler filters records below a runtime adjustable level.
type leveledHandler struct {
	next slog.Handler
	lvl  *slog.LevelVar
}

// NewLeveledHandler wraps next so that records below lvl are dropped. A nil lvl lets everything through.
func NewLeveledHandler(next slog.Handler, lvl *slog.LevelVar) slog.Handler {
	return &leveledHandler{next: next, lvl: lvl}
}

func (h *leveledHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.lvl != nil && level < h.lvl.Level() {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *leveledHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &leveledHandler{next: h.next.WithAttrs(attrs), lvl: h.lvl}
}

func (h *leveledHandler) WithGroup(name string) slog.Handler {
	return &leveledHandler{next: h.next.WithGroup(name), lvl: h.lvl}
}
