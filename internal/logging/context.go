// Package logging carries graph correlation values on a context and injects
// them into slog records.
package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	graphIDKey ctxKey = iota
	stageKey
	nodeKey
)

// Attribute names of the correlation values, in output order.
var correlation = []struct {
	key  ctxKey
	attr string
}{
	{graphIDKey, "graph_id"},
	{stageKey, "stage"},
	{nodeKey, "node"},
}

// WithGraphID returns a context carrying the graph instance id.
func WithGraphID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, graphIDKey, id)
}

// WithStage returns a context carrying the stage being drawn.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// WithNode returns a context carrying the node being handled.
func WithNode(ctx context.Context, node string) context.Context {
	return context.WithValue(ctx, nodeKey, node)
}

// GraphID extracts the graph id from the context, or "" if absent.
func GraphID(ctx context.Context) string { return value(ctx, graphIDKey) }

// Stage extracts the stage from the context, or "" if absent.
func Stage(ctx context.Context) string { return value(ctx, stageKey) }

// Node extracts the node from the context, or "" if absent.
func Node(ctx context.Context) string { return value(ctx, nodeKey) }

func value(ctx context.Context, k ctxKey) string {
	v, _ := ctx.Value(k).(string)
	return v
}

func attrs(ctx context.Context) []slog.Attr {
	var out []slog.Attr
	for _, c := range correlation {
		if v := value(ctx, c.key); v != "" {
			out = append(out, slog.String(c.attr, v))
		}
	}
	return out
}

// CorrelationHandler wraps an slog.Handler and adds the correlation values
// of the record context to every record, so callers can log with
// logger.InfoContext(ctx, ...).
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps inner.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(attrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
