// Package slog provides logging decorators for downdrag services using
// log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/CodeBeast357/downdrag"
)

// Ensure LoggingFetcher implements downdrag.Fetcher.
var _ downdrag.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   downdrag.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next downdrag.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (content string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingClicker implements downdrag.Clicker.
var _ downdrag.Clicker = (*LoggingClicker)(nil)

// LoggingClicker wraps a Clicker with logging.
type LoggingClicker struct {
	next   downdrag.Clicker
	logger *slog.Logger
}

// NewLoggingClicker creates a new LoggingClicker.
func NewLoggingClicker(next downdrag.Clicker, logger *slog.Logger) *LoggingClicker {
	return &LoggingClicker{next: next, logger: logger}
}

// ClickThrough delegates to the wrapped clicker and logs the operation.
func (c *LoggingClicker) ClickThrough(ctx context.Context, url, action, query string) (content string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("click through",
			"url", url,
			"action", action,
			"bytes", len(content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.ClickThrough(ctx, url, action, query)
}
