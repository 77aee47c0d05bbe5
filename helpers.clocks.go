package main

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

var _ Clocker = (*Clock)(nil)

// Clocker is the time source shared by the handlers and the logger.
// It embeds zapcore.Clock so the same value stamps log entries.
type Clocker interface {
	zapcore.Clock
	Since(time.Time) time.Duration
}

// Clock reads the system time in a fixed location.
type Clock struct {
	loc *time.Location
}

// NewClock returns a Clock set to UTC in production and Local otherwise.
func NewClock(isProd bool) *Clock {
	if isProd {
		return &Clock{loc: time.UTC}
	}
	return &Clock{loc: time.Local}
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *Clock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *Clock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// uptime renders an elapsed duration the way the status endpoints expose it.
func uptime(d time.Duration) string {
	return fmt.Sprintf("%.0f mins", d.Minutes())
}
