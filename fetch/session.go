// Package fetch drives the browser session that the worker scrapes the
// dashboard with.
package fetch

import (
	"context"
	"time"
)

// Config defines the necessary parameters to open a new browser session.
type Config struct {
	// ProfileDir is the directory holding the persistent browser profile,
	// ie cookies and storage. Deleting it amounts to a logout.
	ProfileDir string
	UserAgent  string
}

// A Session is a single live browser context. It is not safe for concurrent
// use, the worker is its sole owner.
type Session interface {
	// Navigate loads the given url in the session's tab.
	Navigate(ctx context.Context, url string) error
	// WaitMarker polls the rendered page for the given text fragment until
	// it shows up or the timeout passes. The bool reports whether the
	// marker was found. Cancelling the context aborts the wait promptly.
	WaitMarker(ctx context.Context, marker string, timeout, interval time.Duration) (bool, error)
	// HTML returns the current markup of the fully rendered page.
	HTML(ctx context.Context) (string, error)
	// Close tears the session down. The persistent profile survives.
	Close()
}

// A Launcher opens a new session. Interactive sessions show the browser
// window so the user can log in, headless ones are used for fetching.
type Launcher func(ctx context.Context, headless bool) (Session, error)

// NewLauncher returns a Launcher that opens real chrome sessions.
func NewLauncher(config *Config) Launcher {
	return func(ctx context.Context, headless bool) (Session, error) {
		return NewBrowserSession(ctx, config, headless)
	}
}
