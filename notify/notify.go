// Package notify raises desktop notifications for noteworthy usage changes.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/jakopako/cursorwatch/usage"
)

// Notifier sends edge triggered desktop alerts: one notification when a mode
// turns on, rearmed once the mode turns off again. Not safe for concurrent
// use, Observe is meant to be called from a single display loop.
type Notifier struct {
	alertOnMaxMode      bool
	alertOnThinkingMode bool

	maxAlerted      bool
	thinkingAlerted bool
	send            func(title, body string) error
}

func New(alertOnMaxMode, alertOnThinkingMode bool) *Notifier {
	return &Notifier{
		alertOnMaxMode:      alertOnMaxMode,
		alertOnThinkingMode: alertOnThinkingMode,
		send: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
	}
}

// Observe inspects a freshly fetched snapshot and raises the configured
// alerts.
func (n *Notifier) Observe(snapshot usage.Snapshot) {
	if n.alertOnMaxMode {
		switch {
		case snapshot.MaxMode && !n.maxAlerted:
			n.maxAlerted = true
			_ = n.send("Cursor Max Mode Detected", fmt.Sprintf("Model: %s", snapshot.DisplayModel()))
		case !snapshot.MaxMode:
			n.maxAlerted = false
		}
	}
	if n.alertOnThinkingMode {
		switch {
		case snapshot.ThinkingMode && !n.thinkingAlerted:
			n.thinkingAlerted = true
			_ = n.send("Cursor Thinking Mode", fmt.Sprintf("Model: %s", snapshot.DisplayModel()))
		case !snapshot.ThinkingMode:
			n.thinkingAlerted = false
		}
	}
}
