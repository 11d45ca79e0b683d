package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	return path
}

func TestNewDefaults(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatalf("expected no error for a missing config file but got %v", err)
	}
	if c.DashboardURL != "https://cursor.com/en-US/dashboard?tab=usage" {
		t.Errorf("unexpected default dashboard url %q", c.DashboardURL)
	}
	if c.IntervalMinutes != 15 {
		t.Errorf("expected default interval 15 but got %d", c.IntervalMinutes)
	}
	if c.WorkHourStart != 9 || c.WorkHourEnd != 17 {
		t.Errorf("expected default work hours 9-17 but got %d-%d", c.WorkHourStart, c.WorkHourEnd)
	}
	if !c.AlertOnMaxMode || c.AlertOnThinkingMode {
		t.Errorf("unexpected default alert flags: max=%t thinking=%t", c.AlertOnMaxMode, c.AlertOnThinkingMode)
	}
	if c.ProfileDir == "" {
		t.Error("expected a default profile directory")
	}
}

func TestNewFromFile(t *testing.T) {
	path := writeConfigFile(t, `
interval_minutes: 5
work_hour_start: 8
work_hour_end: 18
profile_dir: /tmp/cursorwatch-test-profile
`)
	c, err := New(path)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	if c.IntervalMinutes != 5 {
		t.Errorf("expected interval 5 but got %d", c.IntervalMinutes)
	}
	if c.WorkHourStart != 8 || c.WorkHourEnd != 18 {
		t.Errorf("expected work hours 8-18 but got %d-%d", c.WorkHourStart, c.WorkHourEnd)
	}
	if c.ProfileDir != "/tmp/cursorwatch-test-profile" {
		t.Errorf("unexpected profile dir %q", c.ProfileDir)
	}
}

func TestNewEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "interval_minutes: 5\n")
	t.Setenv("CURSORWATCH_INTERVAL_MINUTES", "30")

	c, err := New(path)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	if c.IntervalMinutes != 30 {
		t.Errorf("expected the environment to win with 30 but got %d", c.IntervalMinutes)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"negative interval", "interval_minutes: -5\n", "interval_minutes"},
		{"inverted work hours", "work_hour_start: 18\nwork_hour_end: 9\n", "work hour"},
		{"work hour end too large", "work_hour_end: 25\n", "work hour"},
	}
	for _, tt := range tests {
		path := writeConfigFile(t, tt.content)
		_, err := New(path)
		if err == nil {
			t.Errorf("%s: expected an error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.errPart) {
			t.Errorf("%s: expected error to mention %q but got %v", tt.name, tt.errPart, err)
		}
	}
}
