package fetch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// MockSession serves canned page content so the worker can be tested without
// a real browser. Unlike a real session it is safe to inspect from the test
// goroutine while the worker drives it.
type MockSession struct {
	// Pages maps urls to the markup the session pretends to render.
	Pages map[string]string
	// NavigateErr, when set, is returned by every Navigate call.
	NavigateErr error
	// WaitBlocks makes WaitMarker block until the timeout or the context
	// runs out instead of answering from the page content.
	WaitBlocks bool

	mu        sync.Mutex
	current   string
	navigates int
	closed    bool
}

func (m *MockSession) Navigate(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigates++
	if m.NavigateErr != nil {
		return m.NavigateErr
	}
	m.current = url
	return nil
}

func (m *MockSession) WaitMarker(ctx context.Context, marker string, timeout, interval time.Duration) (bool, error) {
	if m.WaitBlocks {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(timeout):
			return false, nil
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Contains(m.Pages[m.current], marker), nil
}

func (m *MockSession) HTML(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Pages[m.current]; ok {
		return p, nil
	}
	return "", errors.New("page not found")
}

func (m *MockSession) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// NavigateCount returns how often Navigate was called.
func (m *MockSession) NavigateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.navigates
}

// WasClosed reports whether Close was called.
func (m *MockSession) WasClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
