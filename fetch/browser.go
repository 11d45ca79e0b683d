package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"github.com/jakopako/cursorwatch/log"
)

// BrowserSession drives a single chrome instance with a persistent profile.
type BrowserSession struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	browserCtx  context.Context
	cancelTab   context.CancelFunc
}

// NewBrowserSession launches chrome and opens one tab. The profile directory
// is created if it does not exist yet so login state survives restarts.
func NewBrowserSession(ctx context.Context, config *Config, headless bool) (*BrowserSession, error) {
	if err := os.MkdirAll(config.ProfileDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %v", err)
	}
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(config.ProfileDir),
		chromedp.WindowSize(1280, 800),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("headless", headless),
	)
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx)

	// run an empty task list so that launch failures surface here and not
	// on the first navigation
	if err := chromedp.Run(browserCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("browser launch failed: %v", err)
	}
	log.LoggerFromContext(ctx).Debug("browser session started",
		slog.Bool("headless", headless), slog.String("profile", config.ProfileDir))
	return &BrowserSession{
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		browserCtx:  browserCtx,
		cancelTab:   cancelTab,
	}, nil
}

func (b *BrowserSession) Navigate(ctx context.Context, url string) error {
	log.LoggerFromContext(ctx).Debug("navigating", slog.String("url", url))
	return b.run(ctx, chromedp.Navigate(url))
}

func (b *BrowserSession) WaitMarker(ctx context.Context, marker string, timeout, interval time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		markup, err := b.HTML(ctx)
		if err != nil {
			return false, err
		}
		if strings.Contains(markup, marker) {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (b *BrowserSession) HTML(ctx context.Context) (string, error) {
	var body string
	err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		body, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	return body, err
}

func (b *BrowserSession) Close() {
	b.cancelTab()
	b.cancelAlloc()
}

// run executes the actions on the session's tab. chromedp actions have to run
// on the browser context, so cancellation of the caller context is forwarded
// and its error takes precedence to keep timeouts recognizable.
func (b *BrowserSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancelRun := context.WithCancel(b.browserCtx)
	defer cancelRun()
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
