package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jakopako/cursorwatch/fetch"
	"github.com/jakopako/cursorwatch/usage"
	"github.com/jakopako/cursorwatch/utils"
)

// Marker is a text fragment that only shows up on the dashboard when the
// user is logged in. Its presence doubles as the page-loaded signal.
const Marker = "Included-Request Usage"

const (
	loginWaitTimeout  = 300 * time.Second
	loginPollInterval = 2 * time.Second
	fetchWaitTimeout  = 10 * time.Second
	fetchPollInterval = 2 * time.Second
	navigateTimeout   = 60 * time.Second
	stopJoinTimeout   = 5 * time.Second
	maxErrorLength    = 50
)

type command int

const (
	commandFetch command = iota
	commandLogin
)

// Worker owns the browser session. All session operations are funneled
// through its command channel and executed strictly sequentially on a single
// goroutine. The only thing the worker shares with the outside is its State.
type Worker struct {
	url        string
	settleWait time.Duration
	launch     fetch.Launcher
	state      *State
	now        func() time.Time

	commands  chan command
	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once

	session fetch.Session // only ever touched by the run goroutine
}

func NewWorker(url string, settleWait time.Duration, launch fetch.Launcher) *Worker {
	return &Worker{
		url:        url,
		settleWait: settleWait,
		launch:     launch,
		state:      NewState(),
		now:        time.Now,
		commands:   make(chan command, 16),
		done:       make(chan struct{}),
	}
}

// State returns the shared state container readers should poll.
func (w *Worker) State() *State {
	return w.state
}

// Phase returns the worker's current phase.
func (w *Worker) Phase() Phase {
	return w.state.View().Phase
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		w.cancel = cancel
		go w.run(ctx)
	})
}

// Stop cancels the worker and waits briefly for it to quiesce. Queued
// commands that have not started yet are dropped.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		if w.cancel == nil {
			return
		}
		w.cancel()
		select {
		case <-w.done:
		case <-time.After(stopJoinTimeout):
			slog.Warn("worker did not quiesce in time")
		}
	})
}

// RequestFetch enqueues a fetch unless a fetch or login is already running.
// Never blocks.
func (w *Worker) RequestFetch() {
	if p := w.Phase(); p == PhaseFetching || p == PhaseLoggingIn {
		return
	}
	select {
	case w.commands <- commandFetch:
	default:
	}
}

// RequestLogin enqueues a login unless one is already running. Never blocks.
func (w *Worker) RequestLogin() {
	if w.Phase() == PhaseLoggingIn {
		return
	}
	select {
	case w.commands <- commandLogin:
	default:
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	defer w.closeSession()
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-w.commands:
			// a stop request wins over queued work
			if ctx.Err() != nil {
				return
			}
			switch cmd {
			case commandFetch:
				w.doFetch(ctx)
			case commandLogin:
				w.doLogin(ctx)
			}
		}
	}
}

// doLogin opens a visible browser so the user can log in, waits for the
// authenticated marker and then immediately fetches in one go. The combined
// round trip saves the user a second manual refresh.
func (w *Worker) doLogin(ctx context.Context) {
	logger := slog.With(slog.String("op", "login"))
	w.state.Apply(Update{Phase: ptr(PhaseLoggingIn), LastError: ptr("")})

	// a login always starts from a fresh interactive browser
	w.closeSession()
	if err := w.ensureSession(ctx, false); err != nil {
		w.fail(err)
		return
	}
	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	err := w.session.Navigate(navCtx, w.url)
	cancel()
	if err != nil {
		w.fail(err)
		return
	}

	logger.Info("waiting for user to log in")
	found, err := w.session.WaitMarker(ctx, Marker, loginWaitTimeout, loginPollInterval)
	if err != nil {
		w.fail(err)
		return
	}
	if !found {
		w.state.Apply(Update{Phase: ptr(PhaseError), LastError: ptr("login timeout - please try again")})
		w.closeSession()
		return
	}

	logger.Info("login detected")
	w.state.Apply(Update{Authenticated: ptr(true), LastError: ptr("")})
	// relaunch headless for the data fetch
	w.closeSession()
	w.doFetch(ctx)
}

func (w *Worker) doFetch(ctx context.Context) {
	logger := slog.With(slog.String("op", "fetch"))
	w.state.Apply(Update{Phase: ptr(PhaseFetching), LastError: ptr("")})

	if err := w.ensureSession(ctx, true); err != nil {
		w.fail(err)
		return
	}
	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	err := w.session.Navigate(navCtx, w.url)
	cancel()
	if err != nil {
		w.fail(err)
		return
	}

	found, err := w.session.WaitMarker(ctx, Marker, fetchWaitTimeout, fetchPollInterval)
	if err != nil {
		w.fail(err)
		return
	}
	if !found {
		// not an error, the dashboard is up but we are not logged in
		logger.Info("dashboard reachable but not authenticated")
		w.state.Apply(Update{
			Phase:         ptr(PhaseIdle),
			Authenticated: ptr(false),
			LastError:     ptr("please login"),
		})
		return
	}

	// give client side rendering a moment to fill in the numbers
	if w.settleWait > 0 {
		select {
		case <-ctx.Done():
			w.closeSession()
			return
		case <-time.After(w.settleWait):
		}
	}

	markup, err := w.session.HTML(ctx)
	if err != nil {
		w.fail(err)
		return
	}
	snapshot, err := usage.Extract(markup)
	if err != nil {
		w.fail(err)
		return
	}

	logger.Info("usage fetched",
		slog.Int("included_used", snapshot.IncludedUsed),
		slog.Int("included_total", snapshot.IncludedTotal))
	w.state.Apply(Update{
		Phase:         ptr(PhaseIdle),
		Authenticated: ptr(true),
		Snapshot:      &snapshot,
		LastFetchTime: ptr(w.now().Format("15:04")),
		LastError:     ptr(""),
	})
}

func (w *Worker) ensureSession(ctx context.Context, headless bool) error {
	if w.session != nil {
		return nil
	}
	session, err := w.launch(ctx, headless)
	if err != nil {
		return fmt.Errorf("browser launch failed: %v", err)
	}
	w.session = session
	return nil
}

func (w *Worker) closeSession() {
	if w.session != nil {
		w.session.Close()
		w.session = nil
	}
}

// fail records the error on the state and tears the session down. A stop
// request that interrupted the operation is not an error worth recording.
func (w *Worker) fail(err error) {
	w.closeSession()
	if errors.Is(err, context.Canceled) {
		return
	}
	w.state.Apply(Update{Phase: ptr(PhaseError), LastError: ptr(errorMessage(err))})
}

// errorMessage normalizes an error for the status line. Timeouts get a fixed
// short text, everything else is truncated.
func errorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "page load timeout"
	}
	return utils.ShortenString(err.Error(), maxErrorLength)
}
