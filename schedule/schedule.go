// Package schedule decides when the worker should be asked for a new fetch
// and contains the poller that acts on that decision.
package schedule

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jakopako/cursorwatch/scraper"
)

// Policy is the automatic fetch decision. It is a pure function of its
// inputs, the timer driving it lives in the Poller.
type Policy struct {
	IntervalMinutes int
	WorkHourStart   int
	WorkHourEnd     int
}

// ShouldFetch reports whether an automatic fetch is due. A fetch is due when
// the current hour falls into the work hour window, the worker is not busy
// with a fetch or login and at least the configured interval has passed
// since the last trigger.
func (p Policy) ShouldFetch(now time.Time, phase scraper.Phase, elapsed time.Duration) bool {
	if now.Hour() < p.WorkHourStart || now.Hour() >= p.WorkHourEnd {
		return false
	}
	if phase == scraper.PhaseFetching || phase == scraper.PhaseLoggingIn {
		return false
	}
	return elapsed >= time.Duration(p.IntervalMinutes)*time.Minute
}

// Target is the part of the worker the poller needs.
type Target interface {
	RequestFetch()
	Phase() scraper.Phase
}

// Poller evaluates the policy on a fixed short cadence and triggers the
// target when a fetch is due.
type Poller struct {
	target  Target
	cadence time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once

	mu          sync.Mutex
	policy      Policy
	lastTrigger time.Time
}

func NewPoller(target Target, policy Policy) *Poller {
	return &Poller{
		target:      target,
		cadence:     time.Second,
		now:         time.Now,
		stop:        make(chan struct{}),
		policy:      policy,
		lastTrigger: time.Now(),
	}
}

func (p *Poller) Start() {
	go func() {
		ticker := time.NewTicker(p.cadence)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.tick()
			case <-p.stop:
				return
			}
		}
	}()
}

func (p *Poller) Stop() {
	p.once.Do(func() {
		close(p.stop)
	})
}

func (p *Poller) tick() {
	p.mu.Lock()
	policy := p.policy
	elapsed := p.now().Sub(p.lastTrigger)
	p.mu.Unlock()

	if policy.ShouldFetch(p.now(), p.target.Phase(), elapsed) {
		slog.Debug("automatic fetch due", slog.Duration("elapsed", elapsed))
		p.Reset()
		p.target.RequestFetch()
	}
}

// Reset restarts the elapsed clock. Call it whenever a fetch is requested
// manually so the next automatic one is a full interval away.
func (p *Poller) Reset() {
	p.mu.Lock()
	p.lastTrigger = p.now()
	p.mu.Unlock()
}

// SetInterval changes the polling interval at runtime.
func (p *Poller) SetInterval(minutes int) {
	p.mu.Lock()
	p.policy.IntervalMinutes = minutes
	p.mu.Unlock()
	p.Reset()
}
