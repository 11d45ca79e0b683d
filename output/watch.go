package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jakopako/cursorwatch/notify"
	"github.com/jakopako/cursorwatch/scraper"
	"github.com/jakopako/cursorwatch/schedule"
	"github.com/jakopako/cursorwatch/utils"
)

// Watch is a continuously refreshing terminal status pane. It only ever
// reads the worker's state and enqueues commands, the scraping itself stays
// on the worker goroutine.
type Watch struct {
	app      *tview.Application
	text     *tview.TextView
	worker   *scraper.Worker
	poller   *schedule.Poller
	notifier *notify.Notifier
}

func NewWatch(worker *scraper.Worker, poller *schedule.Poller, notifier *notify.Notifier) *Watch {
	text := tview.NewTextView().SetDynamicColors(true)
	text.SetBorder(true).SetTitle(" cursorwatch ").SetTitleAlign(tview.AlignLeft)
	app := tview.NewApplication().SetRoot(text, true)
	return &Watch{
		app:      app,
		text:     text,
		worker:   worker,
		poller:   poller,
		notifier: notifier,
	}
}

// Run blocks until the user quits.
func (w *Watch) Run() error {
	w.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			w.app.Stop()
			return nil
		case 'r':
			w.poller.Reset()
			w.worker.RequestFetch()
			return nil
		case 'l':
			w.worker.RequestLogin()
			return nil
		}
		return event
	})

	stop := make(chan struct{})
	go w.refreshLoop(stop)
	err := w.app.Run()
	close(stop)
	return err
}

func (w *Watch) refreshLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		v := w.worker.State().View()
		if w.notifier != nil && v.Snapshot != nil {
			w.notifier.Observe(*v.Snapshot)
		}
		w.app.QueueUpdateDraw(func() {
			w.text.SetText(renderView(v))
		})
	}
}

func renderView(v scraper.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, " [yellow]status[-]        %s\n\n", tview.Escape(StatusLine(v)))
	if s := v.Snapshot; s != nil {
		fmt.Fprintf(&b, " [yellow]included[-]      %d/%d (%.1f%%)\n", s.IncludedUsed, s.IncludedTotal, s.IncludedPercentage())
		fmt.Fprintf(&b, " [yellow]remaining[-]     %d\n", s.IncludedRemaining())
		fmt.Fprintf(&b, " [yellow]on-demand[-]     $%.2f / $%.2f\n\n", s.OnDemandUsed, s.OnDemandLimit)
		fmt.Fprintf(&b, " [yellow]model[-]         %s\n", tview.Escape(utils.ShortenString(s.DisplayModel(), maxModelDisplayLength)))
		fmt.Fprintf(&b, " [yellow]last request[-]  %s\n", tview.Escape(s.LastTimestamp))
		fmt.Fprintf(&b, " [yellow]thinking[-]      %s\n", yesNo(s.ThinkingMode))
		fmt.Fprintf(&b, " [yellow]max mode[-]      %s\n", yesNo(s.MaxMode))
	} else {
		b.WriteString(" no usage data yet\n")
	}
	b.WriteString("\n [gray]r[-] refresh  [gray]l[-] login  [gray]q[-] quit")
	return b.String()
}
