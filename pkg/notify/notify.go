// Package notify delivers reminder reports to the user. All display state
// changes run on a single event loop; the poller only posts to it.
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/smith3v/family-medicine-manager/pkg/logger"
	"github.com/smith3v/family-medicine-manager/pkg/reminders"
)

const eventBuffer = 16

// Gate allows at most one reminder on screen.
type Gate struct {
	shown atomic.Bool
}

// TryAcquire marks a reminder as shown. It reports false when one already is.
func (g *Gate) TryAcquire() bool {
	return g.shown.CompareAndSwap(false, true)
}

func (g *Gate) Release() {
	g.shown.Store(false)
}

func (g *Gate) Showing() bool {
	return g.shown.Load()
}

// Display shows a reminder without blocking and calls dismiss exactly once
// when the user closes it.
type Display interface {
	Show(report reminders.Report, dismiss func())
}

type Dispatcher struct {
	gate    *Gate
	display Display
	events  chan func()
	done    chan struct{} // closed when Run returns
	stop    sync.Once
}

func NewDispatcher(display Display) *Dispatcher {
	return &Dispatcher{
		gate:    &Gate{},
		display: display,
		events:  make(chan func(), eventBuffer),
		done:    make(chan struct{}),
	}
}

func (d *Dispatcher) Gate() *Gate {
	return d.gate
}

// Present hands a report over to the event loop. It is safe to call from any
// goroutine.
func (d *Dispatcher) Present(report reminders.Report) {
	if !d.Post(func() { d.show(report) }) {
		logger.Warn("reminder dropped, event loop is busy", "due", len(report.Items))
	}
}

// Post queues fn to run on the event loop. It reports false if the queue is
// full.
func (d *Dispatcher) Post(fn func()) bool {
	select {
	case d.events <- fn:
		return true
	default:
		return false
	}
}

// postWait queues fn, waiting for room in the queue. It gives up and reports
// false once the event loop has stopped.
func (d *Dispatcher) postWait(fn func()) bool {
	select {
	case d.events <- fn:
		return true
	case <-d.done:
		return false
	}
}

// Run executes posted events in order until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.stop.Do(func() { close(d.done) })
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-d.events:
			fn()
		}
	}
}

func (d *Dispatcher) show(report reminders.Report) {
	if report.Empty() {
		logger.Debug("no medications due", "as_of", report.AsOf)
		return
	}
	if !d.gate.TryAcquire() {
		logger.Info("reminder suppressed, another one is still shown", "due", len(report.Items))
		return
	}

	var once atomic.Bool
	logger.Info("showing reminder", "due", len(report.Items))
	d.display.Show(report, func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		// The gate is only released on the loop.
		if !d.Post(d.dismiss) {
			go func() {
				if !d.postWait(d.dismiss) {
					logger.Debug("reminder dismissed after the event loop stopped")
				}
			}()
		}
	})
}

func (d *Dispatcher) dismiss() {
	d.gate.Release()
	logger.Debug("reminder dismissed")
}
