package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/logger"
	"github.com/smith3v/family-medicine-manager/pkg/settings"
)

const (
	DefaultTick     = 10 * time.Second
	DefaultRecovery = 60 * time.Second
)

// Presenter receives the result of every successful check. It is called on
// the poller goroutine and must hand the report off rather than render it.
type Presenter interface {
	Present(Report)
}

type PresenterFunc func(Report)

func (f PresenterFunc) Present(r Report) { f(r) }

// Poller re-evaluates due medications on the stored reminder interval. The
// interval is re-read on every tick, so a change takes effect while waiting.
type Poller struct {
	tick     time.Duration
	unit     time.Duration
	recovery time.Duration
	now      func() time.Time
	interval func() (int, error)
	evaluate func(time.Time) (Report, error)
	present  Presenter
}

type Option func(*Poller)

func WithTick(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.tick = d
		}
	}
}

// WithIntervalUnit sets the duration of one interval step. The stored
// interval is in minutes.
func WithIntervalUnit(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.unit = d
		}
	}
}

func WithRecovery(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.recovery = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

func WithIntervalSource(source func() (int, error)) Option {
	return func(p *Poller) { p.interval = source }
}

func WithEvaluator(evaluate func(time.Time) (Report, error)) Option {
	return func(p *Poller) { p.evaluate = evaluate }
}

func NewPoller(present Presenter, opts ...Option) *Poller {
	p := &Poller{
		tick:     DefaultTick,
		unit:     time.Minute,
		recovery: DefaultRecovery,
		now:      time.Now,
		interval: settings.ReminderInterval,
		evaluate: Evaluate,
		present:  present,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run checks once immediately and then after every elapsed interval until ctx
// is cancelled. A failed check never stops the loop.
func (p *Poller) Run(ctx context.Context) {
	logger.Info("reminder poller started", "tick", p.tick, "recovery", p.recovery)
	defer logger.Info("reminder poller stopped")

	if !p.checkOrRecover(ctx) {
		return
	}

	interval := p.readInterval(db.DefaultReminderInterval)
	for {
		var ok bool
		interval, ok = p.wait(ctx, interval)
		if !ok {
			return
		}
		if !p.checkOrRecover(ctx) {
			return
		}
	}
}

// wait blocks until interval units have passed since it was called. A change
// of the stored interval ends the wait on the tick that sees it, and the
// following wait runs on the new interval.
func (p *Poller) wait(ctx context.Context, interval int) (int, bool) {
	start := p.now()
	deadline := start.Add(time.Duration(interval) * p.unit)
	logger.Debug("waiting for next reminder check", "interval", interval, "deadline", deadline)

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return interval, false
		case <-ticker.C:
		}

		if latest := p.readInterval(interval); latest != interval {
			logger.Info("reminder interval changed", "from", interval, "to", latest)
			return latest, true
		}
		if !p.now().Before(deadline) {
			return interval, true
		}
	}
}

func (p *Poller) readInterval(current int) int {
	value, err := p.interval()
	if err != nil {
		logger.Warn("failed to read reminder interval, keeping current", "interval", current, "error", err)
		return current
	}
	if value <= 0 {
		return current
	}
	return value
}

func (p *Poller) checkOrRecover(ctx context.Context) bool {
	err := p.check()
	if err == nil {
		return true
	}
	logger.Error("reminder check failed", "error", err, "retry_in", p.recovery)

	timer := time.NewTimer(p.recovery)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (p *Poller) check() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperr.TransientPoll("check", fmt.Errorf("panic: %v", r))
		}
	}()

	report, err := p.evaluate(p.now())
	if err != nil {
		return apperr.TransientPoll("evaluate", err)
	}
	logger.Info("reminder check finished",
		"as_of", report.AsOf,
		"look_ahead_days", report.LookAheadDays,
		"due", len(report.Items),
		"expired", report.Count(Expired),
	)
	p.present.Present(report)
	return nil
}
