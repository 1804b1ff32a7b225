package reminders

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smith3v/family-medicine-manager/pkg/logger"
)

func quiet(t *testing.T) {
	t.Helper()
	logger.SetLogLevel(logger.ERROR + 1)
	t.Cleanup(func() { logger.SetLogLevel(logger.INFO) })
}

func startPoller(t *testing.T, opts ...Option) (<-chan Report, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	reports := make(chan Report, 16)
	p := NewPoller(PresenterFunc(func(r Report) { reports <- r }), opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return reports, cancel, done
}

func emptyEvaluator(now time.Time) (Report, error) {
	return Report{CheckedAt: now}, nil
}

func expectReport(t *testing.T, reports <-chan Report, within time.Duration, what string) {
	t.Helper()
	select {
	case <-reports:
	case <-time.After(within):
		t.Fatalf("expected %s within %s", what, within)
	}
}

func expectNoReport(t *testing.T, reports <-chan Report, during time.Duration, what string) {
	t.Helper()
	select {
	case <-reports:
		t.Fatalf("unexpected check: %s", what)
	case <-time.After(during):
	}
}

func TestPollerChecksImmediatelyThenEveryInterval(t *testing.T) {
	quiet(t)
	reports, _, _ := startPoller(t,
		WithTick(5*time.Millisecond),
		WithIntervalUnit(40*time.Millisecond),
		WithIntervalSource(func() (int, error) { return 1, nil }),
		WithEvaluator(emptyEvaluator),
	)

	expectReport(t, reports, time.Second, "the initial check")
	for i := 0; i < 3; i++ {
		expectReport(t, reports, time.Second, "a periodic check")
	}
}

func TestPollerObservesIntervalChangeWithinATick(t *testing.T) {
	quiet(t)
	var interval atomic.Int64
	interval.Store(50)

	reports, _, _ := startPoller(t,
		WithTick(5*time.Millisecond),
		WithIntervalUnit(200*time.Millisecond),
		WithIntervalSource(func() (int, error) { return int(interval.Load()), nil }),
		WithEvaluator(emptyEvaluator),
	)

	expectReport(t, reports, time.Second, "the initial check")
	expectNoReport(t, reports, 300*time.Millisecond, "the 10s interval has not elapsed")

	changed := time.Now()
	interval.Store(1)
	expectReport(t, reports, 2*time.Second, "a check after shortening the interval")
	if elapsed := time.Since(changed); elapsed > time.Second {
		t.Fatalf("check fired %s after the change, expected about one tick", elapsed)
	}
}

func TestPollerChecksSoonAfterEarlyIntervalChange(t *testing.T) {
	quiet(t)
	var interval atomic.Int64
	interval.Store(5)

	reports, _, _ := startPoller(t,
		WithTick(5*time.Millisecond),
		WithIntervalUnit(400*time.Millisecond),
		WithIntervalSource(func() (int, error) { return int(interval.Load()), nil }),
		WithEvaluator(emptyEvaluator),
	)

	expectReport(t, reports, time.Second, "the initial check")
	time.Sleep(20 * time.Millisecond)

	changed := time.Now()
	interval.Store(1)
	expectReport(t, reports, time.Second, "a check after shortening the interval")
	if elapsed := time.Since(changed); elapsed > 100*time.Millisecond {
		t.Fatalf("check fired %s after the change, expected within a few 5ms ticks", elapsed)
	}
	expectNoReport(t, reports, 200*time.Millisecond, "the new 400ms interval has not elapsed")
	expectReport(t, reports, time.Second, "a check on the new interval")
}

func TestPollerLengthenedIntervalChecksThenWaits(t *testing.T) {
	quiet(t)
	var interval atomic.Int64
	interval.Store(2)

	reports, _, _ := startPoller(t,
		WithTick(5*time.Millisecond),
		WithIntervalUnit(50*time.Millisecond),
		WithIntervalSource(func() (int, error) { return int(interval.Load()), nil }),
		WithEvaluator(emptyEvaluator),
	)

	expectReport(t, reports, time.Second, "the initial check")
	interval.Store(20)
	expectReport(t, reports, time.Second, "a check on the tick that saw the change")
	expectNoReport(t, reports, 300*time.Millisecond, "the interval was lengthened to 1s")
}

func TestPollerRecoversFromFailures(t *testing.T) {
	quiet(t)
	var calls atomic.Int32
	evaluate := func(now time.Time) (Report, error) {
		switch calls.Add(1) {
		case 1:
			return Report{}, errors.New("database is locked")
		case 2:
			panic("unexpected nil record")
		default:
			return Report{CheckedAt: now}, nil
		}
	}

	reports, _, _ := startPoller(t,
		WithTick(5*time.Millisecond),
		WithIntervalUnit(10*time.Millisecond),
		WithRecovery(20*time.Millisecond),
		WithIntervalSource(func() (int, error) { return 1, nil }),
		WithEvaluator(evaluate),
	)

	expectReport(t, reports, 2*time.Second, "a check after two failed ones")
	if got := calls.Load(); got < 3 {
		t.Fatalf("expected at least 3 evaluations, got %d", got)
	}
}

func TestPollerKeepsIntervalWhenSourceFails(t *testing.T) {
	quiet(t)
	var fail atomic.Bool
	source := func() (int, error) {
		if fail.Load() {
			return 0, errors.New("no such table: settings")
		}
		return 1, nil
	}

	reports, _, _ := startPoller(t,
		WithTick(5*time.Millisecond),
		WithIntervalUnit(30*time.Millisecond),
		WithIntervalSource(source),
		WithEvaluator(emptyEvaluator),
	)

	expectReport(t, reports, time.Second, "the initial check")
	fail.Store(true)
	expectReport(t, reports, time.Second, "a check on the previous interval")
}

func TestPollerStopsOnCancel(t *testing.T) {
	quiet(t)
	reports, cancel, done := startPoller(t,
		WithTick(5*time.Millisecond),
		WithIntervalSource(func() (int, error) { return 60, nil }),
		WithEvaluator(emptyEvaluator),
	)

	expectReport(t, reports, time.Second, "the initial check")
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPollerStopsDuringRecovery(t *testing.T) {
	quiet(t)
	_, cancel, done := startPoller(t,
		WithRecovery(time.Hour),
		WithEvaluator(func(time.Time) (Report, error) { return Report{}, errors.New("disk I/O error") }),
	)

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop while recovering")
	}
}
