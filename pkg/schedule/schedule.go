// Package schedule runs recurring background tasks such as the order
// auto-cancel sweep.
//
//	schedule.Every(10).Seconds().Name("orders:auto-cancel").WithoutOverlapping().Run(sweep)
//	schedule.Cron("0 3 * * *").Name("reports:nightly").Run(report)
//
//	wait := schedule.Start(ctx)
//	<-ctx.Done()
//	wait()
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tiffinbox/tiffin/pkg/logger"
)

// Task is one run of a scheduled job.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	cronExpr  string
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler owns a set of entries and the loop that dispatches them.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
	wg      sync.WaitGroup
}

// New returns a scheduler that checks its entries every second.
func New() *Scheduler { return &Scheduler{tick: time.Second} }

// Schedule is a fluent builder for one entry.
type Schedule struct {
	s *Scheduler
	e *entry
}

type FreqBuilder struct {
	s *Scheduler
	n int
}

func (s *Scheduler) Every(n int) *FreqBuilder { return &FreqBuilder{s: s, n: n} }

func (s *Scheduler) EveryMinute() *Schedule { return s.Every(1).Minutes() }

func (s *Scheduler) Hourly() *Schedule { return s.Every(1).Hours() }

func (s *Scheduler) Daily() *Schedule { return s.Every(24).Hours() }

// Cron schedules with a 5-field expression (minute hour dom month dow).
// Each field is *, n, */step, a-b or a comma list of those.
func (s *Scheduler) Cron(expr string) *Schedule {
	return &Schedule{s: s, e: &entry{cronExpr: expr}}
}

func (f *FreqBuilder) every(unit time.Duration) *Schedule {
	return &Schedule{s: f.s, e: &entry{interval: time.Duration(f.n) * unit}}
}

func (f *FreqBuilder) Seconds() *Schedule { return f.every(time.Second) }
func (f *FreqBuilder) Minutes() *Schedule { return f.every(time.Minute) }
func (f *FreqBuilder) Hours() *Schedule   { return f.every(time.Hour) }

// Duration schedules with an arbitrary interval.
func (s *Scheduler) Duration(d time.Duration) *Schedule {
	return &Schedule{s: s, e: &entry{interval: d}}
}

// WithoutOverlapping skips a run while the previous one is still executing.
func (sc *Schedule) WithoutOverlapping() *Schedule {
	sc.e.noOverlap = true
	return sc
}

func (sc *Schedule) Name(id string) *Schedule {
	sc.e.id = id
	return sc
}

// Run registers fn.
func (sc *Schedule) Run(fn Task) {
	sc.e.task = fn
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if sc.e.id == "" {
		sc.e.id = fmt.Sprintf("task-%d", len(sc.s.entries)+1)
	}
	sc.s.entries = append(sc.s.entries, sc.e)
}

// Start runs the dispatch loop until ctx is cancelled. The returned wait
// blocks until the loop and every in-flight task have returned.
func (s *Scheduler) Start(ctx context.Context) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		logger.Info("schedule: started", "entries", len(s.List()))
		for {
			select {
			case <-ctx.Done():
				logger.Info("schedule: stopped")
				return
			case now := <-ticker.C:
				s.RunDue(ctx, now)
			}
		}
	}()

	return func() {
		<-done
		s.wg.Wait()
	}
}

// RunDue dispatches every entry due at now and returns how many started.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	current := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	started := 0
	for _, e := range current {
		if s.dispatch(ctx, e, now) {
			started++
		}
	}
	return started
}

// List describes every registered entry.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := e.cronExpr
		if freq == "" {
			freq = "every " + e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, freq))
	}
	return out
}

func (e *entry) due(now time.Time) bool {
	if e.cronExpr != "" {
		// Cron entries fire at most once per matching minute.
		if !e.lastRun.IsZero() && e.lastRun.Truncate(time.Minute).Equal(now.Truncate(time.Minute)) {
			return false
		}
		return matchCron(e.cronExpr, now)
	}
	return e.lastRun.IsZero() || now.Sub(e.lastRun) >= e.interval
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) bool {
	e.mu.Lock()
	if !e.due(now) {
		e.mu.Unlock()
		return false
	}
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping run", "id", e.id)
		return false
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", fmt.Sprint(r))
			}
		}()

		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "id", e.id, "error", err)
			return
		}
		logger.Debug("schedule: task done", "id", e.id, "duration", time.Since(start))
	}()
	return true
}

func matchCron(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	values := []int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, values[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, val int) bool {
	for _, part := range strings.Split(field, ",") {
		if matchPart(part, val) {
			return true
		}
	}
	return false
}

func matchPart(part string, val int) bool {
	switch {
	case part == "*":
		return true
	case strings.HasPrefix(part, "*/"):
		step, err := strconv.Atoi(part[2:])
		return err == nil && step > 0 && val%step == 0
	case strings.Contains(part, "-"):
		lo, hi, _ := strings.Cut(part, "-")
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		return err1 == nil && err2 == nil && val >= a && val <= b
	default:
		n, err := strconv.Atoi(part)
		return err == nil && n == val
	}
}

var std = New()

// Default is the process-wide scheduler the package functions use.
func Default() *Scheduler { return std }

func Every(n int) *FreqBuilder           { return std.Every(n) }
func EveryMinute() *Schedule             { return std.EveryMinute() }
func Hourly() *Schedule                  { return std.Hourly() }
func Daily() *Schedule                   { return std.Daily() }
func Cron(expr string) *Schedule         { return std.Cron(expr) }
func Duration(d time.Duration) *Schedule { return std.Duration(d) }
func Start(ctx context.Context) func()   { return std.Start(ctx) }
func List() []string                     { return std.List() }
