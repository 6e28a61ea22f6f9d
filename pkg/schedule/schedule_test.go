package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalEntryRunsWhenDue(t *testing.T) {
	s := New()
	var runs atomic.Int32
	s.Every(10).Seconds().Name("orders:auto-cancel").Run(func(context.Context) error {
		runs.Add(1)
		return nil
	})

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, s.RunDue(context.Background(), base))
	assert.Equal(t, 0, s.RunDue(context.Background(), base.Add(5*time.Second)))
	assert.Equal(t, 1, s.RunDue(context.Background(), base.Add(10*time.Second)))

	s.wg.Wait()
	assert.Equal(t, int32(2), runs.Load())
}

func TestWithoutOverlappingSkipsBusyEntry(t *testing.T) {
	s := New()
	release := make(chan struct{})
	s.Duration(time.Millisecond).WithoutOverlapping().Run(func(context.Context) error {
		<-release
		return nil
	})

	now := time.Now()
	assert.Equal(t, 1, s.RunDue(context.Background(), now))
	assert.Equal(t, 0, s.RunDue(context.Background(), now.Add(time.Second)))

	close(release)
	s.wg.Wait()
	assert.Equal(t, 1, s.RunDue(context.Background(), now.Add(2*time.Second)))
	s.wg.Wait()
}

func TestCronFiresOncePerMinute(t *testing.T) {
	s := New()
	s.Cron("*/15 3 * * *").Run(func(context.Context) error { return nil })

	at := time.Date(2026, 3, 4, 3, 30, 0, 0, time.UTC)
	assert.Equal(t, 1, s.RunDue(context.Background(), at))
	assert.Equal(t, 0, s.RunDue(context.Background(), at.Add(20*time.Second)))
	assert.Equal(t, 0, s.RunDue(context.Background(), at.Add(time.Minute)))
	s.wg.Wait()
}

func TestMatchCron(t *testing.T) {
	at := time.Date(2026, 3, 4, 3, 30, 0, 0, time.UTC) // Wednesday
	cases := map[string]bool{
		"* * * * *":      true,
		"30 3 * * *":     true,
		"0,30 3 * * 3":   true,
		"0-29 * * * *":   false,
		"*/7 * * * *":    false,
		"30 3 4 3 1-5":   true,
		"bad expression": false,
	}
	for expr, want := range cases {
		assert.Equal(t, want, matchCron(expr, at), expr)
	}
}

func TestStartStopsAndWaits(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond
	var runs atomic.Int32
	s.Every(1).Hours().Run(func(context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	wait := s.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()
	wait()

	assert.Equal(t, int32(1), runs.Load())
	assert.Len(t, s.List(), 1)
}
