package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tiffinbox/tiffin/pkg/queue"
)

var (
	echoCalls atomic.Int32
	failCalls atomic.Int32
	lastEcho  atomic.Value
)

type echoJob struct {
	Val string `json:"val"`
}

func (j *echoJob) Handle(context.Context) error {
	echoCalls.Add(1)
	lastEcho.Store(j.Val)
	return nil
}

type failJob struct {
	Order uint64 `json:"order"`
}

func (j *failJob) Handle(context.Context) error {
	failCalls.Add(1)
	return errors.New("smtp: connection refused")
}

func init() {
	queue.Register("*queue_test.echoJob", func() queue.Job { return &echoJob{} })
	queue.Register("*queue_test.failJob", func() queue.Job { return &failJob{} })
	queue.SetBackoff(func(int) time.Duration { return 10 * time.Millisecond })

	queue.StartWorkers(context.Background(), 2)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatchRoundTripsPayload(t *testing.T) {
	before := echoCalls.Load()
	if err := queue.Dispatch(&echoJob{Val: "order.created"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	eventually(t, func() bool { return echoCalls.Load() > before })
	if got, _ := lastEcho.Load().(string); got != "order.created" {
		t.Errorf("expected payload to survive encoding, got %q", got)
	}
}

func TestFailedJobIsRetriedThenRecorded(t *testing.T) {
	queue.SetMaxRetry(2)
	defer queue.SetMaxRetry(3)

	before := failCalls.Load()
	if err := queue.Dispatch(&failJob{Order: 7}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	eventually(t, func() bool {
		for _, f := range queue.FailedJobs() {
			if j, ok := f.Job.(*failJob); ok && j.Order == 7 {
				return true
			}
		}
		return false
	})
	if got := failCalls.Load() - before; got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestDispatchAfterWaits(t *testing.T) {
	before := echoCalls.Load()
	if err := queue.DispatchAfter(&echoJob{Val: "later"}, 100*time.Millisecond); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if echoCalls.Load() != before {
		t.Error("job ran before its delay")
	}
	eventually(t, func() bool { return echoCalls.Load() > before })
}

func TestMemoryDriverPopHonoursContext(t *testing.T) {
	d := queue.NewMemoryDriver()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := d.Pop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	_ = d.Push([]byte("x"))
	if d.Len() != 1 {
		t.Errorf("expected 1 queued, got %d", d.Len())
	}
}
