package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStart_RequiresTask(t *testing.T) {
	s := New(time.Second)
	if err := s.Start(); err == nil {
		t.Fatalf("want error without task")
	}
}

func TestStart_RequiresPositiveInterval(t *testing.T) {
	s := New(0)
	s.SetTask(func(context.Context) error { return nil })
	if err := s.Start(); err == nil {
		t.Fatalf("want error for zero interval")
	}
}

func TestScheduler_RunsTaskUntilStopped(t *testing.T) {
	var calls atomic.Int32
	s := New(time.Second)
	s.SetTask(func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("task errors are logged, not fatal")
	})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("task ran %d times, want at least 2", calls.Load())
		}
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()

	after := calls.Load()
	time.Sleep(1500 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("task ran after stop")
	}
}
