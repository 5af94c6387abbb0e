package shutdown

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"slidedeck/internal/pkg/logger"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  "debug",
		Format: "json",
		Output: io.Discard,
	})
}

func TestNewManagerDefaultsTimeout(t *testing.T) {
	mgr := NewManager(newTestLogger(), 0)
	if mgr.timeout != 30*time.Second {
		t.Errorf("expected default timeout of 30s, got %s", mgr.timeout)
	}
}

func TestShutdownRunsHandlersInReverseOrder(t *testing.T) {
	mgr := NewManager(newTestLogger(), 5*time.Second)

	var order []string
	for _, name := range []string{"store", "watcher", "http-server"} {
		mgr.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := mgr.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "http-server,watcher,store"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected order %s, got %s", want, got)
	}
}

func TestShutdownCollectsErrors(t *testing.T) {
	mgr := NewManager(newTestLogger(), 5*time.Second)

	closed := false
	mgr.RegisterCloser("store", func() error {
		closed = true
		return nil
	})
	mgr.Register("redis", func(ctx context.Context) error {
		return errors.New("connection reset")
	})

	err := mgr.Shutdown()
	if err == nil || !strings.Contains(err.Error(), "redis: connection reset") {
		t.Fatalf("expected joined handler error, got %v", err)
	}
	if !closed {
		t.Error("expected remaining handlers to run after a failure")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	mgr := NewManager(newTestLogger(), 5*time.Second)

	calls := 0
	mgr.RegisterCloser("once", func() error {
		calls++
		return nil
	})

	_ = mgr.Shutdown()
	_ = mgr.Shutdown()

	if calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", calls)
	}
	select {
	case <-mgr.Done():
	default:
		t.Error("expected done channel to be closed")
	}
}

func TestShutdownTimeout(t *testing.T) {
	mgr := NewManager(newTestLogger(), 100*time.Millisecond)

	mgr.Register("skipped", func(ctx context.Context) error { return nil })
	mgr.Register("slow", func(ctx context.Context) error {
		time.Sleep(2 * time.Second)
		return nil
	})

	start := time.Now()
	err := mgr.Shutdown()

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("shutdown took too long: %v", elapsed)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestWaitReturnsOnContextCancel(t *testing.T) {
	mgr := NewManager(newTestLogger(), time.Second)

	ran := false
	mgr.RegisterCloser("hook", func() error {
		ran = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := mgr.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("expected hook to run")
	}
}
