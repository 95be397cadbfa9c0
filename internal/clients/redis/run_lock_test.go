package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

func TestNewRunLocker_RequiresAddr(t *testing.T) {
	if _, _, err := NewRunLocker(context.Background(), config.RedisConfig{}, logger.Nop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, _, err := NewRunLocker(context.Background(), config.RedisConfig{Addr: "x:1"}, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestHeartbeat_RenewsUntilStopped(t *testing.T) {
	var calls atomic.Int32
	stop := heartbeat(5*time.Millisecond, func(context.Context) (bool, error) {
		calls.Add(1)
		return true, nil
	}, func(err error) {
		t.Errorf("unexpected loss: %v", err)
	})

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()
	stop()
	n := calls.Load()
	if n < 3 {
		t.Fatalf("renewals = %d", n)
	}
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != n {
		t.Fatalf("renewed after stop")
	}
}

func TestHeartbeat_StopsWhenLockLost(t *testing.T) {
	for name, result := range map[string]struct {
		ok  bool
		err error
	}{
		"refused": {false, nil},
		"error":   {false, errors.New("connection reset")},
	} {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			lost := make(chan error, 1)
			stop := heartbeat(5*time.Millisecond, func(context.Context) (bool, error) {
				calls.Add(1)
				return result.ok, result.err
			}, func(err error) { lost <- err })
			defer stop()

			select {
			case err := <-lost:
				if err != result.err {
					t.Fatalf("lost err = %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("loss not reported")
			}
			time.Sleep(20 * time.Millisecond)
			if n := calls.Load(); n != 1 {
				t.Fatalf("renewals after loss = %d", n)
			}
		})
	}
}
