package runlock

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrLocked reports that another run holds the lock for the same key.
var ErrLocked = errors.New("runlock: already held")

// Release frees a held lock. It is safe to call more than once.
type Release func(ctx context.Context) error

type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Key namespaces a course slug.
func Key(slug string) string {
	return "coursetree:ingest:" + strings.ToLower(strings.TrimSpace(slug))
}

type local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal returns a process-local locker, used when no Redis is configured.
func NewLocal() Locker {
	return &local{held: map[string]struct{}{}}
}

func (l *local) Acquire(ctx context.Context, key string) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
