package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/platform/logger"
	"github.com/yungbote/coursetree/internal/platform/runlock"
)

// delete only when the stored token is ours
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// push the expiry out only while the stored token is ours
var extendScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type runLocker struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRunLocker connects to Redis and returns a cross-process run lock.
func NewRunLocker(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (runlock.Locker, func() error, error) {
	if log == nil {
		return nil, nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil, fmt.Errorf("missing redis addr")
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	l := &runLocker{log: log.With("service", "RedisRunLock"), rdb: rdb, ttl: ttl}
	return l, rdb.Close, nil
}

// Acquire takes the lock for key. The TTL bounds how long a crashed run
// keeps the key; while the holder is alive a heartbeat renews it every
// third of the TTL, so a long ingest does not lose the lock mid-write.
func (l *runLocker) Acquire(ctx context.Context, key string) (runlock.Release, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return nil, runlock.ErrLocked
	}
	l.log.Debug("run lock acquired", "key", key, "ttl", l.ttl)

	stop := heartbeat(l.ttl/3, func(hctx context.Context) (bool, error) {
		n, err := extendScript.Run(hctx, l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int64()
		return n == 1, err
	}, func(err error) {
		if err != nil {
			l.log.Warn("run lock renewal failed", "key", key, "error", err)
			return
		}
		l.log.Warn("run lock lost before release", "key", key)
	})

	var once sync.Once
	var rerr error
	return func(rctx context.Context) error {
		once.Do(func() {
			stop()
			if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil && err != goredis.Nil {
				l.log.Warn("run lock release failed", "key", key, "error", err)
				rerr = err
			}
		})
		return rerr
	}, nil
}

// heartbeat calls extend every interval until the returned stop func runs.
// It gives up after the first failed or refused renewal and reports it to
// lost. stop waits for the loop to exit.
func heartbeat(every time.Duration, extend func(context.Context) (bool, error), lost func(error)) func() {
	if every <= 0 {
		every = time.Second
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	var stopOnce sync.Once

	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				hctx, cancel := context.WithTimeout(context.Background(), every)
				ok, err := extend(hctx)
				cancel()
				if err != nil || !ok {
					lost(err)
					return
				}
			}
		}
	}()

	return func() {
		stopOnce.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
