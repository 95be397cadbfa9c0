package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/coursetree/internal/clients/redis"
	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/platform/logger"
	"github.com/yungbote/coursetree/internal/platform/neo4jdb"
	"github.com/yungbote/coursetree/internal/platform/runlock"
)

type Clients struct {
	Locker runlock.Locker
	Neo4j  *neo4jdb.Client

	closeLocker func() error
}

func wireClients(ctx context.Context, cfg *config.Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		locker, closeFn, err := redis.NewRunLocker(ctx, cfg.Redis, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis run lock: %w", err)
		}
		c.Locker, c.closeLocker = locker, closeFn
	} else {
		log.Info("REDIS_ADDR not set; using in-process run lock")
		c.Locker = runlock.NewLocal()
	}

	// Neo4j
	graph, err := neo4jdb.NewFromConfig(ctx, cfg.Neo4j, log)
	if err != nil {
		c.close(ctx, log)
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	c.Neo4j = graph
	return c, nil
}

func (c Clients) close(ctx context.Context, log *logger.Logger) {
	if c.closeLocker != nil {
		if err := c.closeLocker(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if err := c.Neo4j.Close(ctx); err != nil {
		log.Warn("neo4j close failed", "error", err)
	}
}
