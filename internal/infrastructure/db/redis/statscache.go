// Package redis provides the dashboard stats cache and its connection
// bootstrap.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clienttracker/crm-system/internal/core/ports"
)

const (
	statsTTL    = 30 * time.Second
	pingTimeout = 5 * time.Second
)

// Config captures the settings for the Redis-backed cache.
type Config struct {
	Addr string
	DB   int
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// StatsCache stores dashboard stats per visibility scope with a short TTL.
// Key format: dashboard:<scope>. Cache failures are logged and treated as
// misses; the dashboard never depends on Redis being up.
type StatsCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewStatsCache creates a StatsCache wrapping the given Redis client.
func NewStatsCache(client *redis.Client, log zerolog.Logger) *StatsCache {
	return &StatsCache{client: client, log: log}
}

func (c *StatsCache) Get(ctx context.Context, scope string) (*ports.DashboardStats, bool) {
	raw, err := c.client.Get(ctx, c.key(scope)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("scope", scope).Msg("stats cache read failed")
		}
		return nil, false
	}

	var stats ports.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.log.Warn().Err(err).Str("scope", scope).Msg("stats cache entry corrupt")
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, scope string, stats *ports.DashboardStats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(scope), raw, statsTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("scope", scope).Msg("stats cache write failed")
	}
}

func (c *StatsCache) key(scope string) string {
	return "dashboard:" + scope
}
