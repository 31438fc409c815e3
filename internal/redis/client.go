// Package redis holds the shared Redis connection and the generic view
// cache built on it. One client serves both the read-model cache and the
// event streams.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	opTimeout   = 3 * time.Second
	poolSize    = 10
)

// Client wraps the go-redis client so the rest of the codebase takes a
// single connection handle.
type Client struct {
	*redis.Client
}

// NewClient connects and verifies the connection with a ping, so a
// misconfigured address fails at startup instead of on the first request.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
		PoolSize:     poolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{Client: rdb}, nil
}
