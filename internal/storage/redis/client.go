package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client holds the session store connection.
type Client struct {
	*redis.Client
}

func NewClient(addr, password string, db int) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
	}
}

// MustConnect creates a client and fails fast if the server is unreachable.
func MustConnect(ctx context.Context, addr, password string, db int) *Client {
	c := NewClient(addr, password, db)
	if err := c.HealthCheck(ctx); err != nil {
		panic(fmt.Sprintf("redis %s: %v", addr, err))
	}

	return c
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
