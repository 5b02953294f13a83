// Package cache fronts user reads with Redis. A cache outage degrades to
// plain DB reads; it never fails a request.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/MatviieshynO/auth-service/internal/domain/user"
	"github.com/redis/go-redis/v9"
)

const listKey = "users:all"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Users struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUsers(cfg Config) *Users {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Users{rdb: rdb, ttl: cfg.TTL}
}

func (c *Users) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Users) Close() error {
	return c.rdb.Close()
}

func userKey(id int64) string {
	return "users:id:" + strconv.FormatInt(id, 10)
}

func (c *Users) GetProjection(ctx context.Context, id int64) (user.Projection, bool) {
	raw, err := c.rdb.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		return user.Projection{}, false
	}

	var p user.Projection
	if err := json.Unmarshal(raw, &p); err != nil {
		return user.Projection{}, false
	}

	return p, true
}

func (c *Users) SetProjection(ctx context.Context, p user.Projection) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}

	_ = c.rdb.Set(ctx, userKey(p.ID), raw, c.ttl).Err()
}

func (c *Users) GetList(ctx context.Context) ([]user.Projection, bool) {
	raw, err := c.rdb.Get(ctx, listKey).Bytes()
	if err != nil {
		return nil, false
	}

	var ps []user.Projection
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, false
	}

	return ps, true
}

func (c *Users) SetList(ctx context.Context, ps []user.Projection) {
	raw, err := json.Marshal(ps)
	if err != nil {
		return
	}

	_ = c.rdb.Set(ctx, listKey, raw, c.ttl).Err()
}

// Invalidate drops the per-user entry and the list entry. Called on every
// write so reads never serve a stale projection past one write.
func (c *Users) Invalidate(ctx context.Context, id int64) {
	_ = c.rdb.Del(ctx, userKey(id), listKey).Err()
}

func (c *Users) InvalidateList(ctx context.Context) {
	_ = c.rdb.Del(ctx, listKey).Err()
}
