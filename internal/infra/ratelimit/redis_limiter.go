// Package ratelimit throttles failed logins.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"tracker/config"
	"tracker/internal/domain/service"
	"tracker/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const keyPrefix = "tracker:login"

// redisLoginLimiter is a fixed-window failure counter. Reaching maxFailures
// inside one window sets a lockout key that blocks the caller until it expires.
type redisLoginLimiter struct {
	client      redis.UniversalClient
	maxFailures int64
	window      time.Duration
	lockout     time.Duration
}

// NewRedisLoginLimiter builds a limiter on an existing client.
func NewRedisLoginLimiter(client redis.UniversalClient, cfg *config.AuthConfig) service.LoginLimiter {
	return &redisLoginLimiter{
		client:      client,
		maxFailures: int64(cfg.LoginMaxFailures),
		window:      cfg.LoginWindow,
		lockout:     cfg.LoginLockout,
	}
}

func (l *redisLoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	locked, err := l.client.Exists(ctx, lockKey(key)).Result()
	if err != nil {
		return true, errors.Wrap(err, "check login lockout")
	}

	return locked == 0, nil
}

func (l *redisLoginLimiter) RecordFailure(ctx context.Context, key string) error {
	failKey := failuresKey(key)

	count, err := l.client.Incr(ctx, failKey).Result()
	if err != nil {
		return errors.Wrap(err, "count failed login")
	}
	if count == 1 {
		if err := l.client.Expire(ctx, failKey, l.window).Err(); err != nil {
			return errors.Wrap(err, "set failure window")
		}
	}
	if count < l.maxFailures {
		return nil
	}

	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, lockKey(key), count, l.lockout)
		pipe.Del(ctx, failKey)

		return nil
	})

	return errors.Wrap(err, "lock out login")
}

func (l *redisLoginLimiter) Reset(ctx context.Context, key string) error {
	return errors.Wrap(l.client.Del(ctx, failuresKey(key), lockKey(key)).Err(), "reset login limiter")
}

// Keys are hashed so emails never land in redis.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}

func failuresKey(key string) string {
	return keyPrefix + ":fail:" + hashKey(key)
}

func lockKey(key string) string {
	return keyPrefix + ":lock:" + hashKey(key)
}

type noopLoginLimiter struct{}

func (noopLoginLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

func (noopLoginLimiter) RecordFailure(context.Context, string) error { return nil }

func (noopLoginLimiter) Reset(context.Context, string) error { return nil }

// NewNoopLoginLimiter never throttles.
func NewNoopLoginLimiter() service.LoginLimiter {
	return noopLoginLimiter{}
}

// LimiterParams holds dependencies for the login limiter, injected by Fx
type LimiterParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewRedisClient builds a client that skips CLIENT SETINFO on connect.
// Servers before 7.2 and miniredis reject that command and fail the connection.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:             cfg.Addr,
		Password:         cfg.Password,
		DB:               cfg.DB,
		DisableIndentity: true,
	})
}

// NewLoginLimiter connects to redis when configured, otherwise throttling is off.
func NewLoginLimiter(params LimiterParams) (service.LoginLimiter, error) {
	redisCfg := params.Config.Redis
	if redisCfg == nil || redisCfg.Addr == "" {
		params.Logger.Info("Redis not configured, login throttling disabled")

		return NewNoopLoginLimiter(), nil
	}

	client := NewRedisClient(redisCfg)

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping redis")
			}
			params.Logger.Info("Redis login limiter connected", slog.String("addr", redisCfg.Addr))

			return nil
		},
		OnStop: func(context.Context) error {
			return errors.WithStack(client.Close())
		},
	})

	return NewRedisLoginLimiter(client, params.Config.Auth), nil
}

// Module provides the login limiter FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewLoginLimiter),
)
