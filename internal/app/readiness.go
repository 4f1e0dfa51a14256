package app

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/job-matcher/internal/adapter/httpserver"
)

// Pinger is the minimal interface for a dependency capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

type redisPinger struct{ rdb goredis.UniversalClient }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

// RedisPinger adapts a go-redis client to Pinger. A nil client yields nil.
func RedisPinger(rdb goredis.UniversalClient) Pinger {
	if rdb == nil {
		return nil
	}
	return redisPinger{rdb: rdb}
}

// BuildReadinessChecks returns the db, redis and qdrant checks served by /readyz.
func BuildReadinessChecks(db, redis, qdrant Pinger) map[string]httpserver.Check {
	return map[string]httpserver.Check{
		"db":     pingCheck("db", db),
		"redis":  pingCheck("redis", redis),
		"qdrant": pingCheck("qdrant", qdrant),
	}
}

func pingCheck(name string, p Pinger) httpserver.Check {
	return func(ctx context.Context) error {
		if p == nil {
			return errors.New(name + " not configured")
		}
		return p.Ping(ctx)
	}
}
