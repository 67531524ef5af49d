package myredis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mynaming/domain"
	"mynaming/helpers"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
)

// DefaultPrefix is the key prefix of cached services.
const DefaultPrefix = "naming_service"

// maxWatchRetries bounds optimistic retries when another writer touches the same key.
const maxWatchRetries = 5

// ServiceCache stores service snapshots in Redis as JSON under "<prefix>:<service key>".
// Writes are WATCH-guarded so a snapshot with an older LastRefTime never replaces a newer one,
// also when several clients share the cache.
type ServiceCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger log.Logger
}

// NewServiceCache creates the Redis service info cache. Panics on nil client or logger.
//
// Parameters: client - redis client (NewRedisUniversalClient); prefix - key prefix (DefaultPrefix when empty); ttl - key expiry (0 keeps keys forever); logger - logger.
//
// Called from cmd/main when redis.addr is configured.
func NewServiceCache(client redis.UniversalClient, prefix string, ttl time.Duration, logger log.Logger) *ServiceCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ServiceCache{
		client: helpers.NilPanic(client, "myredis.service_cache.go: redis client is required"),
		prefix: prefix,
		ttl:    ttl,
		logger: log.With(helpers.NilPanic(logger, "myredis.service_cache.go: logger is required"), "component", "redis_service_cache"),
	}
}

func (c *ServiceCache) ProcessService(ctx context.Context, service domain.Service) error {
	key := c.generateKey(service.Key())
	data, err := json.Marshal(service)
	if err != nil {
		return fmt.Errorf("can't marshal service %s, err: %w", service.Key(), err)
	}

	stale := false
	txf := func(tx *redis.Tx) error {
		cached, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var old domain.Service
			if json.Unmarshal(cached, &old) == nil && service.LastRefTime < old.LastRefTime {
				stale = true
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err = c.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("can't write service to redis (key='%s'), err: %w", key, err)
		}
		if stale {
			level.Debug(c.logger).Log("msg", "stale service snapshot ignored", "service", service.Key(), "last_ref_time", service.LastRefTime)
		}
		return nil
	}
	return fmt.Errorf("can't write service to redis (key='%s'), err: %w", key, err)
}

func (c *ServiceCache) GetService(ctx context.Context, groupedName, clusters string) (domain.Service, bool, error) {
	key := groupedName
	if clusters != "" {
		key += domain.GroupSeparator + clusters
	}
	data, err := c.client.Get(ctx, c.generateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Service{}, false, nil
	}
	if err != nil {
		return domain.Service{}, false, fmt.Errorf("can't read service from redis (key='%s'), err: %w", key, err)
	}
	var service domain.Service
	if err := json.Unmarshal(data, &service); err != nil {
		level.Warn(c.logger).Log("msg", "malformed cached service dropped", "service", key, "err", err)
		return domain.Service{}, false, nil
	}
	return service, true, nil
}

func (c *ServiceCache) generateKey(key string) string {
	return c.prefix + ":" + key
}
