package service

import (
	"context"
	"sync"

	"mynaming/domain"
	"mynaming/helpers"
	"mynaming/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// memoryServiceInfoCache keeps the latest snapshot per service key in memory. A snapshot older than the
// cached one (by LastRefTime) is ignored, so a late subscribe reply never overwrites a newer push.
type memoryServiceInfoCache struct {
	mu       sync.RWMutex
	services map[string]domain.Service
	logger   log.Logger
}

// NewMemoryServiceInfoCache creates an empty in-memory cache. Panics on nil logger.
//
// Called from cmd/main when no Redis cache is configured, and from tests.
func NewMemoryServiceInfoCache(logger log.Logger) interfaces.ServiceInfoCache {
	return &memoryServiceInfoCache{
		services: make(map[string]domain.Service),
		logger:   log.With(helpers.NilPanic(logger, "service.service_info_cache.go: logger is required"), "component", "service_cache"),
	}
}

func (c *memoryServiceInfoCache) ProcessService(_ context.Context, service domain.Service) error {
	key := service.Key()
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.services[key]; ok && service.LastRefTime < old.LastRefTime {
		level.Debug(c.logger).Log("msg", "stale service snapshot ignored", "service", key, "last_ref_time", service.LastRefTime, "cached", old.LastRefTime)
		return nil
	}
	service.Hosts = domain.CloneInstances(service.Hosts)
	c.services[key] = service
	return nil
}

func (c *memoryServiceInfoCache) GetService(_ context.Context, groupedName, clusters string) (domain.Service, bool, error) {
	key := groupedName
	if clusters != "" {
		key += domain.GroupSeparator + clusters
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	service, ok := c.services[key]
	if !ok {
		return domain.Service{}, false, nil
	}
	service.Hosts = domain.CloneInstances(service.Hosts)
	return service, true, nil
}
