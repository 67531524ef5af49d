package interfaces

import (
	"context"

	"mynaming/domain"
)

// ServiceInfoCache is the local cache of resolved services used for read-side queries.
// Subscribe results and server pushes are written into it.
//
// Implemented by service.memoryServiceInfoCache and adapters/myredis.ServiceCache.
//
//go:generate moq -stub -out mock/service_info_cache.go -pkg mock . ServiceInfoCache
type ServiceInfoCache interface {
	// ProcessService stores service under service.Key(), replacing an older snapshot.
	// Snapshots with LastRefTime older than the cached one are ignored.
	ProcessService(ctx context.Context, service domain.Service) error

	// GetService returns the cached snapshot for the grouped name and clusters.
	// Returns: (service, true, nil) on hit; (zero, false, nil) on miss; (zero, false, err) on storage failure.
	GetService(ctx context.Context, groupedName, clusters string) (domain.Service, bool, error)
}
