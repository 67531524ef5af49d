package service

import (
	"slices"
	"strings"
	"sync"

	"mynaming/domain"
)

const (
	redoKindRegistration = "registration"
	redoKindSubscription = "subscription"
)

// RedoStore remembers every registration and subscription the client intends to hold so they can be
// replayed after a reconnect. Registrations are keyed by grouped service name, subscriptions by
// grouped name plus clusters. Each mutation stamps the entry with a fresh version from a store-wide
// counter; version-checked updates let an in-flight RPC confirm or remove only the entry it was sent for.
//
// The lock is never held across an RPC: callers snapshot, release, then send.
type RedoStore struct {
	mu            sync.RWMutex
	registrations map[string]*domain.RedoRegistration
	subscriptions map[string]*domain.RedoSubscription
	version       uint64
}

// NewRedoStore creates an empty store.
func NewRedoStore() *RedoStore {
	return &RedoStore{
		registrations: make(map[string]*domain.RedoRegistration),
		subscriptions: make(map[string]*domain.RedoSubscription),
	}
}

func (s *RedoStore) nextVersion() uint64 {
	s.version++
	return s.version
}

// RecordRegistration stores (or replaces) the single-instance registration for key. Idempotent per key.
// Returns the version the caller passes to MarkRegistered once the server accepts the RPC.
func (s *RedoStore) RecordRegistration(key domain.ServiceKey, instance domain.Instance) uint64 {
	return s.recordRegistration(key, []domain.Instance{instance}, false)
}

// RecordBatchRegistration stores (or replaces) a batch registration for key.
func (s *RedoStore) RecordBatchRegistration(key domain.ServiceKey, instances []domain.Instance) uint64 {
	return s.recordRegistration(key, instances, true)
}

func (s *RedoStore) recordRegistration(key domain.ServiceKey, instances []domain.Instance, batch bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.nextVersion()
	s.registrations[key.GroupedName()] = &domain.RedoRegistration{
		Key:       key,
		Instances: domain.CloneInstances(instances),
		Batch:     batch,
		State:     domain.RedoRegistered,
		Version:   v,
	}
	return v
}

// MarkRegistered confirms the registration if it still has the given version and is in REGISTERED state.
func (s *RedoStore) MarkRegistered(key domain.ServiceKey, version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.registrations[key.GroupedName()]
	if !ok || e.Version != version || e.State != domain.RedoRegistered {
		return false
	}
	e.Confirmed = true
	return true
}

// MarkUnregistering flips the registration to UNREGISTERED before the deregister RPC is sent, so a
// replay running concurrently sends a deregister instead of resurrecting the instance.
// Returns the new version and false when nothing is registered under key.
func (s *RedoStore) MarkUnregistering(key domain.ServiceKey) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.registrations[key.GroupedName()]
	if !ok {
		return 0, false
	}
	e.State = domain.RedoUnregistered
	e.Confirmed = false
	e.Version = s.nextVersion()
	return e.Version, true
}

// RestoreRegistered undoes MarkUnregistering after a failed deregister RPC.
func (s *RedoStore) RestoreRegistered(key domain.ServiceKey, version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.registrations[key.GroupedName()]
	if !ok || e.Version != version || e.State != domain.RedoUnregistered {
		return false
	}
	e.State = domain.RedoRegistered
	e.Version = s.nextVersion()
	return true
}

// RemoveRegistrationIfVersion drops the registration only if no newer mutation replaced it.
func (s *RedoStore) RemoveRegistrationIfVersion(key domain.ServiceKey, version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.registrations[key.GroupedName()]
	if !ok || e.Version != version {
		return false
	}
	delete(s.registrations, key.GroupedName())
	return true
}

// RecordUnregistration drops the registration for key unconditionally. No-op when absent.
func (s *RedoStore) RecordUnregistration(key domain.ServiceKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registrations, key.GroupedName())
}

// FindRegistration returns a copy of the registration for key.
func (s *RedoStore) FindRegistration(key domain.ServiceKey) (domain.RedoRegistration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.registrations[key.GroupedName()]
	if !ok {
		return domain.RedoRegistration{}, false
	}
	return copyRegistration(e), true
}

// RecordSubscription stores (or refreshes) the subscription for key and clusters. Idempotent.
func (s *RedoStore) RecordSubscription(key domain.ServiceKey, clusters string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.nextVersion()
	s.subscriptions[domain.RedoSubscriptionKey(key, clusters)] = &domain.RedoSubscription{
		Key:      key,
		Clusters: clusters,
		Version:  v,
	}
	return v
}

// MarkSubscribed confirms the subscription if it still has the given version.
func (s *RedoStore) MarkSubscribed(key domain.ServiceKey, clusters string, version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.subscriptions[domain.RedoSubscriptionKey(key, clusters)]
	if !ok || e.Version != version {
		return false
	}
	e.Confirmed = true
	return true
}

// RemoveSubscription drops the subscription for key and clusters. No-op when absent.
func (s *RedoStore) RemoveSubscription(key domain.ServiceKey, clusters string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscriptions, domain.RedoSubscriptionKey(key, clusters))
}

// FindSubscription returns a copy of the subscription for key and clusters.
func (s *RedoStore) FindSubscription(key domain.ServiceKey, clusters string) (domain.RedoSubscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.subscriptions[domain.RedoSubscriptionKey(key, clusters)]
	if !ok {
		return domain.RedoSubscription{}, false
	}
	return *e, true
}

// MarkAllUnconfirmed clears the confirmed flag of every entry. Called when the connection drops.
func (s *RedoStore) MarkAllUnconfirmed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.registrations {
		e.Confirmed = false
	}
	for _, e := range s.subscriptions {
		e.Confirmed = false
	}
}

// Snapshot returns a deep copy of all entries ordered by key. Later mutations of the store do not affect it.
func (s *RedoStore) Snapshot() domain.RedoSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.RedoSnapshot{
		Registrations: make([]domain.RedoRegistration, 0, len(s.registrations)),
		Subscriptions: make([]domain.RedoSubscription, 0, len(s.subscriptions)),
	}
	for _, e := range s.registrations {
		snap.Registrations = append(snap.Registrations, copyRegistration(e))
	}
	for _, e := range s.subscriptions {
		snap.Subscriptions = append(snap.Subscriptions, *e)
	}
	slices.SortFunc(snap.Registrations, func(a, b domain.RedoRegistration) int {
		return strings.Compare(a.Key.String(), b.Key.String())
	})
	slices.SortFunc(snap.Subscriptions, func(a, b domain.RedoSubscription) int {
		return strings.Compare(a.Key.String()+a.Clusters, b.Key.String()+b.Clusters)
	})
	return snap
}

// Len returns the number of registrations and subscriptions.
func (s *RedoStore) Len() (registrations, subscriptions int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registrations), len(s.subscriptions)
}

func copyRegistration(e *domain.RedoRegistration) domain.RedoRegistration {
	out := *e
	out.Instances = domain.CloneInstances(e.Instances)
	return out
}
