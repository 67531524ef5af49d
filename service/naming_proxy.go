package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mynaming/domain"
	"mynaming/helpers"
	"mynaming/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Defaults applied by NewNamingProxy to a zero ProxyConfig.
const (
	DefaultRequestTimeout  = 3 * time.Second
	DefaultRedoConcurrency = 4
	DefaultPageNo          = 1
	DefaultPageSize        = 10
)

// ProxyConfig holds the per-client settings of a NamingProxy.
type ProxyConfig struct {
	// Namespace every request is sent under (DefaultNamespace when empty).
	Namespace string
	// AppName is sent in the "app" header of subscribe requests.
	AppName string
	// RequestTimeout bounds each RPC.
	RequestTimeout time.Duration
	// RedoConcurrency bounds the replay RPCs in flight after a reconnect.
	RedoConcurrency int
}

// NamingProxy is the client side of the naming service: register, deregister, list, subscribe and
// unsubscribe, each sent as a signed request over the transport. Every registration and subscription
// is remembered in a RedoStore and replayed by a RecoveryDriver when the transport reconnects.
// Safe for concurrent use.
type NamingProxy struct {
	cfg       ProxyConfig
	transport interfaces.Transport
	requester *Requester
	store     *RedoStore
	driver    *RecoveryDriver
	cache     interfaces.ServiceInfoCache
	logger    log.Logger
	metrics   *Metrics

	closed             atomic.Bool
	mu                 sync.Mutex
	started            bool
	unregisterListener func()
}

// NewNamingProxy wires the requester, redo store and recovery driver around transport. Panics on nil dependencies (fail-fast at startup).
//
// Parameters: cfg - namespace, app name, timeout and replay concurrency (zero values get defaults); transport - RPC channel; credentials - access keys for request signing; cache - destination of subscribe results and pushes; timeProvider - clock for signing; logger - logger; metrics - Prometheus collectors.
//
// Returns: *NamingProxy (not started; call Start).
//
// Called from cmd/main.
func NewNamingProxy(
	cfg ProxyConfig,
	transport interfaces.Transport,
	credentials interfaces.CredentialsProvider,
	cache interfaces.ServiceInfoCache,
	timeProvider interfaces.TimeProvider,
	logger log.Logger,
	metrics *Metrics,
) *NamingProxy {
	transport = helpers.NilPanic(transport, "service.naming_proxy.go: transport is required")
	credentials = helpers.NilPanic(credentials, "service.naming_proxy.go: credentials provider is required")
	cache = helpers.NilPanic(cache, "service.naming_proxy.go: service info cache is required")
	timeProvider = helpers.NilPanic(timeProvider, "service.naming_proxy.go: time provider is required")
	logger = helpers.NilPanic(logger, "service.naming_proxy.go: logger is required")
	metrics = helpers.NilPanic(metrics, "service.naming_proxy.go: metrics is required")

	if cfg.Namespace == "" {
		cfg.Namespace = domain.DefaultNamespace
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.RedoConcurrency <= 0 {
		cfg.RedoConcurrency = DefaultRedoConcurrency
	}

	p := &NamingProxy{
		cfg:       cfg,
		transport: transport,
		requester: NewRequester(transport, credentials, timeProvider, cfg.RequestTimeout, logger, metrics),
		store:     NewRedoStore(),
		cache:     cache,
		logger:    log.With(logger, "component", "naming_proxy", "namespace", cfg.Namespace),
		metrics:   metrics,
	}
	p.driver = NewRecoveryDriver(p.store, p, cfg.RedoConcurrency, logger, metrics)
	return p
}

// Start registers the push handler and the connection listener, starts the transport and then the recovery driver.
// Calling Start twice is a no-op. A failed Start can be retried.
//
// Parameters: ctx - startup context; its values (not its cancellation) are inherited by the recovery driver.
//
// Returns: nil or the transport start error (the proxy is left unstarted); ErrClientClosed wrapped in a NamingError after Close.
//
// Called from cmd/main.
func (p *NamingProxy) Start(ctx context.Context) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	p.transport.RegisterServerPushHandler(domain.RequestTypeNotifySubscriber, NewNotifySubscriberHandler(p.cache, p.logger))
	unregister := p.transport.RegisterConnectionListener(p.driver)
	if err := p.transport.Start(ctx); err != nil {
		if unregister != nil {
			unregister()
		}
		level.Error(p.logger).Log("msg", "failed to start transport", "err", err)
		return NewRemoteError(CodeServerError, "start transport failed", err)
	}
	// events raised by the transport before this point wait in the driver queue
	p.driver.Start(context.WithoutCancel(ctx))
	p.unregisterListener = unregister
	p.started = true
	level.Info(p.logger).Log("msg", "naming proxy started")
	return nil
}

// RegisterInstance registers instance under serviceName/groupName and remembers it for replay.
//
// Returns: (server success flag, nil) or (false, *NamingError). The redo entry is kept on failure.
func (p *NamingProxy) RegisterInstance(ctx context.Context, serviceName, groupName string, instance domain.Instance) (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	if err := checkServiceName(serviceName); err != nil {
		return false, err
	}
	key := p.key(serviceName, groupName)
	level.Info(p.logger).Log("msg", "register instance", "service", key.GroupedName(), "instance", instance.Address())

	version := p.store.RecordRegistration(key, instance)
	p.syncRedoGauge()
	resp, err := requestAs[domain.InstanceResponse](ctx, p.requester, domain.NewInstanceRequest(key, domain.OpRegisterInstance, instance))
	if err != nil {
		return false, err
	}
	if resp.IsSuccess() {
		p.store.MarkRegistered(key, version)
	}
	return resp.IsSuccess(), nil
}

// BatchRegisterInstance registers instances as one batch, replacing any previous registration of the service.
//
// Returns: (server success flag, nil) or (false, *NamingError). The redo entry is kept on failure.
func (p *NamingProxy) BatchRegisterInstance(ctx context.Context, serviceName, groupName string, instances []domain.Instance) (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	if err := checkServiceName(serviceName); err != nil {
		return false, err
	}
	if len(instances) == 0 {
		return false, NewApplicationError(CodeClientInvalidParam, "batch register needs at least one instance")
	}
	key := p.key(serviceName, groupName)
	level.Info(p.logger).Log("msg", "batch register instance", "service", key.GroupedName(), "instances", len(instances))

	version := p.store.RecordBatchRegistration(key, instances)
	p.syncRedoGauge()
	resp, err := requestAs[domain.BatchInstanceResponse](ctx, p.requester, domain.NewBatchInstanceRequest(key, instances))
	if err != nil {
		return false, err
	}
	if resp.IsSuccess() {
		p.store.MarkRegistered(key, version)
	}
	return resp.IsSuccess(), nil
}

// DeregisterInstance deregisters instance. The redo entry is flagged as unregistering first, removed
// once the server confirms and restored when the RPC fails.
//
// Returns: (server success flag, nil) or (false, *NamingError).
func (p *NamingProxy) DeregisterInstance(ctx context.Context, serviceName, groupName string, instance domain.Instance) (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	if err := checkServiceName(serviceName); err != nil {
		return false, err
	}
	key := p.key(serviceName, groupName)
	level.Info(p.logger).Log("msg", "deregister instance", "service", key.GroupedName(), "instance", instance.Address())

	version, tracked := p.store.MarkUnregistering(key)
	resp, err := requestAs[domain.InstanceResponse](ctx, p.requester, domain.NewInstanceRequest(key, domain.OpDeregisterInstance, instance))
	switch {
	case !tracked:
	case err == nil && resp.IsSuccess():
		p.store.RemoveRegistrationIfVersion(key, version)
	default:
		p.store.RestoreRegistered(key, version)
	}
	p.syncRedoGauge()
	if err != nil {
		return false, err
	}
	return resp.IsSuccess(), nil
}

// ListServices returns one page of service names of param.Namespace/param.GroupName. Blank fields fall back to
// the proxy namespace, DefaultGroup, DefaultPageNo and DefaultPageSize.
//
// Returns: (ServiceList, nil) or (zero, *NamingError).
func (p *NamingProxy) ListServices(ctx context.Context, param domain.ListServiceParam) (domain.ServiceList, error) {
	if err := p.checkOpen(); err != nil {
		return domain.ServiceList{}, err
	}
	if param.Namespace == "" {
		param.Namespace = p.cfg.Namespace
	}
	if param.GroupName == "" {
		param.GroupName = domain.DefaultGroup
	}
	if param.PageNo <= 0 {
		param.PageNo = DefaultPageNo
	}
	if param.PageSize <= 0 {
		param.PageSize = DefaultPageSize
	}
	level.Info(p.logger).Log("msg", "list services", "group", param.GroupName, "page_no", param.PageNo, "page_size", param.PageSize)

	req := domain.NewServiceListRequest(param.Namespace, param.GroupName, param.PageNo, param.PageSize)
	resp, err := requestAs[domain.ServiceListResponse](ctx, p.requester, req)
	if err != nil {
		return domain.ServiceList{}, err
	}
	return domain.ServiceList{Count: resp.Count, Services: resp.ServiceNames}, nil
}

// Subscribe subscribes to serviceName/groupName restricted to clusters (comma separated, may be empty)
// and stores the resolved snapshot in the service info cache.
//
// Returns: (snapshot, nil) on success; (nil, nil) when the server answers success=false (logged);
// (nil, *NamingError) on any other failure. The redo entry is kept in every case.
func (p *NamingProxy) Subscribe(ctx context.Context, serviceName, groupName, clusters string) (*domain.Service, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	if err := checkServiceName(serviceName); err != nil {
		return nil, err
	}
	key := p.key(serviceName, groupName)
	level.Info(p.logger).Log("msg", "subscribe", "service", key.GroupedName(), "clusters", clusters)

	version := p.store.RecordSubscription(key, clusters)
	p.syncRedoGauge()
	resp, err := p.subscribe(ctx, key, clusters, true)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		level.Error(p.logger).Log("msg", "subscribe not accepted", "service", key.GroupedName(), "clusters", clusters, "code", resp.ErrorCode, "message", resp.Message)
		return nil, nil
	}
	p.store.MarkSubscribed(key, clusters, version)
	service := resp.ServiceInfo
	p.processService(ctx, service)
	return &service, nil
}

// Unsubscribe drops the subscription from the redo store and tells the server.
//
// Returns: nil or *NamingError.
func (p *NamingProxy) Unsubscribe(ctx context.Context, serviceName, groupName, clusters string) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	if err := checkServiceName(serviceName); err != nil {
		return err
	}
	key := p.key(serviceName, groupName)
	level.Info(p.logger).Log("msg", "unsubscribe", "service", key.GroupedName(), "clusters", clusters)

	p.store.RemoveSubscription(key, clusters)
	p.syncRedoGauge()
	_, err := p.subscribe(ctx, key, clusters, false)
	return err
}

// ServerHealth reports whether the transport is running and connected.
func (p *NamingProxy) ServerHealth() bool {
	return !p.closed.Load() && p.transport.IsRunning()
}

// Close stops the recovery driver and shuts the transport down. Operations after Close fail with ErrClientClosed. Idempotent.
func (p *NamingProxy) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.mu.Lock()
	unregister := p.unregisterListener
	p.unregisterListener = nil
	p.mu.Unlock()
	if unregister != nil {
		unregister()
	}
	p.driver.Stop()
	level.Info(p.logger).Log("msg", "naming proxy closing")
	if err := p.transport.Shutdown(); err != nil {
		level.Error(p.logger).Log("msg", "failed to shutdown transport", "err", err)
		return err
	}
	return nil
}

// Store exposes the redo store for diagnostics.
func (p *NamingProxy) Store() *RedoStore {
	return p.store
}

// redoRegistration re-sends one registration during replay. An UNREGISTERED entry is re-sent as a
// deregister and removed on success. A register whose entry was deregistered meanwhile is compensated
// with a deregister so the server does not keep a stale instance.
func (p *NamingProxy) redoRegistration(ctx context.Context, reg domain.RedoRegistration) error {
	if reg.State == domain.RedoUnregistered {
		if err := p.sendDeregister(ctx, reg); err != nil {
			return err
		}
		p.store.RemoveRegistrationIfVersion(reg.Key, reg.Version)
		return nil
	}

	var env domain.ResponseEnvelope
	var err error
	if reg.Batch {
		var resp domain.BatchInstanceResponse
		resp, err = requestAs[domain.BatchInstanceResponse](ctx, p.requester, domain.NewBatchInstanceRequest(reg.Key, reg.Instances))
		env = resp.Envelope()
	} else {
		var resp domain.InstanceResponse
		resp, err = requestAs[domain.InstanceResponse](ctx, p.requester, domain.NewInstanceRequest(reg.Key, domain.OpRegisterInstance, reg.Instance()))
		env = resp.Envelope()
	}
	if err != nil {
		return err
	}
	if !env.IsSuccess() {
		return NewApplicationError(env.ErrorCode, "register not accepted: "+env.Message)
	}
	if p.store.MarkRegistered(reg.Key, reg.Version) {
		return nil
	}
	if cur, ok := p.store.FindRegistration(reg.Key); ok && cur.State == domain.RedoRegistered {
		return nil
	}
	level.Warn(p.logger).Log("msg", "registration withdrawn during replay, deregistering", "service", reg.Key.GroupedName())
	return p.sendDeregister(ctx, reg)
}

func (p *NamingProxy) sendDeregister(ctx context.Context, reg domain.RedoRegistration) error {
	resp, err := requestAs[domain.InstanceResponse](ctx, p.requester, domain.NewInstanceRequest(reg.Key, domain.OpDeregisterInstance, reg.Instance()))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return NewApplicationError(resp.ErrorCode, "deregister not accepted: "+resp.Message)
	}
	return nil
}

// redoSubscription re-sends one subscription during replay, compensating with an unsubscribe when the
// subscription was removed while the request was in flight.
func (p *NamingProxy) redoSubscription(ctx context.Context, sub domain.RedoSubscription) error {
	resp, err := p.subscribe(ctx, sub.Key, sub.Clusters, true)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return NewApplicationError(resp.ErrorCode, "subscribe not accepted: "+resp.Message)
	}
	if p.store.MarkSubscribed(sub.Key, sub.Clusters, sub.Version) {
		p.processService(ctx, resp.ServiceInfo)
		return nil
	}
	if _, ok := p.store.FindSubscription(sub.Key, sub.Clusters); ok {
		return nil
	}
	level.Warn(p.logger).Log("msg", "subscription withdrawn during replay, unsubscribing", "service", sub.Key.GroupedName())
	_, err = p.subscribe(ctx, sub.Key, sub.Clusters, false)
	return err
}

func (p *NamingProxy) subscribe(ctx context.Context, key domain.ServiceKey, clusters string, subscribe bool) (domain.SubscribeServiceResponse, error) {
	req := domain.NewSubscribeServiceRequest(key, clusters, subscribe)
	if subscribe {
		req.PutHeader(helpers.HeaderApp, p.cfg.AppName)
	}
	return requestAs[domain.SubscribeServiceResponse](ctx, p.requester, req)
}

func (p *NamingProxy) processService(ctx context.Context, service domain.Service) {
	if err := p.cache.ProcessService(ctx, service); err != nil {
		level.Warn(p.logger).Log("msg", "failed to cache service", "service", service.Key(), "err", err)
	}
}

func (p *NamingProxy) key(serviceName, groupName string) domain.ServiceKey {
	return domain.NewServiceKey(p.cfg.Namespace, groupName, serviceName)
}

func checkServiceName(serviceName string) error {
	if strings.TrimSpace(serviceName) == "" {
		return NewApplicationError(CodeClientInvalidParam, "service name is required")
	}
	return nil
}

func (p *NamingProxy) checkOpen() error {
	if p.closed.Load() {
		return NewRemoteError(CodeClientDisconnect, "naming client is closed", ErrClientClosed)
	}
	return nil
}

func (p *NamingProxy) syncRedoGauge() {
	regs, subs := p.store.Len()
	p.metrics.setRedoEntries(regs, subs)
}
