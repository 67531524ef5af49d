package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mynaming/domain"
	"mynaming/helpers"
	"mynaming/interfaces"
	"mynaming/interfaces/mock"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNamingServer answers every request with a successful reply of the matching kind unless reply is set.
type fakeNamingServer struct {
	mu       sync.Mutex
	requests []domain.Request
	reply    func(req domain.Request) (domain.Response, error)
}

func (f *fakeNamingServer) Send(_ context.Context, req domain.Request, _ time.Duration) (domain.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	reply := f.reply
	f.mu.Unlock()
	if reply != nil {
		return reply(req)
	}
	return defaultReply(req)
}

func (f *fakeNamingServer) setReply(reply func(req domain.Request) (domain.Response, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

func (f *fakeNamingServer) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func (f *fakeNamingServer) sent() []domain.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Request(nil), f.requests...)
}

// instanceOps lists "op grouped-name" for every instance request sent.
func (f *fakeNamingServer) instanceOps() []string {
	var ops []string
	for _, req := range f.sent() {
		switch r := req.(type) {
		case *domain.InstanceRequest:
			ops = append(ops, r.Type+" "+r.GroupedServiceName())
		case *domain.BatchInstanceRequest:
			ops = append(ops, r.Type+" "+r.GroupedServiceName())
		}
	}
	return ops
}

func defaultReply(req domain.Request) (domain.Response, error) {
	switch r := req.(type) {
	case *domain.InstanceRequest:
		return domain.InstanceResponse{ResponseEnvelope: domain.OKEnvelope(), Type: r.Type}, nil
	case *domain.BatchInstanceRequest:
		return domain.BatchInstanceResponse{ResponseEnvelope: domain.OKEnvelope(), Type: r.Type}, nil
	case *domain.ServiceListRequest:
		return domain.ServiceListResponse{ResponseEnvelope: domain.OKEnvelope(), Count: 2, ServiceNames: []string{"svc-a", "svc-b"}}, nil
	case *domain.SubscribeServiceRequest:
		return domain.SubscribeServiceResponse{
			ResponseEnvelope: domain.OKEnvelope(),
			ServiceInfo: domain.Service{
				Name:        r.ServiceName,
				GroupName:   r.GroupName,
				Clusters:    r.Clusters,
				Hosts:       []domain.Instance{testInstance()},
				LastRefTime: 1,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unexpected request %T", req)
	}
}

func newProxyForTest(server *fakeNamingServer) (*NamingProxy, *mock.TransportMock, interfaces.ServiceInfoCache) {
	transport := &mock.TransportMock{
		SendFunc:      server.Send,
		IsRunningFunc: func() bool { return true },
		RegisterConnectionListenerFunc: func(listener interfaces.ConnectionListener) func() {
			return func() {}
		},
	}
	cache := NewMemoryServiceInfoCache(log.NewNopLogger())
	cfg := ProxyConfig{Namespace: domain.DefaultNamespace, AppName: "app-1", RequestTimeout: time.Second, RedoConcurrency: 2}
	p := NewNamingProxy(cfg, transport, staticCredentials(domain.Credentials{AccessKeyID: "ak", AccessKeySecret: "sk"}), cache, fixedClock(), log.NewNopLogger(), newTestMetrics())
	return p, transport, cache
}

func TestNewNamingProxy_Panics(t *testing.T) {
	transport := &mock.TransportMock{}
	creds := staticCredentials(domain.Credentials{})
	cache := &mock.ServiceInfoCacheMock{}
	clock := fixedClock()
	logger := log.NewNopLogger()
	metrics := newTestMetrics()

	tests := []struct {
		name      string
		transport interfaces.Transport
		creds     interfaces.CredentialsProvider
		cache     interfaces.ServiceInfoCache
		clock     interfaces.TimeProvider
		logger    log.Logger
		metrics   *Metrics
		panicMsg  string
	}{
		{"transport_nil", nil, creds, cache, clock, logger, metrics, "service.naming_proxy.go: transport is required"},
		{"credentials_nil", transport, nil, cache, clock, logger, metrics, "service.naming_proxy.go: credentials provider is required"},
		{"cache_nil", transport, creds, nil, clock, logger, metrics, "service.naming_proxy.go: service info cache is required"},
		{"time_provider_nil", transport, creds, cache, nil, logger, metrics, "service.naming_proxy.go: time provider is required"},
		{"logger_nil", transport, creds, cache, clock, nil, metrics, "service.naming_proxy.go: logger is required"},
		{"metrics_nil", transport, creds, cache, clock, logger, nil, "service.naming_proxy.go: metrics is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PanicsWithValue(t, tt.panicMsg, func() {
				NewNamingProxy(ProxyConfig{}, tt.transport, tt.creds, tt.cache, tt.clock, tt.logger, tt.metrics)
			})
		})
	}
}

func TestNamingProxy_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("registers_handler_and_listener_once", func(t *testing.T) {
		p, transport, _ := newProxyForTest(&fakeNamingServer{})
		require.NoError(t, p.Start(ctx))
		require.NoError(t, p.Start(ctx))
		defer p.Close()

		assert.Len(t, transport.StartCalls(), 1)
		require.Len(t, transport.RegisterServerPushHandlerCalls(), 1)
		assert.Equal(t, domain.RequestTypeNotifySubscriber, transport.RegisterServerPushHandlerCalls()[0].RequestType)
		require.Len(t, transport.RegisterConnectionListenerCalls(), 1)
		assert.Same(t, p.driver, transport.RegisterConnectionListenerCalls()[0].Listener)
	})

	t.Run("transport_error_unregisters_listener", func(t *testing.T) {
		p, transport, _ := newProxyForTest(&fakeNamingServer{})
		unregistered := false
		transport.RegisterConnectionListenerFunc = func(interfaces.ConnectionListener) func() {
			return func() { unregistered = true }
		}
		transport.StartFunc = func(ctx context.Context) error { return errors.New("no server") }

		err := p.Start(ctx)
		require.Error(t, err)
		assert.True(t, IsRemoteError(err))
		assert.True(t, unregistered)
	})

	t.Run("retry_after_failed_start_replays", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, transport, _ := newProxyForTest(server)
		var mu sync.Mutex
		var listener interfaces.ConnectionListener
		transport.RegisterConnectionListenerFunc = func(l interfaces.ConnectionListener) func() {
			mu.Lock()
			listener = l
			mu.Unlock()
			return func() {}
		}
		failures := 1
		transport.StartFunc = func(ctx context.Context) error {
			if failures > 0 {
				failures--
				return errors.New("no server")
			}
			return nil
		}

		require.Error(t, p.Start(ctx))
		require.NoError(t, p.Start(ctx))
		defer p.Close()

		_, err := p.RegisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.NoError(t, err)
		server.reset()

		mu.Lock()
		l := listener
		mu.Unlock()
		require.NotNil(t, l)
		l.OnConnectionEvent(domain.ConnectionDisconnected)
		l.OnConnectionEvent(domain.ConnectionReconnected)

		require.Eventually(t, func() bool {
			return len(server.instanceOps()) == 1
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, []string{"registerInstance DEFAULT_GROUP@@svc-a"}, server.instanceOps())
	})

	t.Run("push_updates_cache", func(t *testing.T) {
		p, transport, cache := newProxyForTest(&fakeNamingServer{})
		require.NoError(t, p.Start(ctx))
		defer p.Close()

		handler := transport.RegisterServerPushHandlerCalls()[0].Handler
		body, err := json.Marshal(domain.NotifySubscriberRequest{
			ServiceInfo: domain.Service{Name: "svc-a", GroupName: domain.DefaultGroup, Hosts: []domain.Instance{testInstance()}},
		})
		require.NoError(t, err)
		_, err = handler.HandlePush(ctx, body)
		require.NoError(t, err)

		service, ok, err := cache.GetService(ctx, "DEFAULT_GROUP@@svc-a", "")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, service.Hosts, 1)
	})
}

func TestNamingProxy_RegisterInstance(t *testing.T) {
	ctx := context.Background()

	t.Run("success_confirms_redo_entry", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)

		ok, err := p.RegisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.NoError(t, err)
		assert.True(t, ok)

		reg, found := p.Store().FindRegistration(testKey())
		require.True(t, found)
		assert.True(t, reg.Confirmed)

		sent := server.sent()
		require.Len(t, sent, 1)
		req := sent[0].(*domain.InstanceRequest)
		assert.Equal(t, domain.OpRegisterInstance, req.Type)
		assert.Equal(t, domain.DefaultNamespace, req.Namespace)
		assert.Equal(t, "svc-a", req.ServiceName)
		assert.Equal(t, domain.DefaultGroup, req.GroupName)
		assert.Equal(t, domain.ModuleNaming, req.Module)
		assert.NotEmpty(t, req.Headers()["signature"])
	})

	t.Run("failure_keeps_unconfirmed_entry", func(t *testing.T) {
		server := &fakeNamingServer{}
		server.setReply(func(req domain.Request) (domain.Response, error) {
			return nil, errors.New("connection refused")
		})
		p, _, _ := newProxyForTest(server)

		ok, err := p.RegisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.Error(t, err)
		assert.False(t, ok)
		assert.True(t, IsRemoteError(err))

		reg, found := p.Store().FindRegistration(testKey())
		require.True(t, found)
		assert.False(t, reg.Confirmed)
	})

	t.Run("empty_group_keys_redo_by_bare_name", func(t *testing.T) {
		p, _, _ := newProxyForTest(&fakeNamingServer{})
		_, err := p.RegisterInstance(ctx, "svc-a", "", testInstance())
		require.NoError(t, err)
		snap := p.Store().Snapshot()
		require.Len(t, snap.Registrations, 1)
		assert.Equal(t, "svc-a", snap.Registrations[0].Key.GroupedName())
	})

	t.Run("batch_register", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)
		second := testInstance()
		second.IP = "10.0.0.2"

		ok, err := p.BatchRegisterInstance(ctx, "svc-a", domain.DefaultGroup, []domain.Instance{testInstance(), second})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"batchRegisterInstance DEFAULT_GROUP@@svc-a"}, server.instanceOps())

		reg, _ := p.Store().FindRegistration(testKey())
		assert.True(t, reg.Batch)
		assert.True(t, reg.Confirmed)
		assert.Len(t, reg.Instances, 2)
	})
}

func TestNamingProxy_DeregisterInstance(t *testing.T) {
	ctx := context.Background()

	t.Run("success_removes_redo_entry", func(t *testing.T) {
		p, _, _ := newProxyForTest(&fakeNamingServer{})
		_, err := p.RegisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.NoError(t, err)

		ok, err := p.DeregisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.NoError(t, err)
		assert.True(t, ok)
		regs, _ := p.Store().Len()
		assert.Zero(t, regs)
	})

	t.Run("failure_restores_registration", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)
		_, err := p.RegisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.NoError(t, err)

		server.setReply(func(req domain.Request) (domain.Response, error) {
			return domain.InstanceResponse{ResponseEnvelope: domain.ResponseEnvelope{ResultCode: 500, ErrorCode: 500, Message: "overflow"}}, nil
		})
		ok, err := p.DeregisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.Error(t, err)
		assert.False(t, ok)
		assert.True(t, IsApplicationError(err))

		reg, found := p.Store().FindRegistration(testKey())
		require.True(t, found)
		assert.Equal(t, domain.RedoRegistered, reg.State)
	})

	t.Run("untracked_instance_still_sent", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)
		ok, err := p.DeregisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"deregisterInstance DEFAULT_GROUP@@svc-a"}, server.instanceOps())
	})
}

func TestNamingProxy_Replay(t *testing.T) {
	ctx := context.Background()

	t.Run("reconnect_replays_registration_once", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)
		_, err := p.RegisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.NoError(t, err)
		server.reset()

		p.driver.HandleEvent(ctx, domain.ConnectionDisconnected)
		p.driver.HandleEvent(ctx, domain.ConnectionReconnected)

		sent := server.sent()
		require.Len(t, sent, 1)
		req := sent[0].(*domain.InstanceRequest)
		assert.Equal(t, domain.OpRegisterInstance, req.Type)
		assert.Equal(t, "10.0.0.1", req.Instance.IP)
		assert.Equal(t, 8080, req.Instance.Port)
		reg, _ := p.Store().FindRegistration(testKey())
		assert.True(t, reg.Confirmed)
	})

	t.Run("reconnect_replays_subscription", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)
		_, err := p.Subscribe(ctx, "svc-a", domain.DefaultGroup, "c1")
		require.NoError(t, err)
		server.reset()

		p.driver.HandleEvent(ctx, domain.ConnectionDisconnected)
		p.driver.HandleEvent(ctx, domain.ConnectionReconnected)

		sent := server.sent()
		require.Len(t, sent, 1)
		req := sent[0].(*domain.SubscribeServiceRequest)
		assert.True(t, req.Subscribe)
		assert.Equal(t, "c1", req.Clusters)
		assert.Equal(t, "app-1", req.Headers()[helpers.HeaderApp])
	})

	t.Run("unregistering_entry_replays_deregister", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)
		p.Store().RecordRegistration(testKey(), testInstance())
		p.Store().MarkUnregistering(testKey())

		p.driver.HandleEvent(ctx, domain.ConnectionReconnected)
		assert.Equal(t, []string{"deregisterInstance DEFAULT_GROUP@@svc-a"}, server.instanceOps())
		regs, _ := p.Store().Len()
		assert.Zero(t, regs)
	})

	t.Run("deregister_during_replay_is_compensated", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)
		_, err := p.RegisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
		require.NoError(t, err)
		server.reset()

		var raced atomic.Bool
		server.setReply(func(req domain.Request) (domain.Response, error) {
			if r, ok := req.(*domain.InstanceRequest); ok && r.Type == domain.OpRegisterInstance && raced.CompareAndSwap(false, true) {
				v, _ := p.Store().MarkUnregistering(testKey())
				p.Store().RemoveRegistrationIfVersion(testKey(), v)
			}
			return defaultReply(req)
		})

		p.driver.HandleEvent(ctx, domain.ConnectionReconnected)
		assert.Equal(t, []string{
			"registerInstance DEFAULT_GROUP@@svc-a",
			"deregisterInstance DEFAULT_GROUP@@svc-a",
		}, server.instanceOps())
	})

	t.Run("concurrent_registers_during_replay", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)
		for i := 0; i < 20; i++ {
			_, err := p.RegisterInstance(ctx, fmt.Sprintf("svc-%d", i), domain.DefaultGroup, testInstance())
			require.NoError(t, err)
		}
		server.setReply(func(req domain.Request) (domain.Response, error) {
			time.Sleep(time.Millisecond)
			return defaultReply(req)
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.driver.HandleEvent(ctx, domain.ConnectionReconnected)
			}()
			for i := 20; i < 40; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _ = p.RegisterInstance(ctx, fmt.Sprintf("svc-%d", i), domain.DefaultGroup, testInstance())
				}(i)
			}
			wg.Wait()
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("register and replay deadlocked")
		}
		regs, _ := p.Store().Len()
		assert.Equal(t, 40, regs)
	})
}

func TestNamingProxy_ListServices(t *testing.T) {
	ctx := context.Background()
	server := &fakeNamingServer{}
	p, _, _ := newProxyForTest(server)

	list, err := p.ListServices(ctx, domain.ListServiceParam{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, []string{"svc-a", "svc-b"}, list.Services)

	req := server.sent()[0].(*domain.ServiceListRequest)
	assert.Equal(t, DefaultPageNo, req.PageNo)
	assert.Equal(t, DefaultPageSize, req.PageSize)
	assert.Equal(t, domain.DefaultGroup, req.GroupName)
	assert.Equal(t, domain.DefaultNamespace, req.Namespace)

	_, err = p.ListServices(ctx, domain.ListServiceParam{Namespace: "dev", GroupName: "g1", PageNo: 3, PageSize: 50})
	require.NoError(t, err)
	req = server.sent()[1].(*domain.ServiceListRequest)
	assert.Equal(t, 3, req.PageNo)
	assert.Equal(t, 50, req.PageSize)
	assert.Equal(t, "g1", req.GroupName)
	assert.Equal(t, "dev", req.Namespace)
}

func TestNamingProxy_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("success_caches_service", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, cache := newProxyForTest(server)

		service, err := p.Subscribe(ctx, "svc-a", domain.DefaultGroup, "")
		require.NoError(t, err)
		require.NotNil(t, service)
		assert.Len(t, service.Hosts, 1)

		req := server.sent()[0].(*domain.SubscribeServiceRequest)
		assert.Equal(t, "app-1", req.Headers()[helpers.HeaderApp])
		cached, ok, err := cache.GetService(ctx, "DEFAULT_GROUP@@svc-a", "")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, *service, cached)

		sub, found := p.Store().FindSubscription(testKey(), "")
		require.True(t, found)
		assert.True(t, sub.Confirmed)
	})

	t.Run("not_accepted_returns_nil_without_error", func(t *testing.T) {
		server := &fakeNamingServer{}
		server.setReply(func(req domain.Request) (domain.Response, error) {
			return domain.SubscribeServiceResponse{ResponseEnvelope: domain.ResponseEnvelope{ResultCode: domain.ResultCodeSuccess, Success: false}}, nil
		})
		p, _, _ := newProxyForTest(server)

		service, err := p.Subscribe(ctx, "svc-a", domain.DefaultGroup, "")
		assert.NoError(t, err)
		assert.Nil(t, service)
		_, found := p.Store().FindSubscription(testKey(), "")
		assert.True(t, found)
	})

	t.Run("remote_error_propagates", func(t *testing.T) {
		server := &fakeNamingServer{}
		server.setReply(func(req domain.Request) (domain.Response, error) {
			return nil, context.DeadlineExceeded
		})
		p, _, _ := newProxyForTest(server)

		service, err := p.Subscribe(ctx, "svc-a", domain.DefaultGroup, "")
		assert.Nil(t, service)
		assert.True(t, IsRemoteError(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("unsubscribe_removes_entry", func(t *testing.T) {
		server := &fakeNamingServer{}
		p, _, _ := newProxyForTest(server)
		_, err := p.Subscribe(ctx, "svc-a", domain.DefaultGroup, "c1")
		require.NoError(t, err)

		require.NoError(t, p.Unsubscribe(ctx, "svc-a", domain.DefaultGroup, "c1"))
		_, subs := p.Store().Len()
		assert.Zero(t, subs)
		req := server.sent()[1].(*domain.SubscribeServiceRequest)
		assert.False(t, req.Subscribe)
	})
}

func TestNamingProxy_InvalidParams(t *testing.T) {
	ctx := context.Background()
	server := &fakeNamingServer{}
	p, _, _ := newProxyForTest(server)

	tests := []struct {
		name string
		call func() error
	}{
		{"register_empty_service", func() error {
			_, err := p.RegisterInstance(ctx, "", domain.DefaultGroup, testInstance())
			return err
		}},
		{"batch_register_blank_service", func() error {
			_, err := p.BatchRegisterInstance(ctx, "  ", domain.DefaultGroup, []domain.Instance{testInstance()})
			return err
		}},
		{"batch_register_no_instances", func() error {
			_, err := p.BatchRegisterInstance(ctx, "svc-a", domain.DefaultGroup, nil)
			return err
		}},
		{"deregister_empty_service", func() error {
			_, err := p.DeregisterInstance(ctx, "", domain.DefaultGroup, testInstance())
			return err
		}},
		{"subscribe_empty_service", func() error {
			_, err := p.Subscribe(ctx, "", domain.DefaultGroup, "")
			return err
		}},
		{"unsubscribe_empty_service", func() error {
			return p.Unsubscribe(ctx, "", domain.DefaultGroup, "")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, IsApplicationError(err))
			assert.Equal(t, CodeClientInvalidParam, ErrorCode(err))
		})
	}

	assert.Empty(t, server.sent())
	regs, subs := p.Store().Len()
	assert.Zero(t, regs)
	assert.Zero(t, subs)
}

func TestNamingProxy_Close(t *testing.T) {
	ctx := context.Background()
	p, transport, _ := newProxyForTest(&fakeNamingServer{})
	require.NoError(t, p.Start(ctx))
	assert.True(t, p.ServerHealth())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Len(t, transport.ShutdownCalls(), 1)
	assert.False(t, p.ServerHealth())

	_, err := p.RegisterInstance(ctx, "svc-a", domain.DefaultGroup, testInstance())
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.Equal(t, CodeClientDisconnect, ErrorCode(err))
	_, err = p.Subscribe(ctx, "svc-a", domain.DefaultGroup, "")
	assert.ErrorIs(t, err, ErrClientClosed)
	_, err = p.ListServices(ctx, domain.ListServiceParam{})
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.ErrorIs(t, p.Start(ctx), ErrClientClosed)
}
