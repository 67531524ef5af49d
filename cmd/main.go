// Package main is the entry point of the naming client agent. It loads configuration (env + YAML), builds the
// server manager over a static or HTTP server list, the security injector chain (login token + static headers),
// the gRPC transport, the service info cache (in-memory or Redis) and the naming proxy, then registers and
// subscribes the configured services. /health and /metrics are served over HTTP. On SIGINT/SIGTERM the
// registered instances are deregistered and everything is shut down.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mynaming/adapters"
	"mynaming/adapters/myredis"
	"mynaming/helpers"
	"mynaming/interfaces"
	"mynaming/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

// main is the agent entry point. Exits via os.Exit(1) on config or startup error.
func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	logger = log.WithPrefix(logger, "caller", log.DefaultCaller)

	cfg, err := LoadConfig()
	if err != nil {
		level.Error(logger).Log("msg", "failed to load configuration", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log(
		"msg", "configuration loaded",
		"namespace", cfg.Namespace,
		"servers", len(cfg.Servers),
		"server_list_url", cfg.ServerListURL,
		"redis_addr", cfg.Redis.Addr,
	)

	timeProvider := service.NewTimeProvider(func() time.Time { return time.Now().UTC() })
	httpClient := &http.Client{Timeout: 10 * time.Second}

	var serverSource interfaces.ServerListSource
	if len(cfg.Servers) > 0 {
		serverSource = adapters.StaticServerList(cfg.Servers)
	} else {
		serverSource = adapters.ServerListHTTP(cfg.ServerListURL, httpClient)
	}
	serverManager := service.NewServerManager(serverSource, cfg.RefreshInterval, logger)
	defer serverManager.Close()

	var injectors []interfaces.SecurityInfoInjector
	if cfg.Security.Username != "" {
		injectors = append(injectors, adapters.SecurityHTTP(cfg.Security.LoginURL, cfg.Security.Username, cfg.Security.Password, httpClient, timeProvider, logger))
	}
	injectors = append(injectors, adapters.StaticHeaders(cfg.Headers))

	transport := adapters.NewGRPCTransport(serverManager, helpers.NewInjectorChain(injectors...), logger, adapters.GRPCTransportConfig{
		ClientID: cfg.ClientID,
		Labels:   cfg.Labels,
	})

	var credentials interfaces.CredentialsProvider
	if cfg.Credentials.CanSign() {
		credentials = adapters.StaticCredentials(cfg.Credentials)
	} else {
		credentials = adapters.EnvCredentials()
	}

	var cache interfaces.ServiceInfoCache
	if cfg.Redis.Addr != "" {
		cache, err = newRedisCache(cfg.Redis, logger)
		if err != nil {
			level.Error(logger).Log("msg", "failed to set up redis service cache", "err", err)
			os.Exit(1)
		}
	} else {
		cache = service.NewMemoryServiceInfoCache(logger)
	}

	proxy := service.NewNamingProxy(service.ProxyConfig{
		Namespace:       cfg.Namespace,
		AppName:         cfg.AppName,
		RequestTimeout:  cfg.RequestTimeout,
		RedoConcurrency: cfg.RedoConcurrency,
	}, transport, credentials, cache, timeProvider, logger, service.NewMetrics(prometheus.DefaultRegisterer))

	ctx := context.Background()
	if err := proxy.Start(ctx); err != nil {
		level.Error(logger).Log("msg", "failed to start naming proxy", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "naming proxy started", "client_id", transport.ClientID(), "server", transport.Server())

	for _, entry := range cfg.Register {
		// a failed register stays in the redo store and is replayed on the next connection
		if _, err := proxy.RegisterInstance(ctx, entry.Key.Name, entry.Key.Group, entry.Instance); err != nil {
			level.Warn(logger).Log("msg", "register instance failed", "service", entry.Key.String(), "instance", entry.Instance.Address(), "err", err)
		}
	}
	for _, entry := range cfg.Subscribe {
		svc, err := proxy.Subscribe(ctx, entry.Key.Name, entry.Key.Group, entry.Clusters)
		if err != nil {
			level.Warn(logger).Log("msg", "subscribe failed", "service", entry.Key.String(), "err", err)
			continue
		}
		if svc != nil {
			level.Info(logger).Log("msg", "subscribed", "service", entry.Key.String(), "hosts", len(svc.Hosts))
		}
	}

	e := newHTTPServer(proxy.ServerHealth, prometheus.DefaultGatherer, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HealthPort)
		level.Info(logger).Log("msg", "starting HTTP server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "HTTP server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	level.Info(logger).Log("msg", "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, entry := range cfg.Register {
		if _, err := proxy.DeregisterInstance(shutdownCtx, entry.Key.Name, entry.Key.Group, entry.Instance); err != nil {
			level.Warn(logger).Log("msg", "deregister instance failed", "service", entry.Key.String(), "instance", entry.Instance.Address(), "err", err)
		}
	}
	for _, entry := range cfg.Subscribe {
		if err := proxy.Unsubscribe(shutdownCtx, entry.Key.Name, entry.Key.Group, entry.Clusters); err != nil {
			level.Warn(logger).Log("msg", "unsubscribe failed", "service", entry.Key.String(), "err", err)
		}
	}
	if err := proxy.Close(); err != nil {
		level.Error(logger).Log("msg", "error closing naming proxy", "err", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "error during HTTP server shutdown", "err", err)
	}
	level.Info(logger).Log("msg", "stopped")
}

// newRedisCache connects to Redis (ping with a 5s timeout) and returns the shared service cache.
func newRedisCache(cfg RedisConfig, logger log.Logger) (interfaces.ServiceInfoCache, error) {
	client, err := myredis.NewRedisUniversalClient(cfg.Addr)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	level.Info(logger).Log("msg", "connected to redis")
	return myredis.NewServiceCache(client, myredis.DefaultPrefix, cfg.TTL, logger), nil
}
