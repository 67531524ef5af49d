package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mynaming/domain"

	"gopkg.in/yaml.v3"
)

// Env variable names.
const (
	envConfigPath = "CONFIG_PATH"
	envHealthPort = "HEALTH_PORT"
	envUsername   = "NACOS_USERNAME"
	envPassword   = "NACOS_PASSWORD"
)

const (
	defaultRequestTimeout  = 3 * time.Second
	defaultRefreshInterval = 30 * time.Second
	defaultInstanceWeight  = 1.0
)

// Config holds the full client configuration loaded by LoadConfig from environment variables and the YAML file.
// HealthPort is the HTTP port of /health and /metrics (from HEALTH_PORT); the naming, security and redis
// sections come from YAML; Register and Subscribe list the services this binary registers and watches.
type Config struct {
	HealthPort      int
	Namespace       string
	AppName         string
	ClientID        string
	Labels          map[string]string
	Servers         []string
	ServerListURL   string
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	RedoConcurrency int
	Credentials     domain.Credentials
	Headers         map[string]string
	Security        SecurityConfig
	Redis           RedisConfig
	Register        []RegisterEntry
	Subscribe       []SubscribeEntry
}

// SecurityConfig enables login-token injection when Username is set.
type SecurityConfig struct {
	LoginURL string
	Username string
	Password string
}

// RedisConfig selects the Redis service cache when Addr is set.
type RedisConfig struct {
	Addr string
	TTL  time.Duration
}

// RegisterEntry is one instance registered at startup and deregistered at shutdown.
type RegisterEntry struct {
	Key      domain.ServiceKey
	Instance domain.Instance
}

// SubscribeEntry is one service subscribed at startup.
type SubscribeEntry struct {
	Key      domain.ServiceKey
	Clusters string
}

// yamlConfig is the root struct for YAML unmarshalling.
type yamlConfig struct {
	Naming    yamlNaming      `yaml:"naming"`
	Security  yamlSecurity    `yaml:"security"`
	Redis     yamlRedis       `yaml:"redis"`
	Register  []yamlRegister  `yaml:"register"`
	Subscribe []yamlSubscribe `yaml:"subscribe"`
}

// yamlNaming holds the connection settings: namespace, app name, servers or server_list_url, timings and access keys.
type yamlNaming struct {
	Namespace         string            `yaml:"namespace"`
	AppName           string            `yaml:"app_name"`
	ClientID          string            `yaml:"client_id"`
	Labels            map[string]string `yaml:"labels"`
	Servers           []string          `yaml:"servers"`
	ServerListURL     string            `yaml:"server_list_url"`
	RefreshIntervalMs int               `yaml:"server_refresh_interval_ms"`
	RequestTimeoutMs  int               `yaml:"request_timeout_ms"`
	RedoConcurrency   int               `yaml:"redo_concurrency"`
	AccessKey         string            `yaml:"access_key"`
	SecretKey         string            `yaml:"secret_key"`
	SecurityToken     string            `yaml:"security_token"`
	Headers           map[string]string `yaml:"headers"`
}

// yamlSecurity holds the login endpoint and credentials (username and password may come from env instead).
type yamlSecurity struct {
	LoginURL string `yaml:"login_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// yamlRedis holds the redis URL of the shared service cache and the key ttl.
type yamlRedis struct {
	Addr  string `yaml:"addr"`
	TTLMs int    `yaml:"ttl_ms"`
}

// yamlRegister is one instance to register: service, group and the instance fields.
type yamlRegister struct {
	Service   string            `yaml:"service"`
	Group     string            `yaml:"group"`
	IP        string            `yaml:"ip"`
	Port      int               `yaml:"port"`
	Weight    float64           `yaml:"weight"`
	Cluster   string            `yaml:"cluster"`
	Ephemeral *bool             `yaml:"ephemeral"`
	Metadata  map[string]string `yaml:"metadata"`
}

// yamlSubscribe is one service to subscribe: service, group and optional comma-separated clusters.
type yamlSubscribe struct {
	Service  string `yaml:"service"`
	Group    string `yaml:"group"`
	Clusters string `yaml:"clusters"`
}

// loadYAMLConfig reads the YAML file at path and unmarshals it into yamlConfig.
//
// Returns: (*yamlConfig, nil) on success; (nil, error) on os.ReadFile or yaml.Unmarshal error.
//
// Called only from LoadConfig.
func loadYAMLConfig(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out yamlConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadConfig builds client config from environment variables and YAML at CONFIG_PATH. Reads HEALTH_PORT (required, 1-65535),
// CONFIG_PATH (required), NACOS_USERNAME and NACOS_PASSWORD (override security.username/password). Requires naming.servers
// or naming.server_list_url; security.login_url when a username is set; service and ip:port for every register entry and
// service for every subscribe entry. Empty groups become DEFAULT_GROUP and an empty namespace becomes public.
//
// Returns: (*Config, nil) on success; (nil, error) on invalid port, missing CONFIG_PATH, YAML load/parse error or invalid section.
//
// Called only from main at startup.
func LoadConfig() (*Config, error) {
	healthPortStr := strings.TrimSpace(os.Getenv(envHealthPort))
	healthPort, err := strconv.Atoi(healthPortStr)
	if err != nil || healthPortStr == "" {
		return nil, fmt.Errorf("%s must be a valid port (1-65535)", envHealthPort)
	}
	if healthPort <= 0 || healthPort > 65535 {
		return nil, fmt.Errorf("%s must be 1-65535, got %d", envHealthPort, healthPort)
	}
	configPath := strings.TrimSpace(os.Getenv(envConfigPath))
	if configPath == "" {
		return nil, fmt.Errorf("%s is required", envConfigPath)
	}
	if !filepath.IsAbs(configPath) {
		abs, absErr := filepath.Abs(configPath)
		if absErr != nil {
			return nil, absErr
		}
		configPath = abs
	}
	raw, err := loadYAMLConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}

	namespace := strings.TrimSpace(raw.Naming.Namespace)
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}
	servers := make([]string, 0, len(raw.Naming.Servers))
	for _, s := range raw.Naming.Servers {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	serverListURL := strings.TrimSpace(raw.Naming.ServerListURL)
	if len(servers) == 0 && serverListURL == "" {
		return nil, fmt.Errorf("naming.servers or naming.server_list_url is required")
	}
	if raw.Naming.RefreshIntervalMs < 0 || raw.Naming.RequestTimeoutMs < 0 || raw.Naming.RedoConcurrency < 0 {
		return nil, fmt.Errorf("naming.server_refresh_interval_ms, request_timeout_ms and redo_concurrency must not be negative")
	}
	refreshInterval := defaultRefreshInterval
	if raw.Naming.RefreshIntervalMs > 0 {
		refreshInterval = time.Duration(raw.Naming.RefreshIntervalMs) * time.Millisecond
	}
	requestTimeout := defaultRequestTimeout
	if raw.Naming.RequestTimeoutMs > 0 {
		requestTimeout = time.Duration(raw.Naming.RequestTimeoutMs) * time.Millisecond
	}

	security := SecurityConfig{
		LoginURL: strings.TrimSpace(raw.Security.LoginURL),
		Username: strings.TrimSpace(raw.Security.Username),
		Password: raw.Security.Password,
	}
	if v := strings.TrimSpace(os.Getenv(envUsername)); v != "" {
		security.Username = v
	}
	if v := os.Getenv(envPassword); v != "" {
		security.Password = v
	}
	if security.Username != "" && security.LoginURL == "" {
		return nil, fmt.Errorf("security.login_url is required when a username is set")
	}

	if raw.Redis.TTLMs < 0 {
		return nil, fmt.Errorf("redis.ttl_ms must not be negative")
	}

	register := make([]RegisterEntry, 0, len(raw.Register))
	for i, r := range raw.Register {
		entry, regErr := toRegisterEntry(namespace, r)
		if regErr != nil {
			return nil, fmt.Errorf("register[%d]: %w", i, regErr)
		}
		register = append(register, entry)
	}
	subscribe := make([]SubscribeEntry, 0, len(raw.Subscribe))
	for i, s := range raw.Subscribe {
		name := strings.TrimSpace(s.Service)
		if name == "" {
			return nil, fmt.Errorf("subscribe[%d]: service is required", i)
		}
		subscribe = append(subscribe, SubscribeEntry{
			Key:      domain.NewServiceKey(namespace, strings.TrimSpace(s.Group), name).WithDefaultGroup(),
			Clusters: strings.TrimSpace(s.Clusters),
		})
	}

	return &Config{
		HealthPort:      healthPort,
		Namespace:       namespace,
		AppName:         strings.TrimSpace(raw.Naming.AppName),
		ClientID:        strings.TrimSpace(raw.Naming.ClientID),
		Labels:          raw.Naming.Labels,
		Servers:         servers,
		ServerListURL:   serverListURL,
		RefreshInterval: refreshInterval,
		RequestTimeout:  requestTimeout,
		RedoConcurrency: raw.Naming.RedoConcurrency,
		Credentials: domain.Credentials{
			AccessKeyID:     strings.TrimSpace(raw.Naming.AccessKey),
			AccessKeySecret: strings.TrimSpace(raw.Naming.SecretKey),
			SecurityToken:   strings.TrimSpace(raw.Naming.SecurityToken),
		},
		Headers:   raw.Naming.Headers,
		Security:  security,
		Redis:     RedisConfig{Addr: strings.TrimSpace(raw.Redis.Addr), TTL: time.Duration(raw.Redis.TTLMs) * time.Millisecond},
		Register:  register,
		Subscribe: subscribe,
	}, nil
}

// toRegisterEntry validates one register item and fills instance defaults (weight 1, healthy, enabled, ephemeral).
//
// Called only from LoadConfig.
func toRegisterEntry(namespace string, r yamlRegister) (RegisterEntry, error) {
	name := strings.TrimSpace(r.Service)
	if name == "" {
		return RegisterEntry{}, fmt.Errorf("service is required")
	}
	ip := strings.TrimSpace(r.IP)
	if ip == "" {
		return RegisterEntry{}, fmt.Errorf("ip is required")
	}
	if r.Port <= 0 || r.Port > 65535 {
		return RegisterEntry{}, fmt.Errorf("port must be 1-65535, got %d", r.Port)
	}
	if r.Weight < 0 {
		return RegisterEntry{}, fmt.Errorf("weight must not be negative")
	}
	weight := r.Weight
	if weight == 0 {
		weight = defaultInstanceWeight
	}
	ephemeral := true
	if r.Ephemeral != nil {
		ephemeral = *r.Ephemeral
	}
	key := domain.NewServiceKey(namespace, strings.TrimSpace(r.Group), name).WithDefaultGroup()
	return RegisterEntry{
		Key: key,
		Instance: domain.Instance{
			IP:          ip,
			Port:        r.Port,
			Weight:      weight,
			Healthy:     true,
			Enabled:     true,
			Ephemeral:   ephemeral,
			ClusterName: strings.TrimSpace(r.Cluster),
			ServiceName: name,
			Metadata:    r.Metadata,
		},
	}, nil
}
