package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"mynaming/helpers"
	"mynaming/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ErrLoginFailed is returned by SecurityHTTP when the server rejects the credentials and no valid token is cached.
var ErrLoginFailed = errors.New("naming server login failed")

// SecurityHTTP creates an interfaces.SecurityInfoInjector that logs in with username/password
// (POST baseURL/v1/auth/users/login) and injects the returned access token as the "accessToken" header.
// The token is refreshed after nine tenths of its TTL. Panics on empty baseURL/username or nil dependencies.
//
// Parameters: baseURL - naming server HTTP base URL (e.g. http://nacos:8848/nacos); username, password - login credentials; client - HTTP client; timeProvider - clock for token expiry; logger - refresh failures are logged.
//
// Returns: interfaces.SecurityInfoInjector (*securityHTTP).
//
// Called from cmd/main when security.username is configured.
func SecurityHTTP(
	baseURL, username, password string,
	client *http.Client,
	timeProvider interfaces.TimeProvider,
	logger log.Logger,
) interfaces.SecurityInfoInjector {
	return &securityHTTP{
		baseURL:      helpers.StrPanic(baseURL, "adapters.security.go: baseURL is required"),
		username:     helpers.StrPanic(username, "adapters.security.go: username is required"),
		password:     password,
		client:       helpers.NilPanic(client, "adapters.security.go: http client is required"),
		timeProvider: helpers.NilPanic(timeProvider, "adapters.security.go: time provider is required"),
		logger:       log.With(helpers.NilPanic(logger, "adapters.security.go: logger is required"), "component", "security"),
	}
}

// securityHTTP implements interfaces.SecurityInfoInjector. Under mu: token, refreshAt (when to log in again), expiresAt (when the token stops being usable).
type securityHTTP struct {
	baseURL      string
	username     string
	password     string
	client       *http.Client
	timeProvider interfaces.TimeProvider
	logger       log.Logger

	mu        sync.Mutex
	token     string
	refreshAt time.Time
	expiresAt time.Time
}

// loginResponse is the JSON shape of the login reply.
type loginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenTTL    int64  `json:"tokenTtl"`
}

// InjectSecurityInfo sets the access token header, logging in first when the cached token is due for refresh.
// A failed refresh keeps using the cached token while it has not expired.
//
// Returns: nil; error (wrapping ErrLoginFailed on rejection) when no usable token can be obtained.
//
// Called from the injector chain of adapters.GRPCTransport for every request.
func (s *securityHTTP) InjectSecurityInfo(ctx context.Context, headers map[string]string) error {
	token, err := s.currentToken(ctx)
	if err != nil {
		return err
	}
	headers[helpers.HeaderAccessToken] = token
	return nil
}

func (s *securityHTTP) currentToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.timeProvider.Now()
	if s.token != "" && now.Before(s.refreshAt) {
		return s.token, nil
	}
	resp, err := s.login(ctx)
	if err != nil {
		if s.token != "" && now.Before(s.expiresAt) {
			level.Warn(s.logger).Log("msg", "token refresh failed, using cached token", "err", err)
			return s.token, nil
		}
		level.Error(s.logger).Log("msg", "login failed", "username", s.username, "err", err)
		return "", err
	}
	ttl := time.Duration(resp.TokenTTL) * time.Second
	s.token = resp.AccessToken
	s.expiresAt = now.Add(ttl)
	s.refreshAt = now.Add(ttl - ttl/10)
	level.Info(s.logger).Log("msg", "logged in", "username", s.username, "ttl", ttl)
	return s.token, nil
}

func (s *securityHTTP) login(ctx context.Context) (loginResponse, error) {
	form := url.Values{"username": {s.username}, "password": {s.password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/auth/users/login", strings.NewReader(form.Encode()))
	if err != nil {
		return loginResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.client.Do(req)
	if err != nil {
		return loginResponse{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return loginResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return loginResponse{}, fmt.Errorf("%w: status %d", ErrLoginFailed, resp.StatusCode)
	}
	var out loginResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return loginResponse{}, err
	}
	if out.AccessToken == "" {
		return loginResponse{}, fmt.Errorf("%w: empty access token", ErrLoginFailed)
	}
	return out, nil
}

// StaticHeaders returns an injector that copies headers into every request. Nil or empty headers give an injector that adds nothing.
//
// Called from cmd/main with naming.headers from config.
func StaticHeaders(headers map[string]string) interfaces.SecurityInfoInjector {
	h := make(staticHeaders, len(headers))
	maps.Copy(h, headers)
	return h
}

type staticHeaders map[string]string

func (h staticHeaders) InjectSecurityInfo(_ context.Context, headers map[string]string) error {
	maps.Copy(headers, h)
	return nil
}
