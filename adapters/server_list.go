package adapters

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"mynaming/helpers"
	"mynaming/interfaces"
)

// DefaultServerPort is appended to server list entries that carry no port.
const DefaultServerPort = 9848

// StaticServerList creates an interfaces.ServerListSource returning a fixed address list. Panics on an empty list.
//
// Parameter servers - "host:port" addresses (a bare host gets DefaultServerPort).
//
// Returns: interfaces.ServerListSource (*staticServerList).
//
// Called from cmd/main when naming.servers is configured.
func StaticServerList(servers []string) interfaces.ServerListSource {
	if len(servers) == 0 {
		panic("adapters.server_list.go: servers are required")
	}
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		if addr := normalizeServerAddress(s); addr != "" {
			out = append(out, addr)
		}
	}
	return &staticServerList{servers: out}
}

type staticServerList struct {
	servers []string
}

func (s *staticServerList) GetServers(_ context.Context) ([]string, error) {
	return append([]string(nil), s.servers...), nil
}

// ServerListHTTP creates an interfaces.ServerListSource that fetches the naming server list from an address
// server: GET baseURL/serverlist returning one "host[:port]" per line. Panics on empty baseURL or nil client.
//
// Parameters: baseURL - address server base URL (e.g. http://address-server:8080/nacos), no trailing slash; client - HTTP client (main uses 10s timeout).
//
// Returns: interfaces.ServerListSource (*serverListHTTP).
//
// Called from cmd/main when naming.server_list_url is configured.
func ServerListHTTP(baseURL string, client *http.Client) interfaces.ServerListSource {
	return &serverListHTTP{
		baseURL: helpers.StrPanic(baseURL, "adapters.server_list.go: baseURL is required"),
		client:  helpers.NilPanic(client, "adapters.server_list.go: http client is required"),
	}
}

// serverListHTTP implements interfaces.ServerListSource over HTTP. Used by service.ServerManager on every refresh.
type serverListHTTP struct {
	baseURL string
	client  *http.Client
}

// GetServers performs GET baseURL/serverlist. Blank lines and "#" comments are skipped; a bare host gets DefaultServerPort.
//
// Parameter ctx - request context (ServerManager applies a 5s timeout).
//
// Returns: (addresses, nil) on 200 (possibly empty) or 404 (empty); (nil, error) on other status or network error.
//
// Called from service.ServerManager.refresh.
func (s *serverListHTTP) GetServers(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/serverlist", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return []string{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("address server returned %d", resp.StatusCode)
	}
	out := []string{}
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if addr := normalizeServerAddress(line); addr != "" {
			out = append(out, addr)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeServerAddress(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(s); err == nil {
		return s
	}
	return net.JoinHostPort(s, strconv.Itoa(DefaultServerPort))
}
