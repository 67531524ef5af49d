package main

import (
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthStatus is the JSON body of GET /health.
type healthStatus struct {
	Status string `json:"status"`
}

// newHTTPServer builds the echo server exposing GET /health (200 UP while the naming server is reachable, 503 DOWN otherwise)
// and GET /metrics (Prometheus exposition of gatherer).
//
// Parameters: healthy - NamingProxy.ServerHealth; gatherer - metrics registry; logger - request errors are logged.
//
// Called from main.
func newHTTPServer(healthy func() bool, gatherer prometheus.Gatherer, logger log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		level.Warn(logger).Log("msg", "http request failed", "path", c.Path(), "err", err)
		e.DefaultHTTPErrorHandler(err, c)
	}

	e.GET("/health", func(c echo.Context) error {
		if healthy() {
			return c.JSON(http.StatusOK, healthStatus{Status: "UP"})
		}
		return c.JSON(http.StatusServiceUnavailable, healthStatus{Status: "DOWN"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return e
}
