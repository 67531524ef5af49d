package service

import (
	"context"
	"encoding/json"
	"fmt"

	"mynaming/domain"
	"mynaming/helpers"
	"mynaming/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// NotifySubscriberHandler handles server pushes of NotifySubscriberRequest: the pushed snapshot is
// stored in the service info cache and acknowledged with a NotifySubscriberResponse.
type NotifySubscriberHandler struct {
	cache  interfaces.ServiceInfoCache
	logger log.Logger
}

// NewNotifySubscriberHandler creates the handler. Panics on nil cache or logger.
//
// Called from NamingProxy.Start when registering push handlers on the transport.
func NewNotifySubscriberHandler(cache interfaces.ServiceInfoCache, logger log.Logger) *NotifySubscriberHandler {
	return &NotifySubscriberHandler{
		cache:  helpers.NilPanic(cache, "service.push_handler.go: service info cache is required"),
		logger: log.With(helpers.NilPanic(logger, "service.push_handler.go: logger is required"), "component", "push_handler"),
	}
}

// HandlePush decodes body as NotifySubscriberRequest and updates the cache.
//
// Returns: the ack response; an error when body is not a valid request or the cache rejects the snapshot.
func (h *NotifySubscriberHandler) HandlePush(ctx context.Context, body []byte) (domain.Response, error) {
	var req domain.NotifySubscriberRequest
	if err := json.Unmarshal(body, &req); err != nil {
		level.Error(h.logger).Log("msg", "failed to decode push", "err", err)
		return nil, fmt.Errorf("decode %s: %w", domain.RequestTypeNotifySubscriber, err)
	}
	if err := h.cache.ProcessService(ctx, req.ServiceInfo); err != nil {
		level.Error(h.logger).Log("msg", "failed to cache pushed service", "service", req.ServiceInfo.Key(), "err", err)
		return nil, err
	}
	level.Info(h.logger).Log("msg", "service changed", "service", req.ServiceInfo.Key(), "hosts", len(req.ServiceInfo.Hosts))

	env := domain.OKEnvelope()
	env.RequestID = req.RequestID
	return domain.NotifySubscriberResponse{ResponseEnvelope: env}, nil
}
