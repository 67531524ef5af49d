package service

import (
	"context"
	"fmt"
	"time"

	"mynaming/auth"
	"mynaming/domain"
	"mynaming/helpers"
	"mynaming/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Requester wraps a naming request into a signed call over the transport and validates the reply:
// (1) transport security info and HMAC signing headers are added, (2) the request is sent with the
// per-client timeout, (3) a non-200 envelope becomes an application error, (4) a reply of the wrong
// kind becomes a protocol error, (5) anything else becomes a remote error wrapping the cause.
type Requester struct {
	transport    interfaces.Transport
	credentials  interfaces.CredentialsProvider
	timeProvider interfaces.TimeProvider
	timeout      time.Duration
	logger       log.Logger
	metrics      *Metrics
}

// NewRequester creates the codec and validator used by NamingProxy and RecoveryDriver. Panics on nil dependencies or non-positive timeout.
//
// Parameters: transport - RPC channel; credentials - access keys, fetched per request; timeProvider - clock for sign timestamps; timeout - per-RPC timeout; logger - failures are logged at error level; metrics - request counters.
//
// Returns: *Requester.
//
// Called from NewNamingProxy.
func NewRequester(
	transport interfaces.Transport,
	credentials interfaces.CredentialsProvider,
	timeProvider interfaces.TimeProvider,
	timeout time.Duration,
	logger log.Logger,
	metrics *Metrics,
) *Requester {
	if timeout <= 0 {
		panic("service.requester.go: timeout must be positive")
	}
	return &Requester{
		transport:    helpers.NilPanic(transport, "service.requester.go: transport is required"),
		credentials:  helpers.NilPanic(credentials, "service.requester.go: credentials provider is required"),
		timeProvider: helpers.NilPanic(timeProvider, "service.requester.go: time provider is required"),
		timeout:      timeout,
		logger:       log.With(helpers.NilPanic(logger, "service.requester.go: logger is required"), "component", "requester"),
		metrics:      helpers.NilPanic(metrics, "service.requester.go: metrics is required"),
	}
}

// Send signs req, sends it and validates the reply against expected.
//
// Parameters: ctx - caller context (cancellation aborts the wait); req - request (its header map is mutated); expected - response kind the request must produce.
//
// Returns: (response, nil) when result code is 200 and the kind matches; (nil, *NamingError) otherwise - KindApplication with the server's code and message, KindProtocol on kind mismatch, KindRemote wrapping any transport/serialization failure.
//
// Called from requestAs for every public operation and every redo replay.
func (r *Requester) Send(ctx context.Context, req domain.Request, expected domain.ResponseKind) (domain.Response, error) {
	start := time.Now()
	resp, err := r.send(ctx, req, expected)
	r.metrics.observeRequest(req.RequestType(), err, time.Since(start))
	if err != nil {
		logger := log.With(r.logger,
			"type", req.RequestType(),
			"service", req.GroupedServiceName(),
			"request_id", req.ID(),
		)
		if ne := ToNamingError(err); ne != nil && ne.Inner != nil {
			logger = log.With(logger, "cause_type", fmt.Sprintf("%T", ne.Inner), "cause", ne.Inner.Error())
		}
		level.Error(logger).Log("msg", "failed to invoke naming server", "err", err)
	}
	return resp, err
}

func (r *Requester) send(ctx context.Context, req domain.Request, expected domain.ResponseKind) (domain.Response, error) {
	headers := req.Headers()
	if err := r.transport.InjectSecurityInfo(ctx, headers); err != nil {
		return nil, NewRemoteError(CodeServerError, "inject security info failed", err)
	}
	signed := auth.Sign(req.GroupedServiceName(), r.credentials.Credentials(), r.timeProvider.Now().UnixMilli())
	helpers.MergeHeaders(headers, signed)

	resp, err := r.transport.Send(ctx, req, r.timeout)
	if err != nil {
		return nil, NewRemoteError(CodeServerError, "request naming server failed", err)
	}
	if resp == nil {
		return nil, NewRemoteError(CodeServerError, "request naming server failed", fmt.Errorf("empty response to %s", req.RequestType()))
	}
	env := resp.Envelope()
	if env.ResultCode != domain.ResultCodeSuccess {
		code := env.ErrorCode
		if code == 0 {
			code = env.ResultCode
		}
		return nil, NewApplicationError(code, env.Message)
	}
	if resp.Kind() != expected {
		return nil, NewProtocolError(msgInvalidResponse)
	}
	return resp, nil
}

// requestAs sends req expecting the kind of T and returns the reply as T.
func requestAs[T domain.Response](ctx context.Context, r *Requester, req domain.Request) (T, error) {
	var zero T
	resp, err := r.Send(ctx, req, zero.Kind())
	if err != nil {
		return zero, err
	}
	typed, ok := resp.(T)
	if !ok {
		return zero, NewProtocolError(msgInvalidResponse)
	}
	return typed, nil
}
