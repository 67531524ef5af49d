package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"mynaming/domain"
	"mynaming/helpers"
	"mynaming/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Full gRPC method names served by the naming server.
const (
	grpcRequestMethod  = "/naming.Request/request"
	grpcBiStreamMethod = "/naming.BiRequestStream/requestBiStream"
)

// ConnectionSetupType is the payload type of the first message sent on the push stream.
const ConnectionSetupType = "ConnectionSetupRequest"

// Client labels sent at connection setup.
const (
	LabelSource = "source"
	LabelModule = "module"
)

const (
	defaultSwitchAfter      = 3 * time.Second
	defaultStreamRetryDelay = time.Second
)

var (
	// ErrTransportClosed is returned by Start and Send after Shutdown.
	ErrTransportClosed = errors.New("transport is closed")
	// ErrTransportNotStarted is returned by Send before Start.
	ErrTransportNotStarted = errors.New("transport is not started")
)

// Payload is the JSON envelope carried in a wrapperspb.BytesValue in both directions: the type name
// of the body, the request headers and the JSON body itself.
type Payload struct {
	Type    string            `json:"type"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body"`
}

// ConnectionSetup is the body of the first push stream message.
type ConnectionSetup struct {
	ClientID string            `json:"clientId"`
	Labels   map[string]string `json:"labels"`
}

// GRPCTransportConfig tunes a GRPCTransport. Zero values get defaults.
type GRPCTransportConfig struct {
	// ClientID identifies this client at connection setup (random uuid when empty).
	ClientID string
	// Labels are merged over source=sdk, module=naming.
	Labels map[string]string
	// SwitchAfter is how long the channel may stay in failure before the next server is tried.
	SwitchAfter time.Duration
	// StreamRetryDelay is the pause before reopening a broken push stream.
	StreamRetryDelay time.Duration
	// DialOptions are appended to the default (insecure) dial options.
	DialOptions []grpc.DialOption
}

// GRPCTransport implements interfaces.Transport over one gRPC channel to a naming server picked by a
// ServerSelector. Requests are unary calls on /naming.Request/request; server pushes arrive on the
// /naming.BiRequestStream/requestBiStream stream and are acknowledged on it. A watcher goroutine
// follows the channel connectivity state, reports CONNECTED/DISCONNECTED/RECONNECTED to listeners and
// switches to the next server after SwitchAfter of continuous failure.
// Fields: selector, security, logger, cfg; under mu: conn, server, connCancel, started, closed.
type GRPCTransport struct {
	selector interfaces.ServerSelector
	security interfaces.SecurityInfoInjector
	logger   log.Logger
	cfg      GRPCTransportConfig

	mu         sync.RWMutex
	rootCtx    context.Context
	cancel     context.CancelFunc
	conn       *grpc.ClientConn
	server     string
	connCancel context.CancelFunc
	started    bool
	closed     bool
	wg         sync.WaitGroup

	ready         atomic.Bool
	everConnected atomic.Bool

	listenersMu    sync.RWMutex
	listeners      map[uint64]interfaces.ConnectionListener
	nextListenerID uint64

	handlersMu sync.RWMutex
	handlers   map[string]interfaces.ServerPushHandler
}

// NewGRPCTransport creates the transport (not started). Panics on nil selector, security injector or logger.
//
// Parameters: selector - naming server addresses (service.ServerManager); security - injects login token and static headers; logger - logger; cfg - client id, labels and timings.
//
// Returns: *GRPCTransport.
//
// Called from cmd/main.
func NewGRPCTransport(
	selector interfaces.ServerSelector,
	security interfaces.SecurityInfoInjector,
	logger log.Logger,
	cfg GRPCTransportConfig,
) *GRPCTransport {
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	labels := map[string]string{LabelSource: "sdk", LabelModule: domain.ModuleNaming}
	maps.Copy(labels, cfg.Labels)
	cfg.Labels = labels
	if cfg.SwitchAfter <= 0 {
		cfg.SwitchAfter = defaultSwitchAfter
	}
	if cfg.StreamRetryDelay <= 0 {
		cfg.StreamRetryDelay = defaultStreamRetryDelay
	}
	return &GRPCTransport{
		selector:  helpers.NilPanic(selector, "adapters.grpc_transport.go: server selector is required"),
		security:  helpers.NilPanic(security, "adapters.grpc_transport.go: security injector is required"),
		logger:    log.With(helpers.NilPanic(logger, "adapters.grpc_transport.go: logger is required"), "component", "grpc_transport"),
		cfg:       cfg,
		listeners: make(map[uint64]interfaces.ConnectionListener),
		handlers:  make(map[string]interfaces.ServerPushHandler),
	}
}

// ClientID returns the id sent at connection setup.
func (t *GRPCTransport) ClientID() string {
	return t.cfg.ClientID
}

// Start picks the first server and starts connecting in the background; CONNECTED is reported once the channel is ready.
//
// Parameters: ctx - its values (not its cancellation) are inherited by background goroutines.
//
// Returns: nil; ErrTransportClosed after Shutdown; an error when no server can be selected or dialed.
//
// Called from service.NamingProxy.Start.
func (t *GRPCTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	if t.started {
		return nil
	}
	addr, err := t.selector.NextServer()
	if err != nil {
		return fmt.Errorf("select naming server: %w", err)
	}
	conn, err := t.dial(addr)
	if err != nil {
		return fmt.Errorf("dial naming server %s: %w", addr, err)
	}
	t.rootCtx, t.cancel = context.WithCancel(context.WithoutCancel(ctx))
	t.started = true
	t.attachLocked(addr, conn)
	return nil
}

func (t *GRPCTransport) dial(addr string) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(TransportErrorUnaryInterceptor(t.logger)),
	}
	opts = append(opts, t.cfg.DialOptions...)
	return grpc.NewClient(addr, opts...)
}

// attachLocked makes conn the current channel and starts its watcher and push stream goroutines. Caller must hold t.mu.
func (t *GRPCTransport) attachLocked(addr string, conn *grpc.ClientConn) {
	connCtx, connCancel := context.WithCancel(t.rootCtx)
	t.conn, t.server, t.connCancel = conn, addr, connCancel
	conn.Connect()
	t.wg.Add(2)
	go func() {
		defer t.wg.Done()
		t.watch(connCtx, addr, conn)
	}()
	go func() {
		defer t.wg.Done()
		t.runPushStream(connCtx, conn)
	}()
	level.Info(t.logger).Log("msg", "connecting to naming server", "server", addr)
}

// watch follows the connectivity state of conn until ctx is done or the channel is replaced.
func (t *GRPCTransport) watch(ctx context.Context, addr string, conn *grpc.ClientConn) {
	var failingSince time.Time
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			failingSince = time.Time{}
			t.markUp(addr)
		case connectivity.Shutdown:
			t.markDown(addr)
			return
		default:
			t.markDown(addr)
			if state == connectivity.TransientFailure && failingSince.IsZero() {
				failingSince = time.Now()
			}
			if state == connectivity.Idle {
				conn.Connect()
			}
		}

		waitCtx, cancel := ctx, context.CancelFunc(func() {})
		if !failingSince.IsZero() {
			waitCtx, cancel = context.WithDeadline(ctx, failingSince.Add(t.cfg.SwitchAfter))
		}
		changed := conn.WaitForStateChange(waitCtx, state)
		cancel()
		if ctx.Err() != nil {
			return
		}
		if !changed {
			if t.switchServer(conn, addr) {
				return
			}
			failingSince = time.Now()
		}
	}
}

func (t *GRPCTransport) markUp(addr string) {
	if !t.ready.CompareAndSwap(false, true) {
		return
	}
	ev := domain.ConnectionConnected
	if t.everConnected.Swap(true) {
		ev = domain.ConnectionReconnected
	}
	level.Info(t.logger).Log("msg", "naming server connected", "server", addr, "event", ev.String())
	t.emit(ev)
}

func (t *GRPCTransport) markDown(addr string) {
	if !t.ready.CompareAndSwap(true, false) {
		return
	}
	if t.isClosed() {
		return
	}
	level.Warn(t.logger).Log("msg", "naming server disconnected", "server", addr)
	t.emit(domain.ConnectionDisconnected)
}

// switchServer replaces oldConn with a channel to the next server. Returns true when oldConn is no longer current.
func (t *GRPCTransport) switchServer(oldConn *grpc.ClientConn, oldAddr string) bool {
	addr, err := t.selector.NextServer()
	if err != nil {
		level.Warn(t.logger).Log("msg", "no server to switch to", "server", oldAddr, "err", err)
		return false
	}
	if addr == oldAddr {
		return false
	}
	conn, err := t.dial(addr)
	if err != nil {
		level.Warn(t.logger).Log("msg", "failed to dial next server", "server", addr, "err", err)
		return false
	}

	t.mu.Lock()
	if t.closed || t.conn != oldConn {
		t.mu.Unlock()
		_ = conn.Close()
		return true
	}
	oldCancel := t.connCancel
	t.attachLocked(addr, conn)
	t.mu.Unlock()

	oldCancel()
	_ = oldConn.Close()
	level.Info(t.logger).Log("msg", "switched naming server", "from", oldAddr, "to", addr)
	return true
}

// runPushStream keeps the push stream of conn open while conn is current.
func (t *GRPCTransport) runPushStream(ctx context.Context, conn *grpc.ClientConn) {
	for {
		if !waitReady(ctx, conn) {
			return
		}
		err := t.servePushStream(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		level.Warn(t.logger).Log("msg", "push stream closed", "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(t.cfg.StreamRetryDelay):
		}
	}
}

func waitReady(ctx context.Context, conn *grpc.ClientConn) bool {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return true
		case connectivity.Shutdown:
			return false
		}
		if !conn.WaitForStateChange(ctx, state) {
			return false
		}
	}
}

// servePushStream opens the stream, sends the connection setup and answers pushes until the stream breaks.
func (t *GRPCTransport) servePushStream(ctx context.Context, conn *grpc.ClientConn) error {
	stream, err := conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true, ClientStreams: true}, grpcBiStreamMethod)
	if err != nil {
		return err
	}
	setup := ConnectionSetup{ClientID: t.cfg.ClientID, Labels: t.cfg.Labels}
	if err := sendPayload(stream, ConnectionSetupType, nil, setup); err != nil {
		return err
	}
	for {
		in := &wrapperspb.BytesValue{}
		if err := stream.RecvMsg(in); err != nil {
			return err
		}
		var push Payload
		if err := json.Unmarshal(in.GetValue(), &push); err != nil {
			level.Warn(t.logger).Log("msg", "malformed push payload", "err", err)
			continue
		}
		resp := t.handlePush(ctx, push)
		if err := sendPayload(stream, string(resp.Kind()), nil, resp); err != nil {
			return err
		}
	}
}

func (t *GRPCTransport) handlePush(ctx context.Context, push Payload) domain.Response {
	t.handlersMu.RLock()
	handler, ok := t.handlers[push.Type]
	t.handlersMu.RUnlock()
	if !ok {
		level.Warn(t.logger).Log("msg", "no handler for push", "type", push.Type)
		return domain.ErrorResponse{ResponseEnvelope: domain.ResponseEnvelope{ResultCode: 501, ErrorCode: 501, Message: "no handler for " + push.Type}}
	}
	resp, err := handler.HandlePush(ctx, push.Body)
	if err != nil {
		return domain.ErrorResponse{ResponseEnvelope: domain.ResponseEnvelope{ResultCode: 500, ErrorCode: 500, Message: err.Error()}}
	}
	return resp
}

func sendPayload(stream grpc.ClientStream, payloadType string, headers map[string]string, body any) error {
	raw, err := encodePayload(payloadType, headers, body)
	if err != nil {
		return err
	}
	return stream.SendMsg(&wrapperspb.BytesValue{Value: raw})
}

func encodePayload(payloadType string, headers map[string]string, body any) ([]byte, error) {
	rawBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", payloadType, err)
	}
	return json.Marshal(Payload{Type: payloadType, Headers: headers, Body: rawBody})
}

// Send performs one unary request on the current channel. The call waits for the channel to become ready, bounded by timeout.
//
// Parameters: ctx - caller context; req - request (its headers are also sent as gRPC metadata); timeout - call deadline.
//
// Returns: the decoded response; ErrTransportNotStarted/ErrTransportClosed; gRPC errors mapped by TransportErrorUnaryInterceptor; decode errors.
//
// Called from service.Requester.Send.
func (t *GRPCTransport) Send(ctx context.Context, req domain.Request, timeout time.Duration) (domain.Response, error) {
	conn, err := t.currentConn()
	if err != nil {
		return nil, err
	}
	payload, err := encodePayload(req.RequestType(), req.Headers(), req)
	if err != nil {
		return nil, err
	}
	md := helpers.HeadersToMD(req.Headers())
	md.Set(helpers.HeaderRequestType, req.RequestType())
	ctx, cancel := context.WithTimeout(metadata.NewOutgoingContext(ctx, md), timeout)
	defer cancel()

	out := &wrapperspb.BytesValue{}
	var header metadata.MD
	if err := conn.Invoke(ctx, grpcRequestMethod, &wrapperspb.BytesValue{Value: payload}, out, grpc.WaitForReady(true), grpc.Header(&header)); err != nil {
		return nil, err
	}
	var reply Payload
	if err := json.Unmarshal(out.GetValue(), &reply); err != nil {
		return nil, fmt.Errorf("decode reply to %s: %w", req.RequestType(), err)
	}
	// servers may tag the reply in response metadata only
	if reply.Type == "" {
		reply.Type, _ = helpers.GetHeaderValue(header, helpers.HeaderRequestType)
	}
	return domain.DecodeResponse(reply.Type, reply.Body)
}

func (t *GRPCTransport) currentConn() (*grpc.ClientConn, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return nil, ErrTransportClosed
	}
	if !t.started {
		return nil, ErrTransportNotStarted
	}
	return t.conn, nil
}

// InjectSecurityInfo delegates to the configured injector.
func (t *GRPCTransport) InjectSecurityInfo(ctx context.Context, headers map[string]string) error {
	return t.security.InjectSecurityInfo(ctx, headers)
}

// IsRunning reports whether the transport is started, not shut down and its channel is ready.
func (t *GRPCTransport) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.started && !t.closed && t.ready.Load()
}

// Server returns the address of the current channel.
func (t *GRPCTransport) Server() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.server
}

// RegisterServerPushHandler routes pushes of requestType to handler, replacing any previous one.
func (t *GRPCTransport) RegisterServerPushHandler(requestType string, handler interfaces.ServerPushHandler) {
	t.handlersMu.Lock()
	defer t.handlersMu.Unlock()
	t.handlers[requestType] = helpers.NilPanic(handler, "adapters.grpc_transport.go: push handler is required")
}

// RegisterConnectionListener adds listener and returns a func removing it. The func is idempotent.
func (t *GRPCTransport) RegisterConnectionListener(listener interfaces.ConnectionListener) func() {
	listener = helpers.NilPanic(listener, "adapters.grpc_transport.go: connection listener is required")
	t.listenersMu.Lock()
	id := t.nextListenerID
	t.nextListenerID++
	t.listeners[id] = listener
	t.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.listenersMu.Lock()
			delete(t.listeners, id)
			t.listenersMu.Unlock()
		})
	}
}

func (t *GRPCTransport) emit(ev domain.ConnectionEvent) {
	t.listenersMu.RLock()
	listeners := make([]interfaces.ConnectionListener, 0, len(t.listeners))
	for _, l := range t.listeners {
		listeners = append(listeners, l)
	}
	t.listenersMu.RUnlock()
	for _, l := range listeners {
		l.OnConnectionEvent(ev)
	}
}

func (t *GRPCTransport) isClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// Shutdown closes the channel and waits for background goroutines. Idempotent.
//
// Called from service.NamingProxy.Close.
func (t *GRPCTransport) Shutdown() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn, cancel := t.conn, t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if conn != nil {
		err = conn.Close()
	}
	t.wg.Wait()
	t.ready.Store(false)
	level.Info(t.logger).Log("msg", "transport shut down")
	return err
}
