package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrServerUnavailable wraps gRPC Unavailable errors returned by the naming server connection.
var ErrServerUnavailable = errors.New("naming server unavailable")

// TransportErrorUnaryInterceptor returns a unary client interceptor: runs the call and maps the returned error via grpcErrorToTransport, logging it for diagnostics.
//
// Parameter logger - logger for "naming rpc error" with method and err.
//
// Returns: grpc.UnaryClientInterceptor. Mapped errors keep the original status in their chain.
//
// Called from GRPCTransport.dial (grpc.WithChainUnaryInterceptor).
func TransportErrorUnaryInterceptor(logger log.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		err := invoker(ctx, method, req, reply, cc, opts...)
		if err != nil {
			level.Debug(logger).Log(
				"msg", "naming rpc error",
				"method", method,
				"err", err,
			)
			err = grpcErrorToTransport(err)
		}
		return err
	}
}

// grpcErrorToTransport maps gRPC status errors to errors callers can match with errors.Is: DeadlineExceeded → context.DeadlineExceeded; Canceled → context.Canceled; Unavailable → ErrServerUnavailable; anything else unchanged.
//
// Parameter err - error returned by the invoker; nil is allowed.
//
// Returns: nil if err == nil; otherwise the mapped error wrapping err.
//
// Called from TransportErrorUnaryInterceptor.
func grpcErrorToTransport(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	case codes.Canceled:
		return fmt.Errorf("%w: %w", context.Canceled, err)
	case codes.Unavailable:
		return fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	default:
		return err
	}
}
