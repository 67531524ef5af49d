package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mynaming/domain"
	"mynaming/interfaces/mock"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Run("registerer_nil_panics", func(t *testing.T) {
		assert.PanicsWithValue(t, "service.metrics.go: registerer is required", func() {
			NewMetrics(nil)
		})
	})

	t.Run("duplicate_registration_panics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		NewMetrics(reg)
		assert.Panics(t, func() { NewMetrics(reg) })
	})
}

func TestMetrics_RequestResults(t *testing.T) {
	ctx := context.Background()
	metrics := newTestMetrics()
	replies := []domain.Response{
		okInstanceResponse(),
		domain.InstanceResponse{ResponseEnvelope: domain.ResponseEnvelope{ResultCode: 500, ErrorCode: 500, Message: "overflow"}},
		domain.ServiceListResponse{ResponseEnvelope: domain.OKEnvelope()},
		nil,
	}
	i := 0
	transport := &mock.TransportMock{
		SendFunc: func(ctx context.Context, req domain.Request, timeout time.Duration) (domain.Response, error) {
			defer func() { i++ }()
			if replies[i] == nil {
				return nil, errors.New("broken pipe")
			}
			return replies[i], nil
		},
	}
	r := NewRequester(transport, staticCredentials(domain.Credentials{}), fixedClock(), time.Second, log.NewNopLogger(), metrics)
	for range replies {
		_, _ = r.Send(ctx, domain.NewInstanceRequest(testKey(), domain.OpRegisterInstance, testInstance()), domain.KindInstanceResponse)
	}

	for _, result := range []string{resultOK, string(KindApplication), string(KindProtocol), string(KindRemote)} {
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requests.WithLabelValues(domain.RequestTypeInstance, result)), result)
	}
	require.Equal(t, 1, testutil.CollectAndCount(metrics.requestDuration))
}

func TestMetrics_RedoEntries(t *testing.T) {
	metrics := newTestMetrics()
	metrics.setRedoEntries(3, 1)
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.redoEntries.WithLabelValues(redoKindRegistration)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.redoEntries.WithLabelValues(redoKindSubscription)))
}
