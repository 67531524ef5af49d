package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponse(t *testing.T) {
	t.Run("service_list_variant", func(t *testing.T) {
		body := []byte(`{"resultCode":200,"success":true,"count":2,"serviceNames":["a","b"]}`)
		resp, err := DecodeResponse("ServiceListResponse", body)
		require.NoError(t, err)
		assert.Equal(t, KindServiceListResponse, resp.Kind())
		list, ok := resp.(ServiceListResponse)
		require.True(t, ok)
		assert.Equal(t, 2, list.Count)
		assert.Equal(t, []string{"a", "b"}, list.ServiceNames)
		assert.True(t, resp.IsSuccess())
	})
	t.Run("error_variant_keeps_envelope", func(t *testing.T) {
		body := []byte(`{"resultCode":500,"errorCode":500,"message":"overflow"}`)
		resp, err := DecodeResponse("ErrorResponse", body)
		require.NoError(t, err)
		assert.Equal(t, KindErrorResponse, resp.Kind())
		assert.Equal(t, 500, resp.Envelope().ResultCode)
		assert.Equal(t, "overflow", resp.Envelope().Message)
		assert.False(t, resp.IsSuccess())
	})
	t.Run("unknown_kind", func(t *testing.T) {
		_, err := DecodeResponse("HealthCheckResponse", []byte(`{}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownResponseKind)
	})
	t.Run("malformed_body", func(t *testing.T) {
		_, err := DecodeResponse("InstanceResponse", []byte(`{`))
		require.Error(t, err)
	})
}

func TestNewRequests(t *testing.T) {
	key := NewServiceKey("ns", "g1", "svc-a")
	inst := Instance{IP: "10.0.0.1", Port: 8080, Metadata: map[string]string{"k": "v"}}
	req := NewInstanceRequest(key, OpRegisterInstance, inst)
	inst.Metadata["k"] = "changed"

	assert.Equal(t, RequestTypeInstance, req.RequestType())
	assert.Equal(t, "g1@@svc-a", req.GroupedServiceName())
	assert.Equal(t, "v", req.Instance.Metadata["k"])
	assert.Equal(t, ModuleNaming, req.Module)
	assert.NotEmpty(t, req.ID())

	req.PutHeader("app", "demo")
	assert.Equal(t, "demo", req.Headers()["app"])

	list := NewServiceListRequest("ns", DefaultGroup, 1, 10)
	assert.Equal(t, "DEFAULT_GROUP@@", list.GroupedServiceName())
	assert.NotEqual(t, req.ID(), list.ID())
}
