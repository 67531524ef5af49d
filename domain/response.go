package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ResponseKind tags each variant of Response; the validator compares tags instead of inspecting types.
type ResponseKind string

const (
	KindInstanceResponse         ResponseKind = "InstanceResponse"
	KindBatchInstanceResponse    ResponseKind = "BatchInstanceResponse"
	KindServiceListResponse      ResponseKind = "ServiceListResponse"
	KindSubscribeServiceResponse ResponseKind = "SubscribeServiceResponse"
	KindNotifySubscriberResponse ResponseKind = "NotifySubscriberResponse"
	KindErrorResponse            ResponseKind = "ErrorResponse"
)

// ResultCodeSuccess is the envelope result code of an accepted request.
const ResultCodeSuccess = 200

// ErrUnknownResponseKind is returned by DecodeResponse for a type name outside the closed set.
var ErrUnknownResponseKind = errors.New("unknown response kind")

// Response is the closed set of server responses. Every variant embeds ResponseEnvelope.
type Response interface {
	Kind() ResponseKind
	Envelope() ResponseEnvelope
	IsSuccess() bool
}

// ResponseEnvelope is the common part of every response.
type ResponseEnvelope struct {
	ResultCode int    `json:"resultCode"`
	ErrorCode  int    `json:"errorCode"`
	Message    string `json:"message,omitempty"`
	Success    bool   `json:"success"`
	RequestID  string `json:"requestId,omitempty"`
}

// OKEnvelope returns an envelope with result code 200 and success=true.
func OKEnvelope() ResponseEnvelope {
	return ResponseEnvelope{ResultCode: ResultCodeSuccess, Success: true}
}

func (e ResponseEnvelope) Envelope() ResponseEnvelope { return e }

func (e ResponseEnvelope) IsSuccess() bool { return e.Success }

// InstanceResponse answers an InstanceRequest.
type InstanceResponse struct {
	ResponseEnvelope
	Type string `json:"type,omitempty"`
}

func (InstanceResponse) Kind() ResponseKind { return KindInstanceResponse }

// BatchInstanceResponse answers a BatchInstanceRequest.
type BatchInstanceResponse struct {
	ResponseEnvelope
	Type string `json:"type,omitempty"`
}

func (BatchInstanceResponse) Kind() ResponseKind { return KindBatchInstanceResponse }

// ServiceListResponse answers a ServiceListRequest.
type ServiceListResponse struct {
	ResponseEnvelope
	Count        int      `json:"count"`
	ServiceNames []string `json:"serviceNames"`
}

func (ServiceListResponse) Kind() ResponseKind { return KindServiceListResponse }

// SubscribeServiceResponse answers a SubscribeServiceRequest with the current snapshot.
type SubscribeServiceResponse struct {
	ResponseEnvelope
	ServiceInfo Service `json:"serviceInfo"`
}

func (SubscribeServiceResponse) Kind() ResponseKind { return KindSubscribeServiceResponse }

// NotifySubscriberResponse acknowledges a NotifySubscriberRequest push.
type NotifySubscriberResponse struct {
	ResponseEnvelope
}

func (NotifySubscriberResponse) Kind() ResponseKind { return KindNotifySubscriberResponse }

// ErrorResponse is what the server returns when it cannot handle a request at all.
type ErrorResponse struct {
	ResponseEnvelope
}

func (ErrorResponse) Kind() ResponseKind { return KindErrorResponse }

// DecodeResponse decodes a JSON body into the variant named by kind.
//
// Parameters: kind - wire type name (e.g. "InstanceResponse"); body - JSON body.
//
// Returns: (Response, nil) on success; (nil, error) wrapping ErrUnknownResponseKind for a kind outside the closed set or the json error for a malformed body.
//
// Called from adapters.GRPCTransport.Send when decoding the server reply.
func DecodeResponse(kind string, body []byte) (Response, error) {
	switch ResponseKind(kind) {
	case KindInstanceResponse:
		return decodeAs[InstanceResponse](body)
	case KindBatchInstanceResponse:
		return decodeAs[BatchInstanceResponse](body)
	case KindServiceListResponse:
		return decodeAs[ServiceListResponse](body)
	case KindSubscribeServiceResponse:
		return decodeAs[SubscribeServiceResponse](body)
	case KindNotifySubscriberResponse:
		return decodeAs[NotifySubscriberResponse](body)
	case KindErrorResponse:
		return decodeAs[ErrorResponse](body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResponseKind, kind)
	}
}

func decodeAs[T Response](body []byte) (Response, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}
