package domain

import (
	"github.com/google/uuid"
)

// Request type names, sent on the wire so the server can decode the body.
const (
	RequestTypeInstance         = "InstanceRequest"
	RequestTypeBatchInstance    = "BatchInstanceRequest"
	RequestTypeServiceList      = "ServiceListRequest"
	RequestTypeSubscribeService = "SubscribeServiceRequest"
	RequestTypeNotifySubscriber = "NotifySubscriberRequest"
)

// Instance operation types carried in InstanceRequest.Type and BatchInstanceRequest.Type.
const (
	OpRegisterInstance      = "registerInstance"
	OpDeregisterInstance    = "deregisterInstance"
	OpBatchRegisterInstance = "batchRegisterInstance"
)

// ModuleNaming is the module field of every naming request.
const ModuleNaming = "naming"

// Request is an outbound naming request. Implementations are the pointer types in this file;
// the transport marshals them as JSON and tags them with RequestType.
type Request interface {
	// RequestType is the wire type name (e.g. "InstanceRequest").
	RequestType() string
	// Headers returns the live header map; callers may add entries before sending.
	Headers() map[string]string
	// PutHeader sets one header.
	PutHeader(key, value string)
	// GroupedServiceName is the "group@@service" key the request is signed for.
	GroupedServiceName() string
	// ID is the client-generated request id.
	ID() string
}

// NamingRequest holds the fields shared by every naming request.
type NamingRequest struct {
	RequestID      string            `json:"requestId"`
	RequestHeaders map[string]string `json:"headers"`
	Namespace      string            `json:"namespace"`
	ServiceName    string            `json:"serviceName"`
	GroupName      string            `json:"groupName"`
	Module         string            `json:"module"`
}

func newNamingRequest(key ServiceKey) NamingRequest {
	return NamingRequest{
		RequestID:      uuid.New().String(),
		RequestHeaders: make(map[string]string),
		Namespace:      key.Namespace,
		ServiceName:    key.Name,
		GroupName:      key.Group,
		Module:         ModuleNaming,
	}
}

func (r *NamingRequest) Headers() map[string]string {
	if r.RequestHeaders == nil {
		r.RequestHeaders = make(map[string]string)
	}
	return r.RequestHeaders
}

func (r *NamingRequest) PutHeader(key, value string) {
	r.Headers()[key] = value
}

func (r *NamingRequest) GroupedServiceName() string {
	return GroupedName(r.ServiceName, r.GroupName)
}

func (r *NamingRequest) ID() string {
	return r.RequestID
}

// InstanceRequest registers or deregisters one instance (Type is OpRegisterInstance or OpDeregisterInstance).
type InstanceRequest struct {
	NamingRequest
	Type     string   `json:"type"`
	Instance Instance `json:"instance"`
}

// NewInstanceRequest builds an InstanceRequest for key with operation opType; the instance is copied.
func NewInstanceRequest(key ServiceKey, opType string, instance Instance) *InstanceRequest {
	return &InstanceRequest{
		NamingRequest: newNamingRequest(key),
		Type:          opType,
		Instance:      instance.Clone(),
	}
}

func (r *InstanceRequest) RequestType() string { return RequestTypeInstance }

// BatchInstanceRequest replaces the full instance list registered by this client for one service.
type BatchInstanceRequest struct {
	NamingRequest
	Type      string     `json:"type"`
	Instances []Instance `json:"instances"`
}

// NewBatchInstanceRequest builds a BatchInstanceRequest with Type OpBatchRegisterInstance.
func NewBatchInstanceRequest(key ServiceKey, instances []Instance) *BatchInstanceRequest {
	return &BatchInstanceRequest{
		NamingRequest: newNamingRequest(key),
		Type:          OpBatchRegisterInstance,
		Instances:     CloneInstances(instances),
	}
}

func (r *BatchInstanceRequest) RequestType() string { return RequestTypeBatchInstance }

// ServiceListRequest asks for one page of service names in a namespace and group.
type ServiceListRequest struct {
	NamingRequest
	PageNo   int    `json:"pageNo"`
	PageSize int    `json:"pageSize"`
	Selector string `json:"selector,omitempty"`
}

// NewServiceListRequest builds a ServiceListRequest; ServiceName is empty.
func NewServiceListRequest(namespace, group string, pageNo, pageSize int) *ServiceListRequest {
	return &ServiceListRequest{
		NamingRequest: newNamingRequest(ServiceKey{Namespace: namespace, Group: group}),
		PageNo:        pageNo,
		PageSize:      pageSize,
	}
}

func (r *ServiceListRequest) RequestType() string { return RequestTypeServiceList }

// SubscribeServiceRequest subscribes (Subscribe=true) or unsubscribes to pushes for a service and cluster set.
type SubscribeServiceRequest struct {
	NamingRequest
	Subscribe bool   `json:"subscribe"`
	Clusters  string `json:"clusters"`
}

// NewSubscribeServiceRequest builds a SubscribeServiceRequest.
func NewSubscribeServiceRequest(key ServiceKey, clusters string, subscribe bool) *SubscribeServiceRequest {
	return &SubscribeServiceRequest{
		NamingRequest: newNamingRequest(key),
		Subscribe:     subscribe,
		Clusters:      clusters,
	}
}

func (r *SubscribeServiceRequest) RequestType() string { return RequestTypeSubscribeService }

// NotifySubscriberRequest is pushed by the server when a subscribed service changes.
type NotifySubscriberRequest struct {
	NamingRequest
	ServiceInfo Service `json:"serviceInfo"`
}

func (r *NotifySubscriberRequest) RequestType() string { return RequestTypeNotifySubscriber }
