package domain

import (
	"maps"
	"net"
	"strconv"
)

// Instance is a single registrable endpoint of a service. The JSON names follow the naming server's
// instance representation.
type Instance struct {
	InstanceID  string            `json:"instanceId,omitempty"`
	IP          string            `json:"ip"`
	Port        int               `json:"port"`
	Weight      float64           `json:"weight"`
	Healthy     bool              `json:"healthy"`
	Enabled     bool              `json:"enabled"`
	Ephemeral   bool              `json:"ephemeral"`
	ClusterName string            `json:"clusterName,omitempty"`
	ServiceName string            `json:"serviceName,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Address returns "ip:port".
func (i Instance) Address() string {
	return net.JoinHostPort(i.IP, strconv.Itoa(i.Port))
}

// Clone returns a copy of i that shares no map with the original.
func (i Instance) Clone() Instance {
	if i.Metadata != nil {
		i.Metadata = maps.Clone(i.Metadata)
	}
	return i
}

// CloneInstances deep-copies a slice of instances; nil stays nil.
func CloneInstances(in []Instance) []Instance {
	if in == nil {
		return nil
	}
	out := make([]Instance, len(in))
	for i, inst := range in {
		out[i] = inst.Clone()
	}
	return out
}

// Service is a resolved snapshot of a service as returned by subscribe or pushed by the server.
type Service struct {
	Name                     string     `json:"name"`
	GroupName                string     `json:"groupName"`
	Clusters                 string     `json:"clusters"`
	CacheMillis              int64      `json:"cacheMillis"`
	Hosts                    []Instance `json:"hosts"`
	LastRefTime              int64      `json:"lastRefTime"`
	Checksum                 string     `json:"checksum"`
	AllIPs                   bool       `json:"allIPs"`
	ReachProtectionThreshold bool       `json:"reachProtectionThreshold"`
}

// Key returns the cache key of the snapshot: grouped name plus clusters ("g@@s@@c1,c2" or "g@@s").
func (s Service) Key() string {
	grouped := GroupedName(s.Name, s.GroupName)
	if s.Clusters == "" {
		return grouped
	}
	return grouped + GroupSeparator + s.Clusters
}

// ServiceList is the paged result of ListServices.
type ServiceList struct {
	Count    int
	Services []string
}

// ListServiceParam selects the page of services returned by ListServices.
// Empty Namespace means the client's namespace; empty GroupName means DefaultGroup.
type ListServiceParam struct {
	Namespace string
	GroupName string
	PageNo    int
	PageSize  int
}
