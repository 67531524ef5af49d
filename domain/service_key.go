package domain

import (
	"strings"
)

// DefaultGroup is the group assigned to a service when the caller does not name one.
const DefaultGroup = "DEFAULT_GROUP"

// DefaultNamespace is the namespace used when the client config leaves it empty.
const DefaultNamespace = "public"

// GroupSeparator joins group and service name in a grouped name and the timestamp and grouped name
// in a sign string.
const GroupSeparator = "@@"

// ServiceKey addresses one logical service: namespace, group and service name.
type ServiceKey struct {
	Namespace string
	Group     string
	Name      string
}

// NewServiceKey returns a ServiceKey with the given parts; no defaults are applied.
func NewServiceKey(namespace, group, name string) ServiceKey {
	return ServiceKey{Namespace: namespace, Group: group, Name: name}
}

// WithDefaultGroup returns a copy of k whose Group is DefaultGroup when k.Group is blank.
//
// Returns: ServiceKey with trimmed Group (DefaultGroup if it was empty).
//
// Called from cmd.LoadConfig when normalizing register/subscribe entries.
func (k ServiceKey) WithDefaultGroup() ServiceKey {
	k.Group = strings.TrimSpace(k.Group)
	if k.Group == "" {
		k.Group = DefaultGroup
	}
	return k
}

// GroupedName returns the composite key used for signing and redo indexing: "group@@name", or the bare name when group is empty.
func (k ServiceKey) GroupedName() string {
	return GroupedName(k.Name, k.Group)
}

// String returns "namespace/group@@name" for logging.
func (k ServiceKey) String() string {
	return k.Namespace + "/" + k.GroupedName()
}

// GroupedName builds the composite "group@@serviceName" key; an empty group yields serviceName unchanged.
//
// Parameters: serviceName - service name (may be empty, e.g. for ServiceListRequest); group - group name (empty means bare serviceName).
//
// Returns: grouped name string.
//
// Called from ServiceKey.GroupedName, the request types (for signing) and service.NamingProxy (redo keys).
func GroupedName(serviceName, group string) string {
	if group == "" {
		return serviceName
	}
	return group + GroupSeparator + serviceName
}

// SplitGroupedName is the inverse of GroupedName: "g@@s" yields ("s", "g"); a bare name yields (name, "").
func SplitGroupedName(grouped string) (serviceName, group string) {
	idx := strings.Index(grouped, GroupSeparator)
	if idx < 0 {
		return grouped, ""
	}
	return grouped[idx+len(GroupSeparator):], grouped[:idx]
}
