package domain

// RedoState is the desired server-side state of a registration redo entry.
type RedoState int

const (
	// RedoRegistered means the instance(s) should be registered on the server.
	RedoRegistered RedoState = iota + 1
	// RedoUnregistered means a deregistration is in progress; replay sends a deregister.
	RedoUnregistered
)

func (s RedoState) String() string {
	switch s {
	case RedoRegistered:
		return "registered"
	case RedoUnregistered:
		return "unregistered"
	default:
		return "unknown"
	}
}

// RedoRegistration is the last requested registration for one service key.
// Batch entries replay as BatchInstanceRequest, single entries as InstanceRequest.
// Confirmed is true once the server accepted the request on the current connection;
// Version increases on every mutation so concurrent writers can detect stale updates.
type RedoRegistration struct {
	Key       ServiceKey
	Instances []Instance
	Batch     bool
	State     RedoState
	Confirmed bool
	Version   uint64
}

// Instance returns the single registered instance, or the zero Instance for an empty entry.
func (r RedoRegistration) Instance() Instance {
	if len(r.Instances) == 0 {
		return Instance{}
	}
	return r.Instances[0]
}

// RedoSubscription is one active subscription target.
type RedoSubscription struct {
	Key       ServiceKey
	Clusters  string
	Confirmed bool
	Version   uint64
}

// RedoSubscriptionKey is the store key of a subscription: grouped name, "@@", clusters.
func RedoSubscriptionKey(key ServiceKey, clusters string) string {
	return key.GroupedName() + GroupSeparator + clusters
}

// RedoSnapshot is an immutable copy of the redo store taken for replay.
type RedoSnapshot struct {
	Registrations []RedoRegistration
	Subscriptions []RedoSubscription
}
