package domain

import "github.com/cespare/xxhash/v2"

// EqualIgnoringNodeFilter reports whether d and other describe the same
// deployment modulo node targeting: counts, cache name, affinity key and
// name are equal, and the services are either both absent or of the same
// kind. Service state and the statistics flag are not compared.
//
// The orchestration engine uses this to tell whether a request for an
// already running service is effectively the same deployment.
func (d ServiceDescriptor) EqualIgnoringNodeFilter(other ServiceDescriptor) bool {
	if d.maxPerNodeCount != other.maxPerNodeCount {
		return false
	}
	if d.totalCount != other.totalCount {
		return false
	}
	if !d.affinityKey.Equal(other.affinityKey) {
		return false
	}
	if d.cacheName != other.cacheName {
		return false
	}
	if d.name != other.name {
		return false
	}
	if (d.service == nil) != (other.service == nil) {
		return false
	}
	return serviceKindOf(d.service) == serviceKindOf(other.service)
}

// Equal reports full equality: [ServiceDescriptor.EqualIgnoringNodeFilter]
// holds and the node filters are both absent or both present with the
// same kind.
func (d ServiceDescriptor) Equal(other ServiceDescriptor) bool {
	if !d.EqualIgnoringNodeFilter(other) {
		return false
	}
	if d.nodeFilter == nil || other.nodeFilter == nil {
		return d.nodeFilter == nil && other.nodeFilter == nil
	}
	return d.nodeFilter.Kind() == other.nodeFilter.Kind()
}

// EqualValue is [ServiceDescriptor.Equal] against an arbitrary value. Any
// v that is not a descriptor (or a non-nil pointer to one) is unequal.
func (d ServiceDescriptor) EqualValue(v any) bool {
	switch o := v.(type) {
	case ServiceDescriptor:
		return d.Equal(o)
	case *ServiceDescriptor:
		return o != nil && d.Equal(*o)
	default:
		return false
	}
}

// Hash is derived from the name alone, 0 when the name is absent. All
// descriptors sharing a name collide; both equality tiers imply equal
// hashes.
func (d ServiceDescriptor) Hash() uint64 {
	if d.name == "" {
		return 0
	}
	return xxhash.Sum64String(string(d.name))
}

// DescriptorComparator decides whether two descriptors denote the same
// deployment.
type DescriptorComparator func(a, b ServiceDescriptor) bool

var (
	// FullEquality is used for strict duplicate-submission detection.
	FullEquality DescriptorComparator = ServiceDescriptor.Equal

	// FilterInsensitiveEquality is used for change detection against a
	// running deployment.
	FilterInsensitiveEquality DescriptorComparator = ServiceDescriptor.EqualIgnoringNodeFilter
)
