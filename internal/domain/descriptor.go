package domain

import (
	"fmt"
	"strings"
)

// ServiceName is the identity of a service deployment.
type ServiceName string

// ServiceDescriptor is the declarative deployment configuration of a
// service: what to run, how many instances, where they may be placed and
// whether invocation statistics are collected.
//
// A descriptor is immutable once built; use [DescriptorBuilder] to create
// one and [ServiceDescriptor.ToBuilder] to derive a changed copy. Values
// are stored verbatim. Enforcement of mandatory fields is the job of
// [ValidateDescriptor], not of the descriptor.
type ServiceDescriptor struct {
	name              ServiceName
	service           Service
	totalCount        int
	maxPerNodeCount   int
	cacheName         string
	affinityKey       AffinityKey
	nodeFilter        NodeFilter
	statisticsEnabled bool
}

// Name returns the service name, "" when unset. The name is mandatory at
// validation time.
func (d ServiceDescriptor) Name() ServiceName { return d.name }

// Service returns the service instance, nil when unset. The service is
// mandatory at validation time.
func (d ServiceDescriptor) Service() Service { return d.service }

// TotalCount returns the cluster-wide instance cap, 0 for unlimited.
func (d ServiceDescriptor) TotalCount() int { return d.totalCount }

// MaxPerNodeCount returns the per-node instance cap, 0 for unlimited.
func (d ServiceDescriptor) MaxPerNodeCount() int { return d.maxPerNodeCount }

// CacheName returns the name of the cache used for key-to-node affinity,
// "" when unset.
func (d ServiceDescriptor) CacheName() string { return d.cacheName }

// AffinityKey returns the affinity key. It is only meaningful when a
// cache name is set; the descriptor does not enforce the pairing.
func (d ServiceDescriptor) AffinityKey() AffinityKey { return d.affinityKey }

// NodeFilter returns the node filter, nil when the service may be placed
// on any node.
func (d ServiceDescriptor) NodeFilter() NodeFilter { return d.nodeFilter }

// StatisticsEnabled reports whether per-method invocation durations are
// collected for the service.
func (d ServiceDescriptor) StatisticsEnabled() bool { return d.statisticsEnabled }

// ToBuilder returns a builder seeded with the descriptor's fields.
func (d ServiceDescriptor) ToBuilder() *DescriptorBuilder {
	return &DescriptorBuilder{d: d}
}

// String renders every field for logs. The service and node filter are
// rendered as their kind only so their state never reaches log output.
func (d ServiceDescriptor) String() string {
	var b strings.Builder
	b.WriteString("ServiceDescriptor [")
	fmt.Fprintf(&b, "name=%s", d.name)
	fmt.Fprintf(&b, ", totalCount=%d", d.totalCount)
	fmt.Fprintf(&b, ", maxPerNodeCount=%d", d.maxPerNodeCount)
	fmt.Fprintf(&b, ", cacheName=%s", d.cacheName)
	fmt.Fprintf(&b, ", affinityKey=%s", d.affinityKey)
	fmt.Fprintf(&b, ", statisticsEnabled=%t", d.statisticsEnabled)
	fmt.Fprintf(&b, ", serviceKind=%s", serviceKindOf(d.service))
	fmt.Fprintf(&b, ", nodeFilterKind=%s", nodeFilterKindOf(d.nodeFilter))
	b.WriteString("]")
	return b.String()
}

// DescriptorBuilder collects descriptor fields. Setters store values
// verbatim and return the builder for chaining. A builder is owned by a
// single goroutine.
type DescriptorBuilder struct {
	d ServiceDescriptor
}

// NewDescriptorBuilder returns a builder with all fields at their
// defaults: counts 0, statistics disabled, references absent.
func NewDescriptorBuilder() *DescriptorBuilder {
	return &DescriptorBuilder{}
}

func (b *DescriptorBuilder) WithName(name ServiceName) *DescriptorBuilder {
	b.d.name = name
	return b
}

func (b *DescriptorBuilder) WithService(svc Service) *DescriptorBuilder {
	b.d.service = svc
	return b
}

func (b *DescriptorBuilder) WithTotalCount(n int) *DescriptorBuilder {
	b.d.totalCount = n
	return b
}

func (b *DescriptorBuilder) WithMaxPerNodeCount(n int) *DescriptorBuilder {
	b.d.maxPerNodeCount = n
	return b
}

func (b *DescriptorBuilder) WithCacheName(name string) *DescriptorBuilder {
	b.d.cacheName = name
	return b
}

func (b *DescriptorBuilder) WithAffinityKey(key AffinityKey) *DescriptorBuilder {
	b.d.affinityKey = key
	return b
}

func (b *DescriptorBuilder) WithNodeFilter(filter NodeFilter) *DescriptorBuilder {
	b.d.nodeFilter = filter
	return b
}

func (b *DescriptorBuilder) WithStatisticsEnabled(enabled bool) *DescriptorBuilder {
	b.d.statisticsEnabled = enabled
	return b
}

// Build returns the descriptor. The builder may keep being used; later
// changes do not affect descriptors already built.
func (b *DescriptorBuilder) Build() ServiceDescriptor {
	return b.d
}
