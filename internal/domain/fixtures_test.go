package domain_test

import (
	"pgregory.net/rapid"

	"github.com/andreybell91/ignite/internal/domain"
)

// fooService and barService are distinct service implementations. Their
// state is irrelevant to descriptor equality.
type fooService struct {
	Greeting string `json:"greeting,omitempty"`
	Calls    int    `json:"calls,omitempty"`
}

func (*fooService) Kind() domain.ServiceKind { return "FooService" }

type barService struct {
	Endpoint string `json:"endpoint,omitempty"`
}

func (*barService) Kind() domain.ServiceKind { return "BarService" }

// neverFilter rejects every node.
type neverFilter struct{}

func (*neverFilter) Kind() domain.NodeFilterKind      { return "NeverFilter" }
func (*neverFilter) Accept(domain.ClusterNode) bool { return false }

func testRegistry() *domain.KindRegistry {
	r := domain.NewKindRegistry()
	_ = r.RegisterService("FooService", func() domain.Service { return &fooService{} })
	_ = r.RegisterService("BarService", func() domain.Service { return &barService{} })
	_ = r.RegisterNodeFilter("NeverFilter", func() domain.NodeFilter { return &neverFilter{} })
	return r
}

func baseBuilder(name domain.ServiceName) *domain.DescriptorBuilder {
	return domain.NewDescriptorBuilder().
		WithName(name).
		WithService(&fooService{}).
		WithTotalCount(1).
		WithMaxPerNodeCount(1)
}

// descriptorGen draws descriptors from small field domains so that equal
// and nearly equal pairs come up often.
func descriptorGen() *rapid.Generator[domain.ServiceDescriptor] {
	return rapid.Custom(func(t *rapid.T) domain.ServiceDescriptor {
		b := domain.NewDescriptorBuilder().
			WithName(domain.ServiceName(rapid.SampledFrom([]string{"", "A", "B"}).Draw(t, "name"))).
			WithTotalCount(rapid.IntRange(0, 2).Draw(t, "totalCount")).
			WithMaxPerNodeCount(rapid.IntRange(0, 2).Draw(t, "maxPerNodeCount")).
			WithCacheName(rapid.SampledFrom([]string{"", "orders"}).Draw(t, "cacheName")).
			WithStatisticsEnabled(rapid.Bool().Draw(t, "statisticsEnabled"))

		switch rapid.IntRange(0, 2).Draw(t, "affinityKey") {
		case 1:
			b.WithAffinityKey(domain.MustAffinityKey("key-1"))
		case 2:
			b.WithAffinityKey(domain.MustAffinityKey(map[string]any{"id": 7, "region": "eu"}))
		}

		switch rapid.IntRange(0, 2).Draw(t, "service") {
		case 1:
			b.WithService(&fooService{
				Greeting: rapid.SampledFrom([]string{"", "hi"}).Draw(t, "greeting"),
				Calls:    rapid.IntRange(0, 100).Draw(t, "calls"),
			})
		case 2:
			b.WithService(&barService{Endpoint: rapid.SampledFrom([]string{"", "http://x"}).Draw(t, "endpoint")})
		}

		switch rapid.IntRange(0, 3).Draw(t, "nodeFilter") {
		case 1:
			b.WithNodeFilter(&neverFilter{})
		case 2:
			b.WithNodeFilter(&domain.LabelSelectorFilter{MatchLabels: map[string]string{"env": "prod"}})
		case 3:
			b.WithNodeFilter(&domain.NodeIDFilter{IDs: []domain.NodeID{"n1"}})
		}
		return b.Build()
	})
}
