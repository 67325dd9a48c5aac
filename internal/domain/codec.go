package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DescriptorCodec converts descriptors to and from their JSON wire form.
// Every field round-trips by value, including absent ones. Services and
// node filters travel as {kind, config} and are rebuilt through the
// registry.
type DescriptorCodec struct {
	Registry *KindRegistry
}

type descriptorDocument struct {
	Name              ServiceName     `json:"name,omitempty"`
	Service           *kindedDocument `json:"service,omitempty"`
	TotalCount        int             `json:"totalCount,omitempty"`
	MaxPerNodeCount   int             `json:"maxPerNodeCount,omitempty"`
	CacheName         string          `json:"cacheName,omitempty"`
	AffinityKey       json.RawMessage `json:"affinityKey,omitempty"`
	NodeFilter        *kindedDocument `json:"nodeFilter,omitempty"`
	StatisticsEnabled bool            `json:"statisticsEnabled,omitempty"`
}

type kindedDocument struct {
	Kind   string          `json:"kind"`
	Config json.RawMessage `json:"config,omitempty"`
}

type batchDocument struct {
	Services []json.RawMessage `json:"services"`
}

func (c DescriptorCodec) registry() *KindRegistry {
	if c.Registry != nil {
		return c.Registry
	}
	return defaultRegistry
}

var defaultRegistry = NewKindRegistry()

// Encode returns the wire form of d.
func (c DescriptorCodec) Encode(d ServiceDescriptor) ([]byte, error) {
	doc, err := c.document(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (c DescriptorCodec) document(d ServiceDescriptor) (descriptorDocument, error) {
	doc := descriptorDocument{
		Name:              d.name,
		TotalCount:        d.totalCount,
		MaxPerNodeCount:   d.maxPerNodeCount,
		CacheName:         d.cacheName,
		StatisticsEnabled: d.statisticsEnabled,
	}
	if !d.affinityKey.IsZero() {
		doc.AffinityKey = json.RawMessage(d.affinityKey.raw)
	}
	if d.service != nil {
		if d.service.Kind() == "" {
			return doc, fmt.Errorf("%w: service %T has no kind", ErrInvalidArgument, d.service)
		}
		cfg, err := encodeConfig(d.service)
		if err != nil {
			return doc, fmt.Errorf("encode service %q: %w", d.service.Kind(), err)
		}
		doc.Service = &kindedDocument{Kind: string(d.service.Kind()), Config: cfg}
	}
	if d.nodeFilter != nil {
		if d.nodeFilter.Kind() == "" {
			return doc, fmt.Errorf("%w: node filter %T has no kind", ErrInvalidArgument, d.nodeFilter)
		}
		cfg, err := encodeConfig(d.nodeFilter)
		if err != nil {
			return doc, fmt.Errorf("encode node filter %q: %w", d.nodeFilter.Kind(), err)
		}
		doc.NodeFilter = &kindedDocument{Kind: string(d.nodeFilter.Kind()), Config: cfg}
	}
	return doc, nil
}

// Decode rebuilds a descriptor from its wire form. Unknown fields are
// rejected so typos in hand-written files surface as errors.
func (c DescriptorCodec) Decode(data []byte) (ServiceDescriptor, error) {
	var doc descriptorDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return ServiceDescriptor{}, fmt.Errorf("%w: decode descriptor: %v", ErrInvalidArgument, err)
	}
	return c.fromDocument(doc)
}

func (c DescriptorCodec) fromDocument(doc descriptorDocument) (ServiceDescriptor, error) {
	b := NewDescriptorBuilder().
		WithName(doc.Name).
		WithTotalCount(doc.TotalCount).
		WithMaxPerNodeCount(doc.MaxPerNodeCount).
		WithCacheName(doc.CacheName).
		WithStatisticsEnabled(doc.StatisticsEnabled)

	key, err := ParseAffinityKey(doc.AffinityKey)
	if err != nil {
		return ServiceDescriptor{}, err
	}
	b.WithAffinityKey(key)

	if doc.Service != nil {
		svc, err := c.registry().NewService(ServiceKind(doc.Service.Kind), doc.Service.Config)
		if err != nil {
			return ServiceDescriptor{}, err
		}
		b.WithService(svc)
	}
	if doc.NodeFilter != nil {
		f, err := c.registry().NewNodeFilter(NodeFilterKind(doc.NodeFilter.Kind), doc.NodeFilter.Config)
		if err != nil {
			return ServiceDescriptor{}, err
		}
		b.WithNodeFilter(f)
	}
	return b.Build(), nil
}

// EncodeBatch returns the wire form of a batch: {"services": [...]}.
func (c DescriptorCodec) EncodeBatch(batch DeploymentBatch) ([]byte, error) {
	doc := batchDocument{Services: make([]json.RawMessage, 0, len(batch.Services))}
	for _, d := range batch.Services {
		raw, err := c.Encode(d)
		if err != nil {
			return nil, err
		}
		doc.Services = append(doc.Services, raw)
	}
	return json.Marshal(doc)
}

// DecodeBatch rebuilds a batch from its wire form, preserving order.
func (c DescriptorCodec) DecodeBatch(data []byte) (DeploymentBatch, error) {
	var doc batchDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return DeploymentBatch{}, fmt.Errorf("%w: decode batch: %v", ErrInvalidArgument, err)
	}
	batch := DeploymentBatch{Services: make([]ServiceDescriptor, 0, len(doc.Services))}
	for i, raw := range doc.Services {
		d, err := c.Decode(raw)
		if err != nil {
			return DeploymentBatch{}, fmt.Errorf("services[%d]: %w", i, err)
		}
		batch.Services = append(batch.Services, d)
	}
	return batch, nil
}

func encodeConfig(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte("{}")) {
		return nil, nil
	}
	return b, nil
}
