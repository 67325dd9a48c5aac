package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreybell91/ignite/internal/domain"
)

func TestKindRegistry_RejectsDuplicateKinds(t *testing.T) {
	r := testRegistry()

	err := r.RegisterService("FooService", func() domain.Service { return &fooService{} })
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	err = r.RegisterNodeFilter(domain.NodeFilterLabelSelector, func() domain.NodeFilter { return &domain.LabelSelectorFilter{} })
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestKindRegistry_RejectsEmptyRegistrations(t *testing.T) {
	r := domain.NewKindRegistry()

	assert.ErrorIs(t, r.RegisterService("", func() domain.Service { return &fooService{} }), domain.ErrInvalidArgument)
	assert.ErrorIs(t, r.RegisterService("x", nil), domain.ErrInvalidArgument)
	assert.ErrorIs(t, r.RegisterNodeFilter("", nil), domain.ErrInvalidArgument)
}

func TestKindRegistry_NewServiceDecodesState(t *testing.T) {
	r := testRegistry()

	svc, err := r.NewService("FooService", []byte(`{"greeting":"hey","calls":2}`))
	require.NoError(t, err)
	assert.Equal(t, &fooService{Greeting: "hey", Calls: 2}, svc)
}

func TestKindRegistry_NewServiceRequiresKind(t *testing.T) {
	_, err := domain.NewKindRegistry().NewService("", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestKindRegistry_FactoryKindMismatch(t *testing.T) {
	r := domain.NewKindRegistry()
	require.NoError(t, r.RegisterService("Alias", func() domain.Service { return &fooService{} }))

	_, err := r.NewService("Alias", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestKindRegistry_BuiltInFilters(t *testing.T) {
	r := domain.NewKindRegistry()

	f, err := r.NewNodeFilter(domain.NodeFilterNodeIDs, []byte(`{"ids":["n2"]}`))
	require.NoError(t, err)
	assert.True(t, f.Accept(domain.ClusterNode{ID: "n2"}))
	assert.False(t, f.Accept(domain.ClusterNode{ID: "n1"}))

	f, err = r.NewNodeFilter(domain.NodeFilterLabelSelector, nil)
	require.NoError(t, err)
	assert.True(t, f.Accept(domain.ClusterNode{ID: "n1"}), "empty selector accepts all")
}
