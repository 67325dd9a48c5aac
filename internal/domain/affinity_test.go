package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreybell91/ignite/internal/domain"
)

func TestAffinityKey_NilIsAbsent(t *testing.T) {
	k, err := domain.NewAffinityKey(nil)
	require.NoError(t, err)
	assert.True(t, k.IsZero())
	assert.True(t, k.Equal(domain.AffinityKey{}))
}

func TestAffinityKey_ValueEquality(t *testing.T) {
	a := domain.MustAffinityKey(map[string]any{"region": "eu", "id": 7})
	b := domain.MustAffinityKey(map[string]any{"id": 7, "region": "eu"})
	c := domain.MustAffinityKey(map[string]any{"id": 8, "region": "eu"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(domain.AffinityKey{}))
}

func TestParseAffinityKey_Canonicalizes(t *testing.T) {
	a, err := domain.ParseAffinityKey([]byte(`{ "b": 1,  "a": [1, 2] }`))
	require.NoError(t, err)
	b, err := domain.ParseAffinityKey([]byte(`{"a":[1,2],"b":1}`))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, `{"a":[1,2],"b":1}`, a.String())
}

func TestParseAffinityKey_KeepsLargeIntegersExact(t *testing.T) {
	k, err := domain.ParseAffinityKey([]byte(`9007199254740993`))
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", k.String())
}

func TestParseAffinityKey_NullIsAbsent(t *testing.T) {
	for _, in := range []string{"", "null", "  null "} {
		k, err := domain.ParseAffinityKey([]byte(in))
		require.NoError(t, err)
		assert.True(t, k.IsZero(), "input %q", in)
	}
}

func TestParseAffinityKey_RejectsInvalid(t *testing.T) {
	for _, in := range []string{"{", "1 2", "nope"} {
		_, err := domain.ParseAffinityKey([]byte(in))
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "input %q", in)
	}
}

func TestNewAffinityKey_RejectsUnencodable(t *testing.T) {
	_, err := domain.NewAffinityKey(make(chan int))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAffinityKey_Decode(t *testing.T) {
	type orderKey struct {
		Customer string `json:"customer"`
		Order    int    `json:"order"`
	}
	k := domain.MustAffinityKey(orderKey{Customer: "c1", Order: 12})

	var got orderKey
	require.NoError(t, k.Decode(&got))
	assert.Equal(t, orderKey{Customer: "c1", Order: 12}, got)

	assert.ErrorIs(t, domain.AffinityKey{}.Decode(&got), domain.ErrNotFound)
}
