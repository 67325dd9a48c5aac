package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AffinityKey is the key used together with a descriptor's cache name to
// resolve a single target partition. It holds the canonical JSON encoding
// of the caller's value, which gives it value equality and an exact wire
// round-trip. The zero AffinityKey is absent.
type AffinityKey struct {
	raw []byte
}

// NewAffinityKey encodes v as an affinity key. A nil v yields the absent
// key.
func NewAffinityKey(v any) (AffinityKey, error) {
	if v == nil {
		return AffinityKey{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return AffinityKey{}, fmt.Errorf("%w: affinity key: %v", ErrInvalidArgument, err)
	}
	return ParseAffinityKey(b)
}

// MustAffinityKey is like [NewAffinityKey] but panics on error. It is
// meant for literals in tests and static configuration.
func MustAffinityKey(v any) AffinityKey {
	k, err := NewAffinityKey(v)
	if err != nil {
		panic(err)
	}
	return k
}

// ParseAffinityKey builds a key from its JSON encoding. The input is
// canonicalized (compact, sorted object keys, numbers kept verbatim) so
// logically equal documents produce equal keys. "null" and empty input
// yield the absent key.
func ParseAffinityKey(data []byte) (AffinityKey, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return AffinityKey{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return AffinityKey{}, fmt.Errorf("%w: affinity key: %v", ErrInvalidArgument, err)
	}
	if dec.More() {
		return AffinityKey{}, fmt.Errorf("%w: affinity key: trailing data", ErrInvalidArgument)
	}
	canonical, err := json.Marshal(v)
	if err != nil {
		return AffinityKey{}, fmt.Errorf("%w: affinity key: %v", ErrInvalidArgument, err)
	}
	return AffinityKey{raw: canonical}, nil
}

// IsZero reports whether the key is absent.
func (k AffinityKey) IsZero() bool { return len(k.raw) == 0 }

// Equal reports whether both keys are absent or encode the same value.
func (k AffinityKey) Equal(other AffinityKey) bool { return bytes.Equal(k.raw, other.raw) }

// Decode unmarshals the key into v.
func (k AffinityKey) Decode(v any) error {
	if k.IsZero() {
		return fmt.Errorf("%w: affinity key is absent", ErrNotFound)
	}
	return json.Unmarshal(k.raw, v)
}

func (k AffinityKey) String() string { return string(k.raw) }

func (k AffinityKey) MarshalJSON() ([]byte, error) {
	if k.IsZero() {
		return []byte("null"), nil
	}
	return append([]byte(nil), k.raw...), nil
}

func (k *AffinityKey) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAffinityKey(data)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
