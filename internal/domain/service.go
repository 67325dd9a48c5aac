package domain

import "encoding/json"

// ServiceKind identifies the implementation of a [Service]. Two services
// with the same kind are the same service definition regardless of their
// state.
type ServiceKind string

// Service is the unit of logic a descriptor deploys. Implementations are
// typically stateful and need not support value equality; descriptors
// compare services by [ServiceKind] only.
//
// A service is serialized as its JSON encoding, so exported state should
// be JSON-friendly.
type Service interface {
	Kind() ServiceKind
}

// OpaqueService stands in for a service whose kind is not registered in
// the decoding [KindRegistry]. It keeps the kind and the raw encoded
// state so the descriptor still round-trips and compares equal to one
// carrying the real implementation.
type OpaqueService struct {
	ServiceKind ServiceKind
	Config      json.RawMessage
}

func (s *OpaqueService) Kind() ServiceKind {
	if s == nil {
		return ""
	}
	return s.ServiceKind
}

// MarshalJSON emits the raw config verbatim.
func (s *OpaqueService) MarshalJSON() ([]byte, error) {
	if s == nil || len(s.Config) == 0 {
		return []byte("null"), nil
	}
	return s.Config, nil
}

// serviceKindOf returns the kind of s, or "" when s is absent.
func serviceKindOf(s Service) ServiceKind {
	if s == nil {
		return ""
	}
	return s.Kind()
}
