package domain

import (
	"errors"
	"fmt"
)

// ValidateDescriptor checks the contract a descriptor must satisfy before
// the engine accepts it. All violations are reported together; each one
// wraps [ErrInvalidArgument].
//
// A descriptor with both counts at zero (unlimited cluster-wide and per
// node) passes: whether that is sensible is left to the caller. See
// [ServiceDescriptor.Unbounded].
func ValidateDescriptor(d ServiceDescriptor) error {
	var errs []error
	if d.name == "" {
		errs = append(errs, fmt.Errorf("%w: service name is required", ErrInvalidArgument))
	}
	if d.service == nil {
		errs = append(errs, fmt.Errorf("%w: service instance is required", ErrInvalidArgument))
	}
	if d.totalCount < 0 {
		errs = append(errs, fmt.Errorf("%w: total count must be non-negative, got %d", ErrInvalidArgument, d.totalCount))
	}
	if d.maxPerNodeCount < 0 {
		errs = append(errs, fmt.Errorf("%w: max per-node count must be non-negative, got %d", ErrInvalidArgument, d.maxPerNodeCount))
	}
	return errors.Join(errs...)
}

// Unbounded reports whether neither count limits the deployment.
func (d ServiceDescriptor) Unbounded() bool {
	return d.totalCount == 0 && d.maxPerNodeCount == 0
}

// AffinityWithoutCache reports whether an affinity key is set without the
// cache name that gives it meaning.
func (d ServiceDescriptor) AffinityWithoutCache() bool {
	return !d.affinityKey.IsZero() && d.cacheName == ""
}
