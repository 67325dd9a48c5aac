package domain

import "fmt"

// DeploymentBatch is an ordered group of descriptors submitted together,
// typically loaded from a configuration file.
type DeploymentBatch struct {
	Services []ServiceDescriptor
}

// Dedup returns the batch with strict duplicates removed, keeping the
// first occurrence of each name. Two entries sharing a name whose
// configurations differ are a conflict; that includes entries that only
// differ by node filter kind.
func (b DeploymentBatch) Dedup() (DeploymentBatch, error) {
	seen := make(map[ServiceName]ServiceDescriptor, len(b.Services))
	out := DeploymentBatch{Services: make([]ServiceDescriptor, 0, len(b.Services))}
	for i, d := range b.Services {
		prev, ok := seen[d.Name()]
		if !ok {
			seen[d.Name()] = d
			out.Services = append(out.Services, d)
			continue
		}
		if !FullEquality(prev, d) {
			return DeploymentBatch{}, fmt.Errorf("services[%d] %q: %w: duplicate name with a different configuration", i, d.Name(), ErrConflict)
		}
	}
	return out, nil
}

// Validate runs [ValidateDescriptor] on every entry.
func (b DeploymentBatch) Validate() error {
	for i, d := range b.Services {
		if err := ValidateDescriptor(d); err != nil {
			return fmt.Errorf("services[%d] %q: %w", i, d.Name(), err)
		}
	}
	return nil
}
