// Package deploymentrepotest provides contract tests for
// [domain.DeploymentRepository] implementations.
package deploymentrepotest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/andreybell91/ignite/internal/domain"
)

// Factory creates a fresh [domain.DeploymentRepository] for each test.
type Factory func(t *testing.T) domain.DeploymentRepository

// Run exercises the [domain.DeploymentRepository] contract.
func Run(t *testing.T, factory Factory) {
	sampleDescriptor := func(name domain.ServiceName) domain.ServiceDescriptor {
		return domain.NewDescriptorBuilder().
			WithName(name).
			WithService(&domain.OpaqueService{
				ServiceKind: "CounterService",
				Config:      json.RawMessage(`{"start":1}`),
			}).
			WithTotalCount(4).
			WithMaxPerNodeCount(2).
			WithCacheName("accounts").
			WithAffinityKey(domain.MustAffinityKey("acct-7")).
			WithNodeFilter(&domain.NodeIDFilter{IDs: []domain.NodeID{"n1", "n2"}}).
			WithStatisticsEnabled(true).
			Build()
	}
	sampleDeployment := func() domain.ServiceDeployment {
		return domain.ServiceDeployment{
			Descriptor: sampleDescriptor("counter"),
			State:      domain.DeploymentStatePending,
			UpdatedAt:  time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		}
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		d := sampleDeployment()

		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.Get(ctx, "counter")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !got.Descriptor.Equal(d.Descriptor) {
			t.Errorf("Descriptor = %s, want %s", got.Descriptor, d.Descriptor)
		}
		if !got.Descriptor.AffinityKey().Equal(d.Descriptor.AffinityKey()) {
			t.Errorf("AffinityKey = %s, want %s", got.Descriptor.AffinityKey(), d.Descriptor.AffinityKey())
		}
		if !got.Descriptor.StatisticsEnabled() {
			t.Error("StatisticsEnabled = false, want true")
		}
		if got.State != domain.DeploymentStatePending {
			t.Errorf("State = %q, want %q", got.State, domain.DeploymentStatePending)
		}
		if !got.UpdatedAt.Equal(d.UpdatedAt) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, d.UpdatedAt)
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		d := sampleDeployment()
		_ = repo.Create(ctx, d)
		err := repo.Create(ctx, d)
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("second Create: got %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		d := sampleDeployment()
		_ = repo.Create(ctx, d)

		d.Descriptor = d.Descriptor.ToBuilder().
			WithNodeFilter(&domain.LabelSelectorFilter{MatchLabels: map[string]string{"env": "prod"}}).
			Build()
		d.State = domain.DeploymentStateActive
		d.EligibleNodes = []domain.NodeID{"n1", "n3"}
		if err := repo.Update(ctx, d); err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, _ := repo.Get(ctx, "counter")
		if got.State != domain.DeploymentStateActive {
			t.Errorf("State after Update = %q, want %q", got.State, domain.DeploymentStateActive)
		}
		if len(got.EligibleNodes) != 2 || got.EligibleNodes[1] != "n3" {
			t.Errorf("EligibleNodes = %v, want [n1 n3]", got.EligibleNodes)
		}
		if got.Descriptor.NodeFilter() == nil || got.Descriptor.NodeFilter().Kind() != domain.NodeFilterLabelSelector {
			t.Errorf("NodeFilter = %v, want label-selector", got.Descriptor.NodeFilter())
		}
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		repo := factory(t)
		d := domain.ServiceDeployment{Descriptor: sampleDescriptor("nonexistent")}
		err := repo.Update(context.Background(), d)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Update: got %v, want ErrNotFound", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		d1 := sampleDeployment()
		d2 := sampleDeployment()
		d2.Descriptor = sampleDescriptor("alpha")
		_ = repo.Create(ctx, d1)
		_ = repo.Create(ctx, d2)

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List: got %d, want 2", len(got))
		}
		if got[0].Name() != "alpha" || got[1].Name() != "counter" {
			t.Errorf("List order = [%s %s], want [alpha counter]", got[0].Name(), got[1].Name())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Create(ctx, sampleDeployment())
		if err := repo.Delete(ctx, "counter"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		_, err := repo.Get(ctx, "counter")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get after Delete: got %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		repo := factory(t)
		err := repo.Delete(context.Background(), "nonexistent")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Delete: got %v, want ErrNotFound", err)
		}
	})
}
