// Package noderepotest provides contract tests for [domain.NodeRepository]
// implementations.
package noderepotest

import (
	"context"
	"errors"
	"testing"

	"github.com/andreybell91/ignite/internal/domain"
)

// Factory creates a fresh [domain.NodeRepository] for each test invocation.
type Factory func(t *testing.T) domain.NodeRepository

// Run exercises the [domain.NodeRepository] contract.
func Run(t *testing.T, factory Factory) {
	t.Run("CreateAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		node := domain.ClusterNode{
			ID:         "n1",
			Name:       "node-a",
			Labels:     map[string]string{"env": "prod"},
			Attributes: map[string]string{"cpus": "8"},
		}

		if err := repo.Create(ctx, node); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.Get(ctx, "n1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "node-a" {
			t.Errorf("Name = %q, want %q", got.Name, "node-a")
		}
		if got.Labels["env"] != "prod" {
			t.Errorf("Labels[env] = %q, want %q", got.Labels["env"], "prod")
		}
		if got.Attributes["cpus"] != "8" {
			t.Errorf("Attributes[cpus] = %q, want %q", got.Attributes["cpus"], "8")
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		node := domain.ClusterNode{ID: "n1", Name: "node-a"}

		if err := repo.Create(ctx, node); err != nil {
			t.Fatalf("first Create: %v", err)
		}
		err := repo.Create(ctx, node)
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

	t.Run("ListOrderedByID", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		for _, n := range []domain.ClusterNode{{ID: "n2", Name: "b"}, {ID: "n1", Name: "a"}} {
			if err := repo.Create(ctx, n); err != nil {
				t.Fatalf("Create %s: %v", n.ID, err)
			}
		}

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List: got %d, want 2", len(got))
		}
		if got[0].ID != "n1" || got[1].ID != "n2" {
			t.Errorf("List order = [%s %s], want [n1 n2]", got[0].ID, got[1].ID)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if err := repo.Create(ctx, domain.ClusterNode{ID: "n1", Name: "a"}); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete(ctx, "n1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		_, err := repo.Get(ctx, "n1")
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
