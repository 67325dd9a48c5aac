// Package decisionrecordrepotest provides contract tests for
// [domain.DecisionRecordRepository] implementations.
package decisionrecordrepotest

import (
	"context"
	"testing"
	"time"

	"github.com/andreybell91/ignite/internal/domain"
)

// Factory creates a fresh [domain.DecisionRecordRepository] for each test.
type Factory func(t *testing.T) domain.DecisionRecordRepository

// Run exercises the [domain.DecisionRecordRepository] contract.
func Run(t *testing.T, factory Factory) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	record := func(id string, svc domain.ServiceName, d domain.DeployDecision, at time.Time) domain.DecisionRecord {
		return domain.DecisionRecord{ID: id, Service: svc, Decision: d, Summary: string(d) + " " + string(svc), RecordedAt: at}
	}

	t.Run("AppendAndList", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if err := repo.Append(ctx, record("r1", "A", domain.DecisionCreate, now)); err != nil {
			t.Fatalf("Append: %v", err)
		}

		got, err := repo.ListByService(ctx, "A")
		if err != nil {
			t.Fatalf("ListByService: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("ListByService: got %d, want 1", len(got))
		}
		if got[0].ID != "r1" || got[0].Decision != domain.DecisionCreate {
			t.Errorf("record = %+v", got[0])
		}
		if got[0].Summary != "create A" {
			t.Errorf("Summary = %q, want %q", got[0].Summary, "create A")
		}
		if !got[0].RecordedAt.Equal(now) {
			t.Errorf("RecordedAt = %v, want %v", got[0].RecordedAt, now)
		}
	})

	t.Run("ListPreservesAppendOrder", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		// Same timestamp: order must come from append order alone.
		for _, r := range []domain.DecisionRecord{
			record("r3", "A", domain.DecisionCreate, now),
			record("r1", "A", domain.DecisionUnchanged, now),
			record("r2", "A", domain.DecisionRetarget, now),
		} {
			if err := repo.Append(ctx, r); err != nil {
				t.Fatalf("Append %s: %v", r.ID, err)
			}
		}

		got, err := repo.ListByService(ctx, "A")
		if err != nil {
			t.Fatalf("ListByService: %v", err)
		}
		want := []string{"r3", "r1", "r2"}
		if len(got) != len(want) {
			t.Fatalf("ListByService: got %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Errorf("record[%d].ID = %q, want %q", i, got[i].ID, want[i])
			}
		}
	})

	t.Run("ListScopedToService", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Append(ctx, record("r1", "A", domain.DecisionCreate, now))
		_ = repo.Append(ctx, record("r2", "B", domain.DecisionCreate, now))

		got, err := repo.ListByService(ctx, "B")
		if err != nil {
			t.Fatalf("ListByService: %v", err)
		}
		if len(got) != 1 || got[0].ID != "r2" {
			t.Errorf("ListByService(B) = %+v, want [r2]", got)
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		repo := factory(t)
		got, err := repo.ListByService(context.Background(), "nobody")
		if err != nil {
			t.Fatalf("ListByService: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ListByService: got %d, want 0", len(got))
		}
	})

	t.Run("DeleteByService", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		_ = repo.Append(ctx, record("r1", "A", domain.DecisionCreate, now))
		_ = repo.Append(ctx, record("r2", "A", domain.DecisionUnchanged, now))
		_ = repo.Append(ctx, record("r3", "B", domain.DecisionCreate, now))

		if err := repo.DeleteByService(ctx, "A"); err != nil {
			t.Fatalf("DeleteByService: %v", err)
		}

		a, _ := repo.ListByService(ctx, "A")
		if len(a) != 0 {
			t.Errorf("A after delete: got %d, want 0", len(a))
		}
		b, _ := repo.ListByService(ctx, "B")
		if len(b) != 1 {
			t.Errorf("B after delete: got %d, want 1", len(b))
		}
	})

	t.Run("DeleteByServiceNoRecords", func(t *testing.T) {
		repo := factory(t)
		if err := repo.DeleteByService(context.Background(), "nobody"); err != nil {
			t.Fatalf("DeleteByService: %v", err)
		}
	})
}
