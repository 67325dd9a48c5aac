package goworkflows_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	wfsqlite "github.com/cschleiden/go-workflows/backend/sqlite"
	"github.com/cschleiden/go-workflows/client"
	"github.com/cschleiden/go-workflows/worker"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andreybell91/ignite/internal/application"
	"github.com/andreybell91/ignite/internal/domain"
	"github.com/andreybell91/ignite/internal/infrastructure/goworkflows"
	"github.com/andreybell91/ignite/internal/infrastructure/metrics"
	"github.com/andreybell91/ignite/internal/infrastructure/sqlite"
)


func TestDeployment_GoWorkflows(t *testing.T) {
	b := wfsqlite.NewInMemoryBackend()
	w := worker.New(b, nil)
	c := client.New(b)

	db := sqlite.OpenTestDB(t)
	nodeRepo := &sqlite.NodeRepo{DB: db}
	deploymentRepo := &sqlite.DeploymentRepo{DB: db}
	decisionRepo := &sqlite.DecisionRecordRepo{DB: db}

	stats, err := metrics.NewStatistics(prometheus.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewStatistics: %v", err)
	}

	wf := &domain.DeploymentWorkflow{
		Deployments: deploymentRepo,
		Nodes:       nodeRepo,
		Statistics:  stats,
		Now:         func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) },
	}

	// Workflows and activities must be registered before the worker starts.
	engine := &goworkflows.Engine{Worker: w, Client: c, Timeout: 10 * time.Second}
	runner, err := engine.DeploymentRunner(wf)
	if err != nil {
		t.Fatalf("DeploymentRunner: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.WaitForCompletion()
	})
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start worker: %v", err)
	}

	depSvc := &application.DeploymentService{
		Deployments:   deploymentRepo,
		Decisions:     decisionRepo,
		Orchestration: &application.OrchestrationService{Workflow: runner},
		Statistics:    stats,
	}
	nodeSvc := &application.NodeService{Nodes: nodeRepo}

	for _, id := range []string{"n1", "n2", "n3"} {
		if err := nodeSvc.Register(ctx, domain.ClusterNode{
			ID:   domain.NodeID(id),
			Name: "node-" + id,
		}); err != nil {
			t.Fatalf("register node %s: %v", id, err)
		}
	}

	d := domain.NewDescriptorBuilder().
		WithName("counter").
		WithService(&domain.OpaqueService{ServiceKind: "CounterService", Config: json.RawMessage(`{"start":0}`)}).
		WithTotalCount(2).
		WithNodeFilter(&domain.NodeIDFilter{IDs: []domain.NodeID{"n1", "n3"}}).
		WithStatisticsEnabled(true).
		Build()

	res, err := depSvc.Deploy(ctx, d)
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	if res.Deployment.State != domain.DeploymentStateActive {
		t.Errorf("State = %q, want %q", res.Deployment.State, domain.DeploymentStateActive)
	}
	if len(res.Deployment.EligibleNodes) != 2 {
		t.Fatalf("EligibleNodes: got %d, want 2", len(res.Deployment.EligibleNodes))
	}
	if !stats.Registered("counter") {
		t.Error("statistics not registered")
	}
}
