package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andreybell91/ignite/internal/application"
	"github.com/andreybell91/ignite/internal/domain"
	"github.com/andreybell91/ignite/internal/infrastructure/metrics"
	"github.com/andreybell91/ignite/internal/infrastructure/sqlite"
	"github.com/andreybell91/ignite/internal/infrastructure/syncworkflow"
)

type testHarness struct {
	nodes       *application.NodeService
	deployments *application.DeploymentService
	stats       *metrics.Statistics
}

func setup(t *testing.T) testHarness {
	t.Helper()
	db := sqlite.OpenTestDB(t)

	nodeRepo := &sqlite.NodeRepo{DB: db}
	deploymentRepo := &sqlite.DeploymentRepo{DB: db}
	decisionRepo := &sqlite.DecisionRecordRepo{DB: db}

	stats, err := metrics.NewStatistics(prometheus.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewStatistics: %v", err)
	}

	now := func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }
	wf := &domain.DeploymentWorkflow{
		Deployments: deploymentRepo,
		Nodes:       nodeRepo,
		Statistics:  stats,
		Now:         now,
	}
	runner, err := (&syncworkflow.Engine{}).DeploymentRunner(wf)
	if err != nil {
		t.Fatalf("DeploymentRunner: %v", err)
	}

	var seq int
	return testHarness{
		nodes: &application.NodeService{Nodes: nodeRepo},
		deployments: &application.DeploymentService{
			Deployments:   deploymentRepo,
			Decisions:     decisionRepo,
			Orchestration: &application.OrchestrationService{Workflow: runner},
			Statistics:    stats,
			Now:           now,
			NewID: func() string {
				seq++
				return fmt.Sprintf("rec-%d", seq)
			},
		},
		stats: stats,
	}
}

func descriptor(name domain.ServiceName) *domain.DescriptorBuilder {
	return domain.NewDescriptorBuilder().
		WithName(name).
		WithService(&domain.OpaqueService{ServiceKind: "CounterService", Config: json.RawMessage(`{"start":0}`)}).
		WithTotalCount(2).
		WithMaxPerNodeCount(1)
}

func TestDeploy_CreateResolvesAllNodesWithoutFilter(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1", "n2", "n3")

	res, err := h.deployments.Deploy(ctx, descriptor("counter").Build())
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	if res.Decision != domain.DecisionCreate {
		t.Errorf("Decision = %q, want %q", res.Decision, domain.DecisionCreate)
	}
	if res.Deployment.State != domain.DeploymentStateActive {
		t.Errorf("State = %q, want %q", res.Deployment.State, domain.DeploymentStateActive)
	}
	assertEligibleNodes(t, res.Deployment, "n1", "n2", "n3")
}

func TestDeploy_CreateAppliesLabelSelector(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	must(t, h.nodes.Register(ctx, domain.ClusterNode{ID: "n1", Name: "prod-a", Labels: map[string]string{"env": "prod"}}))
	must(t, h.nodes.Register(ctx, domain.ClusterNode{ID: "n2", Name: "staging", Labels: map[string]string{"env": "staging"}}))
	must(t, h.nodes.Register(ctx, domain.ClusterNode{ID: "n3", Name: "prod-b", Labels: map[string]string{"env": "prod"}}))

	d := descriptor("counter").
		WithNodeFilter(&domain.LabelSelectorFilter{MatchLabels: map[string]string{"env": "prod"}}).
		Build()
	res, err := h.deployments.Deploy(ctx, d)
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	assertEligibleNodes(t, res.Deployment, "n1", "n3")
}

func TestDeploy_SameDescriptorIsUnchanged(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")

	d := descriptor("counter").Build()
	if _, err := h.deployments.Deploy(ctx, d); err != nil {
		t.Fatalf("first Deploy: %v", err)
	}

	// A different instance of the same kind is the same deployment.
	again := d.ToBuilder().
		WithService(&domain.OpaqueService{ServiceKind: "CounterService", Config: json.RawMessage(`{"start":42}`)}).
		Build()
	res, err := h.deployments.Deploy(ctx, again)
	if err != nil {
		t.Fatalf("second Deploy: %v", err)
	}
	if res.Decision != domain.DecisionUnchanged {
		t.Errorf("Decision = %q, want %q", res.Decision, domain.DecisionUnchanged)
	}
	if res.Deployment.State != domain.DeploymentStateActive {
		t.Errorf("State = %q, want %q", res.Deployment.State, domain.DeploymentStateActive)
	}
}

func TestDeploy_FilterChangeRetargets(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1", "n2", "n3")

	d := descriptor("counter").
		WithNodeFilter(&domain.NodeIDFilter{IDs: []domain.NodeID{"n1"}}).
		Build()
	if _, err := h.deployments.Deploy(ctx, d); err != nil {
		t.Fatalf("first Deploy: %v", err)
	}

	retargeted := d.ToBuilder().
		WithNodeFilter(&domain.LabelSelectorFilter{MatchLabels: map[string]string{}}).
		Build()
	res, err := h.deployments.Deploy(ctx, retargeted)
	if err != nil {
		t.Fatalf("second Deploy: %v", err)
	}
	if res.Decision != domain.DecisionRetarget {
		t.Errorf("Decision = %q, want %q", res.Decision, domain.DecisionRetarget)
	}
	assertEligibleNodes(t, res.Deployment, "n1", "n2", "n3")
	if res.Deployment.Descriptor.NodeFilter().Kind() != domain.NodeFilterLabelSelector {
		t.Errorf("stored filter kind = %q, want %q", res.Deployment.Descriptor.NodeFilter().Kind(), domain.NodeFilterLabelSelector)
	}
}

func TestDeploy_DifferentConfigurationConflicts(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")

	d := descriptor("counter").Build()
	if _, err := h.deployments.Deploy(ctx, d); err != nil {
		t.Fatalf("first Deploy: %v", err)
	}

	res, err := h.deployments.Deploy(ctx, d.ToBuilder().WithTotalCount(5).Build())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second Deploy: got %v, want ErrConflict", err)
	}
	if res.Decision != domain.DecisionConflict {
		t.Errorf("Decision = %q, want %q", res.Decision, domain.DecisionConflict)
	}

	stored, _ := h.deployments.Get(ctx, "counter")
	if stored.Descriptor.TotalCount() != 2 {
		t.Errorf("stored TotalCount = %d, want 2", stored.Descriptor.TotalCount())
	}
}

func TestDeploy_InvalidDescriptorRejected(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	d := domain.NewDescriptorBuilder().WithName("broken").Build()
	res, err := h.deployments.Deploy(ctx, d)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("Deploy: got %v, want ErrInvalidArgument", err)
	}
	if res.Decision != domain.DecisionRejected {
		t.Errorf("Decision = %q, want %q", res.Decision, domain.DecisionRejected)
	}

	if _, err := h.deployments.Get(ctx, "broken"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get: got %v, want ErrNotFound", err)
	}
	history, _ := h.deployments.History(ctx, "broken")
	if len(history) != 1 || history[0].Decision != domain.DecisionRejected {
		t.Errorf("history = %+v, want one rejected record", history)
	}
}

func TestDeploy_UnboundedAccepted(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")

	d := descriptor("counter").WithTotalCount(0).WithMaxPerNodeCount(0).Build()
	if _, err := h.deployments.Deploy(ctx, d); err != nil {
		t.Fatalf("Deploy: %v", err)
	}
}

func TestDeploy_RegistersStatistics(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")

	if _, err := h.deployments.Deploy(ctx, descriptor("plain").Build()); err != nil {
		t.Fatalf("Deploy plain: %v", err)
	}
	if _, err := h.deployments.Deploy(ctx, descriptor("timed").WithStatisticsEnabled(true).Build()); err != nil {
		t.Fatalf("Deploy timed: %v", err)
	}

	if h.stats.Registered("plain") {
		t.Error("plain: statistics registered, want none")
	}
	if !h.stats.Registered("timed") {
		t.Error("timed: statistics not registered")
	}
}

func TestDeploy_RetargetDisablingStatisticsUnregisters(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1", "n2")

	d := descriptor("timed").WithStatisticsEnabled(true).Build()
	if _, err := h.deployments.Deploy(ctx, d); err != nil {
		t.Fatalf("first Deploy: %v", err)
	}
	if !h.stats.Registered("timed") {
		t.Fatal("statistics not registered after first Deploy")
	}

	res, err := h.deployments.Deploy(ctx, d.ToBuilder().
		WithNodeFilter(&domain.NodeIDFilter{IDs: []domain.NodeID{"n2"}}).
		WithStatisticsEnabled(false).
		Build())
	if err != nil {
		t.Fatalf("second Deploy: %v", err)
	}
	if res.Decision != domain.DecisionRetarget {
		t.Errorf("Decision = %q, want %q", res.Decision, domain.DecisionRetarget)
	}
	if res.Deployment.Descriptor.StatisticsEnabled() {
		t.Error("stored descriptor still enables statistics")
	}
	if h.stats.Registered("timed") {
		t.Error("statistics still registered after retarget disabled them")
	}
	assertEligibleNodes(t, res.Deployment, "n2")
}

// flakyRunner fails the first failures runs and delegates afterwards.
type flakyRunner struct {
	next     domain.DeploymentRunner
	failures int
}

func (r *flakyRunner) Run(ctx context.Context, name domain.ServiceName) (domain.WorkflowHandle[struct{}], error) {
	if r.failures > 0 {
		r.failures--
		return nil, errors.New("engine unavailable")
	}
	return r.next.Run(ctx, name)
}

func TestDeploy_RetriesIncompleteDeployment(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")
	h.deployments.Orchestration = &application.OrchestrationService{
		Workflow: &flakyRunner{next: h.deployments.Orchestration.Workflow, failures: 1},
	}

	d := descriptor("counter").Build()
	if _, err := h.deployments.Deploy(ctx, d); err == nil {
		t.Fatal("first Deploy: expected orchestration error")
	}
	dep, err := h.deployments.Get(ctx, "counter")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if dep.State != domain.DeploymentStatePending {
		t.Fatalf("State after failure = %q, want %q", dep.State, domain.DeploymentStatePending)
	}

	res, err := h.deployments.Deploy(ctx, d)
	if err != nil {
		t.Fatalf("retry Deploy: %v", err)
	}
	if res.Decision != domain.DecisionUnchanged {
		t.Errorf("Decision = %q, want %q", res.Decision, domain.DecisionUnchanged)
	}
	if res.Deployment.State != domain.DeploymentStateActive {
		t.Errorf("State = %q, want %q", res.Deployment.State, domain.DeploymentStateActive)
	}
	assertEligibleNodes(t, res.Deployment, "n1")
}

func TestDeployBatch(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")

	a := descriptor("a").Build()
	b := descriptor("b").Build()
	results, err := h.deployments.DeployBatch(ctx, domain.DeploymentBatch{
		Services: []domain.ServiceDescriptor{a, b, a},
	})
	if err != nil {
		t.Fatalf("DeployBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results: got %d, want 2", len(results))
	}

	list, _ := h.deployments.List(ctx)
	if len(list) != 2 {
		t.Errorf("List: got %d, want 2", len(list))
	}
}

func TestDeployBatch_ConflictingEntriesDeployNothing(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	a := descriptor("a").Build()
	_, err := h.deployments.DeployBatch(ctx, domain.DeploymentBatch{
		Services: []domain.ServiceDescriptor{a, a.ToBuilder().WithCacheName("other").Build()},
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("DeployBatch: got %v, want ErrConflict", err)
	}
	list, _ := h.deployments.List(ctx)
	if len(list) != 0 {
		t.Errorf("List: got %d, want 0", len(list))
	}
}

func TestUndeploy(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")

	if _, err := h.deployments.Deploy(ctx, descriptor("timed").WithStatisticsEnabled(true).Build()); err != nil {
		t.Fatal(err)
	}

	if err := h.deployments.Undeploy(ctx, "timed"); err != nil {
		t.Fatalf("Undeploy: %v", err)
	}

	if _, err := h.deployments.Get(ctx, "timed"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after Undeploy: got %v, want ErrNotFound", err)
	}
	if h.stats.Registered("timed") {
		t.Error("statistics still registered after Undeploy")
	}

	history, err := h.deployments.History(ctx, "timed")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	assertDecisions(t, history, domain.DecisionCreate, domain.DecisionUndeploy)
}

// failingDeleteRepo rejects every Delete.
type failingDeleteRepo struct {
	domain.DeploymentRepository
}

func (failingDeleteRepo) Delete(context.Context, domain.ServiceName) error {
	return errors.New("disk full")
}

func TestUndeploy_DeleteFailureKeepsDeployment(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")

	if _, err := h.deployments.Deploy(ctx, descriptor("timed").WithStatisticsEnabled(true).Build()); err != nil {
		t.Fatal(err)
	}
	h.deployments.Deployments = failingDeleteRepo{DeploymentRepository: h.deployments.Deployments}

	if err := h.deployments.Undeploy(ctx, "timed"); err == nil {
		t.Fatal("Undeploy: expected error")
	}

	dep, err := h.deployments.Get(ctx, "timed")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if dep.State != domain.DeploymentStateActive {
		t.Errorf("State = %q, want %q", dep.State, domain.DeploymentStateActive)
	}
	if !h.stats.Registered("timed") {
		t.Error("statistics unregistered although the deployment remains")
	}
	history, err := h.deployments.History(ctx, "timed")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	assertDecisions(t, history, domain.DecisionCreate)
}

func TestUndeploy_NotFound(t *testing.T) {
	h := setup(t)
	err := h.deployments.Undeploy(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Undeploy: got %v, want ErrNotFound", err)
	}
}

func TestHistory_RecordsEveryDecision(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")

	d := descriptor("counter").Build()
	_, _ = h.deployments.Deploy(ctx, d)
	_, _ = h.deployments.Deploy(ctx, d)
	_, _ = h.deployments.Deploy(ctx, d.ToBuilder().WithNodeFilter(&domain.NodeIDFilter{IDs: []domain.NodeID{"n1"}}).Build())
	_, _ = h.deployments.Deploy(ctx, d.ToBuilder().WithMaxPerNodeCount(3).Build())

	history, err := h.deployments.History(ctx, "counter")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	assertDecisions(t, history,
		domain.DecisionCreate, domain.DecisionUnchanged, domain.DecisionRetarget, domain.DecisionConflict)
	if history[0].ID != "rec-1" {
		t.Errorf("first record ID = %q, want rec-1", history[0].ID)
	}
}

func TestPurgeHistory(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1")

	if _, err := h.deployments.Deploy(ctx, descriptor("counter").Build()); err != nil {
		t.Fatal(err)
	}
	if err := h.deployments.PurgeHistory(ctx, "counter"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("PurgeHistory while deployed: got %v, want ErrConflict", err)
	}

	must(t, h.deployments.Undeploy(ctx, "counter"))
	must(t, h.deployments.PurgeHistory(ctx, "counter"))

	history, _ := h.deployments.History(ctx, "counter")
	if len(history) != 0 {
		t.Errorf("history after purge: got %d, want 0", len(history))
	}
}

func TestRegisterNode_Validation(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	err := h.nodes.Register(ctx, domain.ClusterNode{Name: "no-id"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("missing ID: got %v, want ErrInvalidArgument", err)
	}
	err = h.nodes.Register(ctx, domain.ClusterNode{ID: "n1"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("missing name: got %v, want ErrInvalidArgument", err)
	}
}

func TestRemoveNode(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	registerNodes(t, h, "n1", "n2")

	must(t, h.nodes.Remove(ctx, "n1"))

	nodes, err := h.nodes.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "n2" {
		t.Errorf("nodes = %v, want [n2]", nodes)
	}
}

// --- helpers ---

func registerNodes(t *testing.T, h testHarness, ids ...string) {
	t.Helper()
	for _, id := range ids {
		must(t, h.nodes.Register(context.Background(), domain.ClusterNode{
			ID:   domain.NodeID(id),
			Name: "node-" + id,
		}))
	}
}

func assertEligibleNodes(t *testing.T, dep domain.ServiceDeployment, want ...domain.NodeID) {
	t.Helper()
	if len(dep.EligibleNodes) != len(want) {
		t.Fatalf("EligibleNodes = %v, want %v", dep.EligibleNodes, want)
	}
	for i := range want {
		if dep.EligibleNodes[i] != want[i] {
			t.Errorf("EligibleNodes[%d] = %q, want %q", i, dep.EligibleNodes[i], want[i])
		}
	}
}

func assertDecisions(t *testing.T, history []domain.DecisionRecord, want ...domain.DeployDecision) {
	t.Helper()
	if len(history) != len(want) {
		t.Fatalf("history has %d records, want %d: %+v", len(history), len(want), history)
	}
	for i := range want {
		if history[i].Decision != want[i] {
			t.Errorf("history[%d].Decision = %q, want %q", i, history[i].Decision, want[i])
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
