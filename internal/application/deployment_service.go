package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/andreybell91/ignite/internal/domain"
)

// DeployResult reports what the engine decided for a deploy request and
// the deployment as it stands afterwards. Deployment is empty for
// rejected requests.
type DeployResult struct {
	Decision   domain.DeployDecision
	Deployment domain.ServiceDeployment
}

// DeploymentService accepts descriptors, decides how each request
// relates to what is already deployed and triggers orchestration.
type DeploymentService struct {
	Deployments   domain.DeploymentRepository
	Decisions     domain.DecisionRecordRepository
	Orchestration *OrchestrationService
	Statistics    domain.StatisticsRegistry // optional
	Logger        hclog.Logger
	Now           func() time.Time
	NewID         func() string
}

// Deploy validates d and applies it. Identical requests are no-ops once
// the deployment is active and re-run the workflow while it is not; a
// request that differs only in node filter re-resolves eligible nodes;
// any other difference under a deployed name fails with
// [domain.ErrConflict].
func (s *DeploymentService) Deploy(ctx context.Context, d domain.ServiceDescriptor) (DeployResult, error) {
	log := s.logger().With("service", d.Name())

	if err := domain.ValidateDescriptor(d); err != nil {
		log.Warn("descriptor rejected", "error", err)
		if d.Name() != "" {
			if rerr := s.record(ctx, d.Name(), domain.DecisionRejected, err.Error()); rerr != nil {
				return DeployResult{Decision: domain.DecisionRejected}, errors.Join(err, rerr)
			}
		}
		return DeployResult{Decision: domain.DecisionRejected}, err
	}
	if d.Unbounded() {
		log.Warn("descriptor sets neither a total nor a per-node count; instances are unlimited")
	}
	if d.AffinityWithoutCache() {
		log.Warn("affinity key has no cache name and will be ignored", "affinity_key", d.AffinityKey().String())
	}

	var existing *domain.ServiceDescriptor
	current, err := s.Deployments.Get(ctx, d.Name())
	switch {
	case err == nil:
		existing = &current.Descriptor
	case !errors.Is(err, domain.ErrNotFound):
		return DeployResult{}, fmt.Errorf("load deployment: %w", err)
	}

	decision := domain.ClassifyDeployRequest(existing, d)
	log = log.With("decision", decision)

	summary := d.String()
	switch decision {
	case domain.DecisionUnchanged:
		if current.State == domain.DeploymentStateActive {
			log.Debug("deploy request matches the deployed descriptor")
			if err := s.record(ctx, d.Name(), decision, "already deployed with the same configuration"); err != nil {
				return DeployResult{}, err
			}
			return DeployResult{Decision: decision, Deployment: current}, nil
		}
		// An earlier workflow did not finish; run it again.
		log.Info("resuming incomplete deployment", "state", current.State)
		summary = fmt.Sprintf("resumed from %s state", current.State)

	case domain.DecisionConflict:
		summary = fmt.Sprintf("already deployed with a different configuration: %s", current.Descriptor)
		log.Warn("deploy request conflicts with the deployed descriptor")
		if err := s.record(ctx, d.Name(), decision, summary); err != nil {
			return DeployResult{}, err
		}
		return DeployResult{Decision: decision, Deployment: current},
			fmt.Errorf("service %q: %w: %s", d.Name(), domain.ErrConflict, summary)

	case domain.DecisionCreate:
		dep := domain.ServiceDeployment{
			Descriptor: d,
			State:      domain.DeploymentStatePending,
			UpdatedAt:  s.now(),
		}
		if err := s.Deployments.Create(ctx, dep); err != nil {
			return DeployResult{}, err
		}

	case domain.DecisionRetarget:
		current.Descriptor = d
		current.State = domain.DeploymentStatePending
		current.UpdatedAt = s.now()
		if err := s.Deployments.Update(ctx, current); err != nil {
			return DeployResult{}, err
		}
	}

	if err := s.record(ctx, d.Name(), decision, summary); err != nil {
		return DeployResult{}, err
	}
	log.Info("deploying service", "node_filter", filterKind(d))

	if err := s.Orchestration.Orchestrate(ctx, d.Name()); err != nil {
		return DeployResult{Decision: decision}, fmt.Errorf("orchestrate: %w", err)
	}

	dep, err := s.Deployments.Get(ctx, d.Name())
	if err != nil {
		return DeployResult{Decision: decision}, err
	}
	log.Info("service deployed", "eligible_nodes", len(dep.EligibleNodes))
	return DeployResult{Decision: decision, Deployment: dep}, nil
}

// DeployBatch deduplicates the batch and deploys each entry in order.
// It stops at the first failure and returns the results gathered so far.
func (s *DeploymentService) DeployBatch(ctx context.Context, batch domain.DeploymentBatch) ([]DeployResult, error) {
	deduped, err := batch.Dedup()
	if err != nil {
		return nil, err
	}
	results := make([]DeployResult, 0, len(deduped.Services))
	for i, d := range deduped.Services {
		res, err := s.Deploy(ctx, d)
		if err != nil {
			return results, fmt.Errorf("services[%d] %q: %w", i, d.Name(), err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Get retrieves a deployment by service name.
func (s *DeploymentService) Get(ctx context.Context, name domain.ServiceName) (domain.ServiceDeployment, error) {
	return s.Deployments.Get(ctx, name)
}

// List returns all deployments ordered by name.
func (s *DeploymentService) List(ctx context.Context) ([]domain.ServiceDeployment, error) {
	return s.Deployments.List(ctx)
}

// History returns the decisions recorded for a service name, oldest first.
func (s *DeploymentService) History(ctx context.Context, name domain.ServiceName) ([]domain.DecisionRecord, error) {
	return s.Decisions.ListByService(ctx, name)
}

// Undeploy removes a deployment and then unregisters its statistics. The
// decision history is kept and gains an undeploy entry. When the removal
// fails the deployment keeps its previous state and its statistics.
func (s *DeploymentService) Undeploy(ctx context.Context, name domain.ServiceName) error {
	dep, err := s.Deployments.Get(ctx, name)
	if err != nil {
		return err
	}

	log := s.logger().With("service", name)

	prev := dep.State
	dep.State = domain.DeploymentStateUndeploying
	dep.UpdatedAt = s.now()
	if err := s.Deployments.Update(ctx, dep); err != nil {
		return fmt.Errorf("mark undeploying: %w", err)
	}
	if err := s.Deployments.Delete(ctx, name); err != nil {
		log.Error("undeploy failed", "error", err)
		dep.State = prev
		if rerr := s.Deployments.Update(ctx, dep); rerr != nil {
			log.Error("restore deployment state", "state", prev, "error", rerr)
		}
		return fmt.Errorf("delete deployment: %w", err)
	}
	if s.Statistics != nil {
		s.Statistics.Unregister(name)
	}

	log.Info("service undeployed")
	return s.record(ctx, name, domain.DecisionUndeploy, "undeployed")
}

// PurgeHistory deletes the decision history of a name that is no longer
// deployed.
func (s *DeploymentService) PurgeHistory(ctx context.Context, name domain.ServiceName) error {
	_, err := s.Deployments.Get(ctx, name)
	switch {
	case err == nil:
		return fmt.Errorf("service %q: %w: still deployed", name, domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return s.Decisions.DeleteByService(ctx, name)
}

func (s *DeploymentService) record(ctx context.Context, name domain.ServiceName, decision domain.DeployDecision, summary string) error {
	rec := domain.DecisionRecord{
		ID:         s.newID(),
		Service:    name,
		Decision:   decision,
		Summary:    summary,
		RecordedAt: s.now(),
	}
	if err := s.Decisions.Append(ctx, rec); err != nil {
		return fmt.Errorf("record %s decision: %w", decision, err)
	}
	return nil
}

func (s *DeploymentService) logger() hclog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return hclog.NewNullLogger()
}

func (s *DeploymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DeploymentService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func filterKind(d domain.ServiceDescriptor) string {
	if d.NodeFilter() == nil {
		return "any"
	}
	return string(d.NodeFilter().Kind())
}
