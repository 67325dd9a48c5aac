package domain

import (
	"context"
	"fmt"
	"time"
)

// DeploymentRunner starts deployment workflows.
type DeploymentRunner interface {
	Run(ctx context.Context, name ServiceName) (WorkflowHandle[struct{}], error)
}

// WorkflowEngine registers a [DeploymentWorkflow] with a concrete
// workflow engine and returns the runner that starts it.
type WorkflowEngine interface {
	DeploymentRunner(wf *DeploymentWorkflow) (DeploymentRunner, error)
}

// ResolveEligibleInput is the input of the resolve-eligible-nodes activity.
type ResolveEligibleInput struct {
	Service ServiceName
	Pool    []ClusterNode
}

// UpdateDeploymentInput is the input of the update-deployment activity.
type UpdateDeploymentInput struct {
	Service       ServiceName
	EligibleNodes []NodeID
	State         DeploymentState
}

// DeploymentWorkflow brings an accepted deployment to the active state:
// it loads the node pool, applies the descriptor's node filter, brings the
// statistics registry in line with the descriptor and records the outcome.
//
// Every step runs as an activity, so engines may persist and replay
// them. Activity inputs and outputs are plain values; descriptors are
// reloaded from the repository inside the activities that need them.
type DeploymentWorkflow struct {
	Deployments DeploymentRepository
	Nodes       NodeRepository
	Statistics  StatisticsRegistry // nil disables registration
	Now         func() time.Time
}

// Name is the stable workflow name engines register the workflow under.
func (wf *DeploymentWorkflow) Name() string { return "deploy-service" }

// Run executes the workflow for the named deployment.
func (wf *DeploymentWorkflow) Run(runner DurableRunner, name ServiceName) (struct{}, error) {
	pool, err := RunActivity(runner, wf.LoadNodePool(), struct{}{})
	if err != nil {
		return struct{}{}, fmt.Errorf("load node pool: %w", err)
	}

	eligible, err := RunActivity(runner, wf.ResolveEligibleNodes(), ResolveEligibleInput{
		Service: name,
		Pool:    pool,
	})
	if err != nil {
		return struct{}{}, fmt.Errorf("resolve eligible nodes: %w", err)
	}

	if _, err := RunActivity(runner, wf.SyncStatistics(), name); err != nil {
		return struct{}{}, fmt.Errorf("sync statistics: %w", err)
	}

	_, err = RunActivity(runner, wf.UpdateDeployment(), UpdateDeploymentInput{
		Service:       name,
		EligibleNodes: eligible,
		State:         DeploymentStateActive,
	})
	if err != nil {
		return struct{}{}, fmt.Errorf("update deployment: %w", err)
	}
	return struct{}{}, nil
}

// LoadNodePool lists every registered node.
func (wf *DeploymentWorkflow) LoadNodePool() Activity[struct{}, []ClusterNode] {
	return NewActivity("load-node-pool", func(ctx context.Context, _ struct{}) ([]ClusterNode, error) {
		return wf.Nodes.List(ctx)
	})
}

// ResolveEligibleNodes applies the deployment's node filter to the pool.
func (wf *DeploymentWorkflow) ResolveEligibleNodes() Activity[ResolveEligibleInput, []NodeID] {
	return NewActivity("resolve-eligible-nodes", func(ctx context.Context, in ResolveEligibleInput) ([]NodeID, error) {
		dep, err := wf.Deployments.Get(ctx, in.Service)
		if err != nil {
			return nil, err
		}
		return NodeIDs(EligibleNodes(dep.Descriptor.NodeFilter(), in.Pool)), nil
	})
}

// SyncStatistics makes the statistics registry follow the stored
// descriptor: the service is registered when statistics are enabled and
// unregistered otherwise. It reports whether the service is registered.
func (wf *DeploymentWorkflow) SyncStatistics() Activity[ServiceName, bool] {
	return NewActivity("sync-statistics", func(ctx context.Context, name ServiceName) (bool, error) {
		if wf.Statistics == nil {
			return false, nil
		}
		dep, err := wf.Deployments.Get(ctx, name)
		if err != nil {
			return false, err
		}
		if !dep.Descriptor.StatisticsEnabled() {
			wf.Statistics.Unregister(name)
			return false, nil
		}
		if err := wf.Statistics.Register(name); err != nil {
			return false, err
		}
		return true, nil
	})
}

// UpdateDeployment stores the resolved nodes and the new state.
func (wf *DeploymentWorkflow) UpdateDeployment() Activity[UpdateDeploymentInput, struct{}] {
	return NewActivity("update-deployment", func(ctx context.Context, in UpdateDeploymentInput) (struct{}, error) {
		dep, err := wf.Deployments.Get(ctx, in.Service)
		if err != nil {
			return struct{}{}, err
		}
		dep.EligibleNodes = in.EligibleNodes
		dep.State = in.State
		dep.UpdatedAt = wf.now()
		return struct{}{}, wf.Deployments.Update(ctx, dep)
	})
}

func (wf *DeploymentWorkflow) now() time.Time {
	if wf.Now != nil {
		return wf.Now()
	}
	return time.Now()
}
