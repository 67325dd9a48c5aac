// Package syncworkflow provides a synchronous, in-process [domain.WorkflowEngine].
// Activities execute inline with no persistence or replay.
package syncworkflow

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/andreybell91/ignite/internal/domain"
)

var runCounter atomic.Int64

// Engine implements [domain.WorkflowEngine] with synchronous, in-process
// execution. No durable state is kept.
type Engine struct{}

func (e *Engine) DeploymentRunner(wf *domain.DeploymentWorkflow) (domain.DeploymentRunner, error) {
	return &runner{wf: wf}, nil
}

type runner struct {
	wf *domain.DeploymentWorkflow
}

// Run executes the workflow before returning; the handle only carries
// the outcome.
func (r *runner) Run(ctx context.Context, name domain.ServiceName) (domain.WorkflowHandle[struct{}], error) {
	id := fmt.Sprintf("sync-%d", runCounter.Add(1))
	dr := &syncRunner{id: id, ctx: ctx}
	result, err := r.wf.Run(dr, name)
	return &handle{id: id, result: result, err: err}, nil
}

type syncRunner struct {
	id  string
	ctx context.Context
}

func (r *syncRunner) ID() string               { return r.id }
func (r *syncRunner) Context() context.Context { return r.ctx }
func (r *syncRunner) Run(activity domain.Activity[any, any], in any) (any, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	return activity.Run(r.ctx, in)
}

type handle struct {
	id     string
	result struct{}
	err    error
}

func (h *handle) WorkflowID() string                              { return h.id }
func (h *handle) AwaitResult(_ context.Context) (struct{}, error) { return h.result, h.err }
