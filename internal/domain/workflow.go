package domain

import (
	"context"
	"fmt"
)

// Activity is one named step of a workflow. Engines may run an activity
// more than once (after a crash, on replay), so implementations must be
// idempotent.
type Activity[I any, O any] interface {
	Name() string
	Run(ctx context.Context, in I) (O, error)
}

// DurableRunner is handed to a workflow body by the engine executing it.
type DurableRunner interface {
	ID() string

	// Context is the workflow's own context: the replay context in a
	// durable engine, the caller's context in the synchronous one.
	Context() context.Context

	// Run executes an activity through the engine. Workflow bodies call
	// [RunActivity] instead, which keeps the types.
	Run(activity Activity[any, any], in any) (any, error)
}

// RunActivity executes a typed activity through runner.
func RunActivity[I any, O any](runner DurableRunner, activity Activity[I, O], in I) (O, error) {
	result, err := runner.Run(&activityAdapter[I, O]{activity: activity}, in)
	if err != nil {
		var zero O
		return zero, err
	}
	out, ok := result.(O)
	if !ok && result != nil {
		return out, fmt.Errorf("activity %q returned %T", activity.Name(), result)
	}
	return out, nil
}

// WorkflowHandle refers to a started workflow execution.
type WorkflowHandle[O any] interface {
	WorkflowID() string
	AwaitResult(ctx context.Context) (O, error)
}

// NewActivity names fn as an activity. Workflow types expose their steps
// as methods built with it, so engines can register each step by name.
func NewActivity[I, O any](name string, fn func(context.Context, I) (O, error)) Activity[I, O] {
	return &activityFunc[I, O]{name: name, fn: fn}
}

type activityFunc[I, O any] struct {
	name string
	fn   func(context.Context, I) (O, error)
}

func (a *activityFunc[I, O]) Name() string                             { return a.name }
func (a *activityFunc[I, O]) Run(ctx context.Context, in I) (O, error) { return a.fn(ctx, in) }

// activityAdapter erases an activity's types for [DurableRunner.Run].
type activityAdapter[I any, O any] struct{ activity Activity[I, O] }

func (a *activityAdapter[I, O]) Name() string { return a.activity.Name() }
func (a *activityAdapter[I, O]) Run(ctx context.Context, in any) (any, error) {
	return a.activity.Run(ctx, in.(I))
}
