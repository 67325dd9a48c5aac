package application

import (
	"context"
	"fmt"

	"github.com/andreybell91/ignite/internal/domain"
)

// OrchestrationService executes the deployment workflow.
type OrchestrationService struct {
	Workflow domain.DeploymentRunner
}

// Orchestrate starts the deployment workflow for the named service and
// waits for it to complete.
func (o *OrchestrationService) Orchestrate(ctx context.Context, name domain.ServiceName) error {
	handle, err := o.Workflow.Run(ctx, name)
	if err != nil {
		return fmt.Errorf("start deployment workflow: %w", err)
	}
	_, err = handle.AwaitResult(ctx)
	return err
}
