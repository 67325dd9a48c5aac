package domain

import "time"

// DeploymentState indicates the lifecycle state of a service deployment.
type DeploymentState string

const (
	DeploymentStatePending     DeploymentState = "pending"
	DeploymentStateActive      DeploymentState = "active"
	DeploymentStateUndeploying DeploymentState = "undeploying"
)

// ServiceDeployment is an accepted descriptor as tracked by the engine,
// together with the nodes its filter currently admits.
type ServiceDeployment struct {
	Descriptor    ServiceDescriptor
	EligibleNodes []NodeID
	State         DeploymentState
	UpdatedAt     time.Time
}

// Name returns the deployment's identity.
func (d ServiceDeployment) Name() ServiceName { return d.Descriptor.Name() }
