package domain

import "context"

// NodeRepository persists and retrieves cluster node metadata.
type NodeRepository interface {
	Create(ctx context.Context, node ClusterNode) error
	Get(ctx context.Context, id NodeID) (ClusterNode, error)
	List(ctx context.Context) ([]ClusterNode, error)
	Delete(ctx context.Context, id NodeID) error
}

// DeploymentRepository persists accepted service deployments keyed by
// service name.
type DeploymentRepository interface {
	Create(ctx context.Context, d ServiceDeployment) error
	Get(ctx context.Context, name ServiceName) (ServiceDeployment, error)
	List(ctx context.Context) ([]ServiceDeployment, error)
	Update(ctx context.Context, d ServiceDeployment) error
	Delete(ctx context.Context, name ServiceName) error
}

// DecisionRecordRepository persists the decision history of each service
// name. Records are listed in the order they were appended.
type DecisionRecordRepository interface {
	Append(ctx context.Context, record DecisionRecord) error
	ListByService(ctx context.Context, name ServiceName) ([]DecisionRecord, error)
	DeleteByService(ctx context.Context, name ServiceName) error
}
