package application

import (
	"context"
	"fmt"

	"github.com/andreybell91/ignite/internal/domain"
)

// NodeService manages cluster node registration and queries.
type NodeService struct {
	Nodes domain.NodeRepository
}

func (s *NodeService) Register(ctx context.Context, node domain.ClusterNode) error {
	if node.ID == "" {
		return fmt.Errorf("%w: node ID is required", domain.ErrInvalidArgument)
	}
	if node.Name == "" {
		return fmt.Errorf("%w: node name is required", domain.ErrInvalidArgument)
	}
	return s.Nodes.Create(ctx, node)
}

func (s *NodeService) Get(ctx context.Context, id domain.NodeID) (domain.ClusterNode, error) {
	return s.Nodes.Get(ctx, id)
}

func (s *NodeService) List(ctx context.Context) ([]domain.ClusterNode, error) {
	return s.Nodes.List(ctx)
}

// Remove deregisters a node. Deployments keep their resolved node lists
// until they are next deployed.
func (s *NodeService) Remove(ctx context.Context, id domain.NodeID) error {
	return s.Nodes.Delete(ctx, id)
}
