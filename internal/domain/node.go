package domain

// NodeID uniquely identifies a cluster node.
type NodeID string

// ClusterNode is the view of a cluster member that node filters see. It is
// stored in the node repository and handed to [NodeFilter.Accept] during
// eligibility resolution.
type ClusterNode struct {
	ID         NodeID
	Name       string
	Labels     map[string]string
	Attributes map[string]string
}

// NodeFilterKind identifies the implementation of a [NodeFilter].
type NodeFilterKind string

// NodeFilter is a predicate restricting the nodes a service may be placed
// on. Filters are frequently rebuilt per request even when logically
// unchanged, so descriptors compare them by [NodeFilterKind] only.
type NodeFilter interface {
	Kind() NodeFilterKind
	Accept(node ClusterNode) bool
}

// EligibleNodes returns the nodes of pool accepted by filter, preserving
// pool order. A nil filter accepts every node.
func EligibleNodes(filter NodeFilter, pool []ClusterNode) []ClusterNode {
	out := make([]ClusterNode, 0, len(pool))
	for _, n := range pool {
		if filter == nil || filter.Accept(n) {
			out = append(out, n)
		}
	}
	return out
}

// NodeIDs returns the IDs of nodes in order.
func NodeIDs(nodes []ClusterNode) []NodeID {
	ids := make([]NodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func nodeFilterKindOf(f NodeFilter) NodeFilterKind {
	if f == nil {
		return ""
	}
	return f.Kind()
}
