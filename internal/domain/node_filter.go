package domain

const (
	NodeFilterNodeIDs       NodeFilterKind = "node-ids"
	NodeFilterLabelSelector NodeFilterKind = "label-selector"
)

// NodeIDFilter accepts an explicit set of nodes by ID. A nil filter
// lists no IDs and accepts nothing.
type NodeIDFilter struct {
	IDs []NodeID `json:"ids"`
}

func (f *NodeIDFilter) Kind() NodeFilterKind { return NodeFilterNodeIDs }

func (f *NodeIDFilter) Accept(node ClusterNode) bool {
	if f == nil {
		return false
	}
	for _, id := range f.IDs {
		if id == node.ID {
			return true
		}
	}
	return false
}

// LabelSelectorFilter accepts nodes by label matching. All labels in the
// selector must be present and equal on the node; an empty selector
// accepts every node, and so does a nil one.
type LabelSelectorFilter struct {
	MatchLabels map[string]string `json:"matchLabels"`
}

func (f *LabelSelectorFilter) Kind() NodeFilterKind { return NodeFilterLabelSelector }

func (f *LabelSelectorFilter) Accept(node ClusterNode) bool {
	if f == nil {
		return true
	}
	return matchLabels(node.Labels, f.MatchLabels)
}

func matchLabels(labels, selector map[string]string) bool {
	for k, v := range selector {
		if got, ok := labels[k]; !ok || got != v {
			return false
		}
	}
	return true
}
