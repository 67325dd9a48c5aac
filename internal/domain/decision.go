package domain

// DeployDecision is the engine's verdict on a deploy request compared
// with what is already deployed under the same name.
type DeployDecision string

const (
	// DecisionCreate: nothing is deployed under the name.
	DecisionCreate DeployDecision = "create"
	// DecisionUnchanged: the request fully equals the deployed descriptor.
	DecisionUnchanged DeployDecision = "unchanged"
	// DecisionRetarget: only the node filter kind changed.
	DecisionRetarget DeployDecision = "retarget"
	// DecisionConflict: the name is taken by a different configuration.
	DecisionConflict DeployDecision = "conflict"
	// DecisionRejected: the request failed validation.
	DecisionRejected DeployDecision = "rejected"
	// DecisionUndeploy: the service was undeployed.
	DecisionUndeploy DeployDecision = "undeploy"
)

// ClassifyDeployRequest compares an incoming descriptor with the one
// deployed under the same name, if any.
func ClassifyDeployRequest(existing *ServiceDescriptor, incoming ServiceDescriptor) DeployDecision {
	switch {
	case existing == nil:
		return DecisionCreate
	case FullEquality(*existing, incoming):
		return DecisionUnchanged
	case FilterInsensitiveEquality(*existing, incoming):
		return DecisionRetarget
	default:
		return DecisionConflict
	}
}
