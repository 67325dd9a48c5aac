package domain

import "time"

// DecisionRecord is one entry of the append-only history of engine
// decisions for a service name.
type DecisionRecord struct {
	ID         string
	Service    ServiceName
	Decision   DeployDecision
	Summary    string
	RecordedAt time.Time
}
