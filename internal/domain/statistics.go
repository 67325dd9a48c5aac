package domain

// StatisticsRegistry holds per-service method invocation histograms. The
// engine registers a service while its descriptor enables statistics and
// unregisters it when they are turned off or the service is undeployed.
// Both operations are idempotent. Collection itself happens in service
// proxies, outside this module.
type StatisticsRegistry interface {
	Register(name ServiceName) error
	Unregister(name ServiceName)
}
