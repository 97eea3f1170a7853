package metrics

// Prometheus metric namespaces
const (
	namespaceDirectory = "directory"
	namespaceStorage   = "storage"
)

// Directory subsystems
const (
	subsystemCommittee   = "committee"
	subsystemPerformance = "performance"
	subsystemEngine      = "engine"
)

// Storage subsystems
const (
	subsystemCache = "cache"
)
