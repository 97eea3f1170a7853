package metrics

const (
	LabelResource = "resource"
	LabelReason   = "reason"
)

const (
	ResourceUndefined   = "undefined"
	ResourceCommittee   = "committee"
	ResourcePerformance = "performance"
)

const (
	DropReasonQueueFull = "queue_full"
	DropReasonOutdated  = "outdated"
)
