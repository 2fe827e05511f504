package notify

// Event types double as MQ routing keys on the events exchange.
const (
	EventTaskCreated              = "task.created"
	EventTaskDeleted              = "task.deleted"
	EventTaskStatusChanged        = "task.status.changed"
	EventDeliverableDeleted       = "deliverable.deleted"
	EventDeliverableStatusChanged = "deliverable.status.changed"
	EventPhaseDeleted             = "phase.deleted"
	EventPhaseStatusChanged       = "phase.status.changed"
	EventPermissionsAssigned      = "permissions.assigned"
)
