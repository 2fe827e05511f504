package model

// Capability strings grantable to a user within one project's scope.
const (
	CapView               = "view"
	CapEdit               = "edit"
	CapManageTasks        = "manage_tasks"
	CapManageDeliverables = "manage_deliverables"
	CapManagePhases       = "manage_phases"
	CapAdmin              = "admin"
	CapFullAccessLimited  = "full_access_limited"
)

var knownCapabilities = map[string]bool{
	CapView:               true,
	CapEdit:               true,
	CapManageTasks:        true,
	CapManageDeliverables: true,
	CapManagePhases:       true,
	CapAdmin:              true,
	CapFullAccessLimited:  true,
}

// KnownCapability reports whether name is one of the grantable capabilities.
func KnownCapability(name string) bool {
	return knownCapabilities[name]
}

// PermissionGrant is the capability set of one user within one project.
// At most one grant exists per (project, user) pair; assignment replaces
// the whole set.
type PermissionGrant struct {
	ProjectID    int      `json:"project_id"`
	UserID       int      `json:"user_id"`
	Capabilities []string `json:"capabilities"`
}

// Has reports whether the grant contains the capability exactly.
func (g *PermissionGrant) Has(name string) bool {
	if g == nil {
		return false
	}
	for _, c := range g.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}
