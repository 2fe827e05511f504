// Package access is the single place mutation authorization is decided.
// Every function here is a pure predicate over (role, requester, project,
// grant); callers deny the action themselves when it returns false.
package access

import (
	"projecttracker/internal/model"
)

// HasPermission resolves one named capability for a requester.
//
// Admins pass everything. A project manager passes everything on projects
// they own. Team members are resolved against the per-project grant:
// "admin" in the grant passes any capability, "full_access_limited" passes
// any capability except "admin" itself, otherwise the grant must contain
// the capability exactly.
func HasPermission(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant, name string) bool {
	switch role {
	case model.RoleAdmin:
		return true
	case model.RoleProjectManager:
		return project != nil && project.ProjectManagerID == requesterID
	case model.RoleTeamMember:
		if grant.Has(model.CapAdmin) {
			return true
		}
		if grant.Has(model.CapFullAccessLimited) {
			return name != model.CapAdmin
		}
		return grant.Has(name)
	}
	return false
}

// anyOf resolves a threshold that accepts more than one capability.
func anyOf(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant, names ...string) bool {
	for _, name := range names {
		if HasPermission(role, requesterID, project, grant, name) {
			return true
		}
	}
	return false
}

// Edit thresholds: "edit" or the matching "manage_*" capability.

func CanEditPhase(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant) bool {
	return anyOf(role, requesterID, project, grant, model.CapEdit, model.CapManagePhases)
}

func CanEditDeliverable(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant) bool {
	return anyOf(role, requesterID, project, grant, model.CapEdit, model.CapManageDeliverables)
}

func CanEditTask(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant) bool {
	return anyOf(role, requesterID, project, grant, model.CapEdit, model.CapManageTasks)
}

// Delete thresholds. Phases and deliverables require "admin"; tasks also
// accept "manage_tasks".

func CanDeletePhase(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant) bool {
	return HasPermission(role, requesterID, project, grant, model.CapAdmin)
}

func CanDeleteDeliverable(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant) bool {
	return HasPermission(role, requesterID, project, grant, model.CapAdmin)
}

func CanDeleteTask(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant) bool {
	return anyOf(role, requesterID, project, grant, model.CapManageTasks, model.CapAdmin)
}

// Reorder thresholds: the matching "manage_*" or "edit".

func CanReorderPhase(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant) bool {
	return anyOf(role, requesterID, project, grant, model.CapManagePhases, model.CapEdit)
}

func CanReorderDeliverable(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant) bool {
	return anyOf(role, requesterID, project, grant, model.CapManageDeliverables, model.CapEdit)
}

// CanReorderTask additionally lets a task's own assignee drag it,
// regardless of what the grant says.
func CanReorderTask(role model.Role, requesterID int, project *model.Project, grant *model.PermissionGrant, task *model.Task) bool {
	if task != nil && task.AssigneeID == requesterID {
		return true
	}
	return anyOf(role, requesterID, project, grant, model.CapManageTasks, model.CapEdit)
}
