package access

import (
	"testing"

	"projecttracker/internal/model"
)

func grant(caps ...string) *model.PermissionGrant {
	return &model.PermissionGrant{ProjectID: 1, UserID: 7, Capabilities: caps}
}

func project(managerID int) *model.Project {
	return &model.Project{ID: 1, Title: "rollout", ProjectManagerID: managerID}
}

func TestHasPermissionRoles(t *testing.T) {
	tests := []struct {
		name        string
		role        model.Role
		requesterID int
		project     *model.Project
		grant       *model.PermissionGrant
		capability  string
		want        bool
	}{
		{"admin always passes", model.RoleAdmin, 7, project(99), nil, model.CapAdmin, true},
		{"admin passes without project", model.RoleAdmin, 7, nil, nil, model.CapEdit, true},
		{"owning manager passes", model.RoleProjectManager, 42, project(42), nil, model.CapAdmin, true},
		{"non-owning manager fails", model.RoleProjectManager, 42, project(99), grant(model.CapEdit), model.CapEdit, false},
		{"manager without project fails", model.RoleProjectManager, 42, nil, nil, model.CapEdit, false},
		{"member with exact capability", model.RoleTeamMember, 7, project(99), grant(model.CapEdit), model.CapEdit, true},
		{"member without capability", model.RoleTeamMember, 7, project(99), grant(model.CapView), model.CapEdit, false},
		{"member with nil grant", model.RoleTeamMember, 7, project(99), nil, model.CapView, false},
		{"grant admin passes anything", model.RoleTeamMember, 7, project(99), grant(model.CapAdmin), model.CapManagePhases, true},
		{"full_access_limited passes edit", model.RoleTeamMember, 7, project(99), grant(model.CapFullAccessLimited), model.CapEdit, true},
		{"full_access_limited blocks admin", model.RoleTeamMember, 7, project(99), grant(model.CapFullAccessLimited), model.CapAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasPermission(tt.role, tt.requesterID, tt.project, tt.grant, tt.capability)
			if got != tt.want {
				t.Errorf("HasPermission(%v, %d, ..., %q) = %v, want %v",
					tt.role, tt.requesterID, tt.capability, got, tt.want)
			}
		})
	}
}

func TestEditThresholds(t *testing.T) {
	p := project(99)

	if !CanEditTask(model.RoleTeamMember, 7, p, grant(model.CapManageTasks)) {
		t.Error("manage_tasks should allow editing a task")
	}
	if !CanEditTask(model.RoleTeamMember, 7, p, grant(model.CapEdit)) {
		t.Error("edit should allow editing a task")
	}
	if CanEditTask(model.RoleTeamMember, 7, p, grant(model.CapManagePhases)) {
		t.Error("manage_phases must not allow editing a task")
	}
	if !CanEditDeliverable(model.RoleTeamMember, 7, p, grant(model.CapManageDeliverables)) {
		t.Error("manage_deliverables should allow editing a deliverable")
	}
	if !CanEditPhase(model.RoleTeamMember, 7, p, grant(model.CapManagePhases)) {
		t.Error("manage_phases should allow editing a phase")
	}
	if CanEditPhase(model.RoleTeamMember, 7, p, grant(model.CapManageTasks)) {
		t.Error("manage_tasks must not allow editing a phase")
	}
}

func TestDeleteThresholds(t *testing.T) {
	p := project(99)

	// Phase and deliverable deletion is admin-only; edit and manage_* are
	// not enough.
	for _, caps := range [][]string{
		{model.CapEdit},
		{model.CapManagePhases},
		{model.CapManageDeliverables},
		{model.CapFullAccessLimited, model.CapEdit},
	} {
		if CanDeletePhase(model.RoleTeamMember, 7, p, grant(caps...)) {
			t.Errorf("grant %v must not allow deleting a phase", caps)
		}
		if CanDeleteDeliverable(model.RoleTeamMember, 7, p, grant(caps...)) {
			t.Errorf("grant %v must not allow deleting a deliverable", caps)
		}
	}
	if !CanDeletePhase(model.RoleTeamMember, 7, p, grant(model.CapAdmin)) {
		t.Error("admin capability should allow deleting a phase")
	}

	// Task deletion accepts manage_tasks as well as admin.
	if !CanDeleteTask(model.RoleTeamMember, 7, p, grant(model.CapManageTasks)) {
		t.Error("manage_tasks should allow deleting a task")
	}
	if CanDeleteTask(model.RoleTeamMember, 7, p, grant(model.CapEdit)) {
		t.Error("edit must not allow deleting a task")
	}

	// Role short-circuits still apply.
	if !CanDeletePhase(model.RoleProjectManager, 42, project(42), nil) {
		t.Error("owning project manager should delete phases")
	}
	if !CanDeleteDeliverable(model.RoleAdmin, 1, nil, nil) {
		t.Error("admin role should delete deliverables")
	}
}

func TestReorderThresholds(t *testing.T) {
	p := project(99)
	task := &model.Task{ID: 3, ProjectID: 1, AssigneeID: 7}

	if !CanReorderTask(model.RoleTeamMember, 7, p, grant(), task) {
		t.Error("assignee should reorder their own task without any grant")
	}
	if CanReorderTask(model.RoleTeamMember, 8, p, grant(), task) {
		t.Error("non-assignee without grant must not reorder the task")
	}
	if !CanReorderTask(model.RoleTeamMember, 8, p, grant(model.CapManageTasks), task) {
		t.Error("manage_tasks should reorder any task")
	}
	if !CanReorderDeliverable(model.RoleTeamMember, 7, p, grant(model.CapEdit)) {
		t.Error("edit should reorder deliverables")
	}
	if CanReorderPhase(model.RoleTeamMember, 7, p, grant(model.CapManageTasks)) {
		t.Error("manage_tasks must not reorder phases")
	}
}

// Given role=TeamMember with grant={"full_access_limited"}, "admin" is
// denied and "edit" is allowed.
func TestFullAccessLimitedMatrix(t *testing.T) {
	p := project(99)
	g := grant(model.CapFullAccessLimited)

	if HasPermission(model.RoleTeamMember, 7, p, g, model.CapAdmin) {
		t.Error("full_access_limited must not grant admin")
	}
	if !HasPermission(model.RoleTeamMember, 7, p, g, model.CapEdit) {
		t.Error("full_access_limited should grant edit")
	}
	if CanDeletePhase(model.RoleTeamMember, 7, p, g) {
		t.Error("full_access_limited must not reach admin-only deletion")
	}
	if !CanEditPhase(model.RoleTeamMember, 7, p, g) {
		t.Error("full_access_limited should reach edit thresholds")
	}
}
