package engine

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
	"projecttracker/internal/notify"
	"projecttracker/internal/store"
	"projecttracker/internal/store/memory"
)

type capturingDispatcher struct {
	events []notify.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event notify.Event) error {
	d.events = append(d.events, event)
	return nil
}

func newTestEngine(t *testing.T) (*Engine, store.Store, *capturingDispatcher) {
	t.Helper()
	st := memory.New()
	d := &capturingDispatcher{}
	e := New(st, notify.NewNotifier(d, zap.NewNop()), zap.NewNop())
	return e, st, d
}

// seedHierarchy builds one project with one phase, one deliverable and the
// given task statuses, returning all ids.
func seedHierarchy(t *testing.T, st store.Store, taskStatuses ...model.Status) (projectID, phaseID, deliverableID int, taskIDs []int) {
	t.Helper()
	ctx := context.Background()

	projectID, err := st.Projects.Insert(ctx, &model.Project{Title: "rollout", ProjectManagerID: 42})
	if err != nil {
		t.Fatalf("insert project: %v", err)
	}
	phaseID, err = st.Phases.Insert(ctx, &model.Phase{ProjectID: projectID, Title: "build", Status: model.StatusTodo})
	if err != nil {
		t.Fatalf("insert phase: %v", err)
	}
	deliverableID, err = st.Deliverables.Insert(ctx, &model.Deliverable{
		ProjectID: projectID, PhaseID: phaseID, Title: "api", Status: model.StatusTodo, AssigneeIDs: []int{7},
	})
	if err != nil {
		t.Fatalf("insert deliverable: %v", err)
	}
	for i, s := range taskStatuses {
		id, err := st.Tasks.Insert(ctx, &model.Task{
			ProjectID: projectID, DeliverableID: deliverableID,
			Text: "task", Status: s, AssigneeID: 100 + i,
		})
		if err != nil {
			t.Fatalf("insert task: %v", err)
		}
		taskIDs = append(taskIDs, id)
	}
	return projectID, phaseID, deliverableID, taskIDs
}

func TestDeliverableDerivation(t *testing.T) {
	tests := []struct {
		name     string
		statuses []model.Status
		moved    model.Status // status written to the first task
		want     model.Status
	}{
		{"all done", []model.Status{model.StatusDone, model.StatusDone}, model.StatusDone, model.StatusDone},
		{"all todo", []model.Status{model.StatusTodo, model.StatusTodo}, model.StatusTodo, model.StatusTodo},
		{"done and todo", []model.Status{model.StatusTodo, model.StatusTodo}, model.StatusDone, model.StatusInProgress},
		{"in-progress present", []model.Status{model.StatusTodo, model.StatusDone}, model.StatusInProgress, model.StatusInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, st, _ := newTestEngine(t)
			ctx := context.Background()
			_, _, deliverableID, taskIDs := seedHierarchy(t, st, tt.statuses...)

			if err := e.SetTaskStatus(ctx, taskIDs[0], tt.moved); err != nil {
				t.Fatalf("SetTaskStatus: %v", err)
			}
			d, err := st.Deliverables.Get(ctx, deliverableID)
			if err != nil {
				t.Fatalf("get deliverable: %v", err)
			}
			if d.Status != tt.want {
				t.Errorf("deliverable status = %q, want %q", d.Status, tt.want)
			}
		})
	}
}

func TestSetTaskStatusIdempotent(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	projectID, phaseID, deliverableID, taskIDs := seedHierarchy(t, st,
		model.StatusTodo, model.StatusDone)

	snapshot := func() (model.Status, model.Status, int) {
		d, err := st.Deliverables.Get(ctx, deliverableID)
		if err != nil {
			t.Fatalf("get deliverable: %v", err)
		}
		p, err := st.Phases.Get(ctx, phaseID)
		if err != nil {
			t.Fatalf("get phase: %v", err)
		}
		proj, err := st.Projects.Get(ctx, projectID)
		if err != nil {
			t.Fatalf("get project: %v", err)
		}
		return d.Status, p.Status, proj.Progress
	}

	if err := e.SetTaskStatus(ctx, taskIDs[0], model.StatusDone); err != nil {
		t.Fatalf("first SetTaskStatus: %v", err)
	}
	d1, p1, prog1 := snapshot()

	if err := e.SetTaskStatus(ctx, taskIDs[0], model.StatusDone); err != nil {
		t.Fatalf("second SetTaskStatus: %v", err)
	}
	d2, p2, prog2 := snapshot()

	if d1 != d2 || p1 != p2 || prog1 != prog2 {
		t.Errorf("rerun diverged: (%q,%q,%d) vs (%q,%q,%d)", d1, p1, prog1, d2, p2, prog2)
	}
}

// A phase whose deliverables are a done/todo mix with nothing in progress
// resolves to in-progress, not todo.
func TestPhaseStatusMixedDoneTodo(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	projectID, phaseID, _, _ := seedHierarchy(t, st, model.StatusDone)

	// Second deliverable stuck at todo with a single todo task.
	d2ID, err := st.Deliverables.Insert(ctx, &model.Deliverable{
		ProjectID: projectID, PhaseID: phaseID, Title: "docs", Status: model.StatusTodo,
	})
	if err != nil {
		t.Fatalf("insert deliverable: %v", err)
	}
	if _, err := st.Tasks.Insert(ctx, &model.Task{
		ProjectID: projectID, DeliverableID: d2ID, Status: model.StatusTodo,
	}); err != nil {
		t.Fatalf("insert task: %v", err)
	}

	// Overriding the first deliverable to done leaves the phase's
	// deliverables at {done, todo} with nothing in progress.
	if err := e.SetDeliverableStatus(ctx, firstDeliverableID(t, st, phaseID), model.StatusDone); err != nil {
		t.Fatalf("SetDeliverableStatus: %v", err)
	}

	p, err := st.Phases.Get(ctx, phaseID)
	if err != nil {
		t.Fatalf("get phase: %v", err)
	}
	if p.Status != model.StatusInProgress {
		t.Errorf("phase status = %q, want %q for a done+todo mix", p.Status, model.StatusInProgress)
	}
}

func firstDeliverableID(t *testing.T, st store.Store, phaseID int) int {
	t.Helper()
	ds, err := st.Deliverables.FindByPhase(context.Background(), phaseID)
	if err != nil || len(ds) == 0 {
		t.Fatalf("find deliverables: %v", err)
	}
	return ds[0].ID
}

func TestProjectProgressRoundingAndBounds(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	projectID, phaseID, _, taskIDs := seedHierarchy(t, st, model.StatusTodo)

	// Two more phases, both still todo: 1 of 3 done after the cascade.
	for i := 0; i < 2; i++ {
		if _, err := st.Phases.Insert(ctx, &model.Phase{ProjectID: projectID, Status: model.StatusTodo}); err != nil {
			t.Fatalf("insert phase: %v", err)
		}
	}
	if err := e.SetTaskStatus(ctx, taskIDs[0], model.StatusDone); err != nil {
		t.Fatalf("SetTaskStatus: %v", err)
	}

	p, err := st.Phases.Get(ctx, phaseID)
	if err != nil {
		t.Fatalf("get phase: %v", err)
	}
	if p.Status != model.StatusDone {
		t.Fatalf("phase status = %q, want done", p.Status)
	}

	proj, err := st.Projects.Get(ctx, projectID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if proj.Progress != 33 {
		t.Errorf("progress = %d, want 33 (round(100/3))", proj.Progress)
	}
	if proj.Progress < 0 || proj.Progress > 100 {
		t.Errorf("progress %d out of [0,100]", proj.Progress)
	}
}

func TestProjectWithZeroPhasesKeepsProgress(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()

	projectID, err := st.Projects.Insert(ctx, &model.Project{Title: "empty", Progress: 40})
	if err != nil {
		t.Fatalf("insert project: %v", err)
	}
	phaseID, err := st.Phases.Insert(ctx, &model.Phase{ProjectID: projectID, Status: model.StatusTodo})
	if err != nil {
		t.Fatalf("insert phase: %v", err)
	}
	// Deleting the only phase leaves the project with zero phases; the
	// recomputation trigger must not touch progress.
	if err := st.Phases.Delete(ctx, phaseID); err != nil {
		t.Fatalf("delete phase: %v", err)
	}
	e.recomputeProjectProgress(ctx, projectID)

	proj, err := st.Projects.Get(ctx, projectID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if proj.Progress != 40 {
		t.Errorf("progress = %d, want unchanged 40", proj.Progress)
	}
}

func TestOverrideForcesAllTasks(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	_, _, deliverableID, taskIDs := seedHierarchy(t, st,
		model.StatusTodo, model.StatusInProgress, model.StatusDone)

	if err := e.SetDeliverableStatus(ctx, deliverableID, model.StatusDone); err != nil {
		t.Fatalf("SetDeliverableStatus: %v", err)
	}

	for _, id := range taskIDs {
		task, err := st.Tasks.Get(ctx, id)
		if err != nil {
			t.Fatalf("get task %d: %v", id, err)
		}
		if task.Status != model.StatusDone {
			t.Errorf("task %d status = %q, want done", id, task.Status)
		}
	}
	d, err := st.Deliverables.Get(ctx, deliverableID)
	if err != nil {
		t.Fatalf("get deliverable: %v", err)
	}
	if d.Status != model.StatusDone {
		t.Errorf("deliverable status = %q, want done", d.Status)
	}
}

func TestPhaseOverrideForcesDeliverablesAndTasks(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	projectID, phaseID, deliverableID, taskIDs := seedHierarchy(t, st,
		model.StatusTodo, model.StatusInProgress)

	if err := e.SetPhaseStatus(ctx, phaseID, model.StatusDone); err != nil {
		t.Fatalf("SetPhaseStatus: %v", err)
	}

	d, err := st.Deliverables.Get(ctx, deliverableID)
	if err != nil {
		t.Fatalf("get deliverable: %v", err)
	}
	if d.Status != model.StatusDone {
		t.Errorf("deliverable status = %q, want done", d.Status)
	}
	for _, id := range taskIDs {
		task, err := st.Tasks.Get(ctx, id)
		if err != nil {
			t.Fatalf("get task: %v", err)
		}
		if task.Status != model.StatusDone {
			t.Errorf("task %d status = %q, want done", id, task.Status)
		}
	}
	proj, err := st.Projects.Get(ctx, projectID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if proj.Progress != 100 {
		t.Errorf("progress = %d, want 100", proj.Progress)
	}
}

// Deliverable D1 has T1(done), T2(todo). Re-marking T1 done is a no-op;
// marking T2 done must cascade D1 -> P1 -> project progress 100.
func TestScenarioSingleChainToHundred(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	projectID, phaseID, deliverableID, taskIDs := seedHierarchy(t, st,
		model.StatusDone, model.StatusTodo)

	if err := e.SetTaskStatus(ctx, taskIDs[0], model.StatusDone); err != nil {
		t.Fatalf("SetTaskStatus T1: %v", err)
	}
	if err := e.SetTaskStatus(ctx, taskIDs[1], model.StatusDone); err != nil {
		t.Fatalf("SetTaskStatus T2: %v", err)
	}

	d, _ := st.Deliverables.Get(ctx, deliverableID)
	if d.Status != model.StatusDone {
		t.Errorf("D1 status = %q, want done", d.Status)
	}
	p, _ := st.Phases.Get(ctx, phaseID)
	if p.Status != model.StatusDone {
		t.Errorf("P1 status = %q, want done", p.Status)
	}
	proj, _ := st.Projects.Get(ctx, projectID)
	if proj.Progress != 100 {
		t.Errorf("progress = %d, want 100", proj.Progress)
	}
}

func TestDeliverableWithoutTasksKeepsStatus(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	_, phaseID, _, _ := seedHierarchy(t, st) // no tasks

	if err := e.SetDeliverableStatus(ctx, firstDeliverableID(t, st, phaseID), model.StatusInProgress); err != nil {
		t.Fatalf("SetDeliverableStatus: %v", err)
	}

	// Another cascade pass over the empty deliverable must not reset it.
	e.cascadeFromDeliverable(ctx, firstDeliverableID(t, st, phaseID))

	d, err := st.Deliverables.Get(ctx, firstDeliverableID(t, st, phaseID))
	if err != nil {
		t.Fatalf("get deliverable: %v", err)
	}
	if d.Status != model.StatusInProgress {
		t.Errorf("status = %q, want in-progress kept", d.Status)
	}
}

func TestCascadeStopsSilentlyAtMissingAncestor(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	_, phaseID, deliverableID, taskIDs := seedHierarchy(t, st, model.StatusTodo)

	// Simulate a concurrent deletion of both ancestors.
	if err := st.Deliverables.Delete(ctx, deliverableID); err != nil {
		t.Fatalf("delete deliverable: %v", err)
	}
	if err := st.Phases.Delete(ctx, phaseID); err != nil {
		t.Fatalf("delete phase: %v", err)
	}

	// The task mutation itself is complete; the orphaned cascade must not
	// surface an error.
	if err := e.SetTaskStatus(ctx, taskIDs[0], model.StatusDone); err != nil {
		t.Fatalf("SetTaskStatus over missing ancestors: %v", err)
	}

	task, err := st.Tasks.Get(ctx, taskIDs[0])
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != model.StatusDone {
		t.Errorf("task status = %q, want done", task.Status)
	}
}

func TestInvalidStatusRejectedBeforePersistence(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	_, _, _, taskIDs := seedHierarchy(t, st, model.StatusTodo)

	err := e.SetTaskStatus(ctx, taskIDs[0], model.Status("blocked"))
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}

	task, getErr := st.Tasks.Get(ctx, taskIDs[0])
	if getErr != nil {
		t.Fatalf("get task: %v", getErr)
	}
	if task.Status != model.StatusTodo {
		t.Errorf("task status = %q, must be untouched", task.Status)
	}
}

func TestSetTaskStatusNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t)
	err := e.SetTaskStatus(context.Background(), 9999, model.StatusDone)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeletePhaseCascadesDownAndRecomputesUp(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	projectID, phaseID, deliverableID, taskIDs := seedHierarchy(t, st, model.StatusTodo)

	// A second, already-done phase so progress is derivable afterwards.
	if _, err := st.Phases.Insert(ctx, &model.Phase{ProjectID: projectID, Status: model.StatusDone}); err != nil {
		t.Fatalf("insert phase: %v", err)
	}

	if err := e.DeletePhase(ctx, phaseID); err != nil {
		t.Fatalf("DeletePhase: %v", err)
	}

	if _, err := st.Deliverables.Get(ctx, deliverableID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deliverable should be gone, got %v", err)
	}
	if _, err := st.Tasks.Get(ctx, taskIDs[0]); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("task should be gone, got %v", err)
	}

	proj, err := st.Projects.Get(ctx, projectID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if proj.Progress != 100 {
		t.Errorf("progress = %d, want 100 (only remaining phase is done)", proj.Progress)
	}
}

func TestCreateTaskRejectsProjectMismatch(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	_, _, deliverableID, _ := seedHierarchy(t, st)

	otherProject, err := st.Projects.Insert(ctx, &model.Project{Title: "other"})
	if err != nil {
		t.Fatalf("insert project: %v", err)
	}

	_, err = e.CreateTask(ctx, &model.Task{
		ProjectID:     otherProject,
		DeliverableID: deliverableID,
		Text:          "stray",
	})
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestCreateTaskUnderPhaseInheritsProject(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	projectID, phaseID, _, _ := seedHierarchy(t, st)

	taskID, err := e.CreateTask(ctx, &model.Task{PhaseID: phaseID, Text: "phase-level"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	task, err := st.Tasks.Get(ctx, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.ProjectID != projectID {
		t.Errorf("task project = %d, want %d inherited from the phase", task.ProjectID, projectID)
	}
}

func TestCreateTaskUnderDoneDeliverableReopensIt(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()
	_, _, deliverableID, _ := seedHierarchy(t, st, model.StatusDone)

	if err := e.SetDeliverableStatus(ctx, deliverableID, model.StatusDone); err != nil {
		t.Fatalf("SetDeliverableStatus: %v", err)
	}
	if _, err := e.CreateTask(ctx, &model.Task{DeliverableID: deliverableID, Text: "extra"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	d, err := st.Deliverables.Get(ctx, deliverableID)
	if err != nil {
		t.Fatalf("get deliverable: %v", err)
	}
	if d.Status != model.StatusInProgress {
		t.Errorf("status = %q, want in-progress after a todo task joined a done deliverable", d.Status)
	}
}

func TestStatusChangeNotifiesAssignees(t *testing.T) {
	e, st, d := newTestEngine(t)
	ctx := context.Background()
	_, _, deliverableID, _ := seedHierarchy(t, st, model.StatusTodo)

	if err := e.SetDeliverableStatus(ctx, deliverableID, model.StatusDone); err != nil {
		t.Fatalf("SetDeliverableStatus: %v", err)
	}

	found := false
	for _, ev := range d.events {
		if ev.EventType == notify.EventDeliverableStatusChanged && ev.UserID == 7 {
			found = true
			if ev.ProjectID == nil {
				t.Error("event should carry the project id")
			}
		}
	}
	if !found {
		t.Error("expected a deliverable.status.changed event for assignee 7")
	}
}
