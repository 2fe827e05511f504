package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
	"projecttracker/internal/notify"
	"projecttracker/pkg/metrics"
)

// Creation validates the ownership invariants before any write: a task's
// deliverable and phase must belong to the task's project, a deliverable's
// phase must belong to the deliverable's project. Deletion cascades
// downward through owned children and then recomputes ancestors upward.

func (e *Engine) CreateProject(ctx context.Context, project *model.Project) (int, error) {
	project.Progress = 0
	return e.store.Projects.Insert(ctx, project)
}

func (e *Engine) CreatePhase(ctx context.Context, phase *model.Phase) (int, error) {
	if phase.Status == "" {
		phase.Status = model.StatusTodo
	}
	if !phase.Status.Valid() {
		return 0, apperr.InvalidState("unrecognized status %q", phase.Status)
	}
	if _, err := e.store.Projects.Get(ctx, phase.ProjectID); err != nil {
		return 0, err
	}
	return e.store.Phases.Insert(ctx, phase)
}

func (e *Engine) CreateDeliverable(ctx context.Context, deliverable *model.Deliverable) (int, error) {
	if deliverable.Status == "" {
		deliverable.Status = model.StatusTodo
	}
	if !deliverable.Status.Valid() {
		return 0, apperr.InvalidState("unrecognized status %q", deliverable.Status)
	}

	phase, err := e.store.Phases.Get(ctx, deliverable.PhaseID)
	if err != nil {
		return 0, err
	}
	if deliverable.ProjectID == 0 {
		deliverable.ProjectID = phase.ProjectID
	}
	if deliverable.ProjectID != phase.ProjectID {
		return 0, apperr.InvalidState("deliverable project %d does not match phase project %d",
			deliverable.ProjectID, phase.ProjectID)
	}

	id, err := e.store.Deliverables.Insert(ctx, deliverable)
	if err != nil {
		return 0, err
	}
	e.cascadeFromPhase(ctx, deliverable.PhaseID)
	return id, nil
}

func (e *Engine) CreateTask(ctx context.Context, task *model.Task) (int, error) {
	if task.Status == "" {
		task.Status = model.StatusTodo
	}
	if !task.Status.Valid() {
		return 0, apperr.InvalidState("unrecognized status %q", task.Status)
	}

	if task.DeliverableID != 0 {
		deliverable, err := e.store.Deliverables.Get(ctx, task.DeliverableID)
		if err != nil {
			return 0, err
		}
		if task.ProjectID == 0 {
			task.ProjectID = deliverable.ProjectID
		}
		if task.ProjectID != deliverable.ProjectID {
			return 0, apperr.InvalidState("task project %d does not match deliverable project %d",
				task.ProjectID, deliverable.ProjectID)
		}
	}
	if task.PhaseID != 0 {
		phase, err := e.store.Phases.Get(ctx, task.PhaseID)
		if err != nil {
			return 0, err
		}
		if task.ProjectID == 0 {
			task.ProjectID = phase.ProjectID
		}
		if task.ProjectID != phase.ProjectID {
			return 0, apperr.InvalidState("task project %d does not match phase project %d",
				task.ProjectID, phase.ProjectID)
		}
	}

	id, err := e.store.Tasks.Insert(ctx, task)
	if err != nil {
		return 0, err
	}

	e.notifier.Notify(ctx, notify.EventTaskCreated, task.ProjectID,
		fmt.Sprintf("task %d created", id), task.AssigneeID)

	// A new todo task can flip a done deliverable back to in-progress.
	if task.DeliverableID != 0 {
		e.cascadeFromDeliverable(ctx, task.DeliverableID)
	}
	return id, nil
}

func (e *Engine) DeleteTask(ctx context.Context, taskID int) error {
	start := time.Now()
	defer func() { metrics.ObserveCascade("task", time.Since(start)) }()

	task, err := e.store.Tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if err := e.store.Tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	e.logger.Info("Task deleted", zap.Int("task_id", taskID))
	e.notifier.Notify(ctx, notify.EventTaskDeleted, task.ProjectID,
		fmt.Sprintf("task %d deleted", taskID), task.AssigneeID)

	if task.DeliverableID != 0 {
		e.cascadeFromDeliverable(ctx, task.DeliverableID)
	}
	return nil
}

func (e *Engine) DeleteDeliverable(ctx context.Context, deliverableID int) error {
	start := time.Now()
	defer func() { metrics.ObserveCascade("deliverable", time.Since(start)) }()

	deliverable, err := e.store.Deliverables.Get(ctx, deliverableID)
	if err != nil {
		return err
	}

	tasks, err := e.store.Tasks.FindByDeliverable(ctx, deliverableID)
	if err != nil {
		return fmt.Errorf("failed to load owned tasks: %w", err)
	}
	for _, t := range tasks {
		if err := e.store.Tasks.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("failed to delete owned task %d: %w", t.ID, err)
		}
	}
	if err := e.store.Deliverables.Delete(ctx, deliverableID); err != nil {
		return err
	}

	e.logger.Info("Deliverable deleted",
		zap.Int("deliverable_id", deliverableID),
		zap.Int("owned_tasks", len(tasks)),
	)
	e.notifier.Notify(ctx, notify.EventDeliverableDeleted, deliverable.ProjectID,
		fmt.Sprintf("deliverable %d deleted", deliverableID),
		deliverable.AssigneeIDs...)

	e.cascadeFromPhase(ctx, deliverable.PhaseID)
	return nil
}

func (e *Engine) DeletePhase(ctx context.Context, phaseID int) error {
	start := time.Now()
	defer func() { metrics.ObserveCascade("phase", time.Since(start)) }()

	phase, err := e.store.Phases.Get(ctx, phaseID)
	if err != nil {
		return err
	}

	deliverables, err := e.store.Deliverables.FindByPhase(ctx, phaseID)
	if err != nil {
		return fmt.Errorf("failed to load owned deliverables: %w", err)
	}
	for _, d := range deliverables {
		tasks, err := e.store.Tasks.FindByDeliverable(ctx, d.ID)
		if err != nil {
			return fmt.Errorf("failed to load owned tasks: %w", err)
		}
		for _, t := range tasks {
			if err := e.store.Tasks.Delete(ctx, t.ID); err != nil {
				return fmt.Errorf("failed to delete owned task %d: %w", t.ID, err)
			}
		}
		if err := e.store.Deliverables.Delete(ctx, d.ID); err != nil {
			return fmt.Errorf("failed to delete owned deliverable %d: %w", d.ID, err)
		}
	}
	if err := e.store.Phases.Delete(ctx, phaseID); err != nil {
		return err
	}

	e.logger.Info("Phase deleted",
		zap.Int("phase_id", phaseID),
		zap.Int("owned_deliverables", len(deliverables)),
	)
	if project, err := e.store.Projects.Get(ctx, phase.ProjectID); err == nil {
		e.notifier.Notify(ctx, notify.EventPhaseDeleted, phase.ProjectID,
			fmt.Sprintf("phase %d deleted", phaseID), project.ProjectManagerID)
	}

	e.recomputeProjectProgress(ctx, phase.ProjectID)
	return nil
}
