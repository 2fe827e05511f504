// Package engine keeps the Project → Phase → Deliverable → Task hierarchy
// consistent. Summary fields (status, progress) are recomputed from the
// currently persisted children on every pass, never from deltas, so any
// cascade can be re-run or raced and the hierarchy still converges. No
// locks are taken across the cascade.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
	"projecttracker/internal/notify"
	"projecttracker/internal/store"
	"projecttracker/pkg/metrics"
)

type Engine struct {
	store    store.Store
	notifier *notify.Notifier
	logger   *zap.Logger
}

func New(s store.Store, notifier *notify.Notifier, logger *zap.Logger) *Engine {
	return &Engine{store: s, notifier: notifier, logger: logger}
}

// SetTaskStatus persists the task's new status and re-derives every
// ancestor summary from current children (deliverable status, phase
// status, project progress).
func (e *Engine) SetTaskStatus(ctx context.Context, taskID int, status model.Status) error {
	if !status.Valid() {
		return apperr.InvalidState("unrecognized status %q", status)
	}

	start := time.Now()
	defer func() { metrics.ObserveCascade("task", time.Since(start)) }()

	task, err := e.store.Tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}

	previous := task.Status
	task.Status = status
	if err := e.store.Tasks.Save(ctx, task); err != nil {
		return fmt.Errorf("failed to persist task status: %w", err)
	}

	e.logger.Info("Task status set",
		zap.Int("task_id", task.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)

	if previous != status {
		e.notifier.Notify(ctx, notify.EventTaskStatusChanged, task.ProjectID,
			fmt.Sprintf("task %d moved to %s", task.ID, status), task.AssigneeID)
	}

	// Phases derive from deliverables only; a task outside any
	// deliverable changes no ancestor.
	if task.DeliverableID != 0 {
		e.cascadeFromDeliverable(ctx, task.DeliverableID)
	}
	return nil
}

// SetDeliverableStatus is the top-down override: the status is written
// directly to the deliverable, every owned task is forced to the same
// value, and the cascade continues upward as usual.
func (e *Engine) SetDeliverableStatus(ctx context.Context, deliverableID int, status model.Status) error {
	if !status.Valid() {
		return apperr.InvalidState("unrecognized status %q", status)
	}

	start := time.Now()
	defer func() { metrics.ObserveCascade("deliverable", time.Since(start)) }()

	deliverable, err := e.store.Deliverables.Get(ctx, deliverableID)
	if err != nil {
		return err
	}

	previous := deliverable.Status
	deliverable.Status = status
	if err := e.store.Deliverables.Save(ctx, deliverable); err != nil {
		return fmt.Errorf("failed to persist deliverable status: %w", err)
	}

	if err := e.forceTasksTo(ctx, deliverableID, status); err != nil {
		return err
	}

	e.logger.Info("Deliverable status overridden",
		zap.Int("deliverable_id", deliverable.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)

	if previous != status {
		e.notifier.Notify(ctx, notify.EventDeliverableStatusChanged, deliverable.ProjectID,
			fmt.Sprintf("deliverable %d moved to %s", deliverable.ID, status),
			deliverable.AssigneeIDs...)
	}

	e.cascadeFromPhase(ctx, deliverable.PhaseID)
	return nil
}

// SetPhaseStatus is the same override shape one level up: the phase takes
// the status directly and every owned deliverable (and its tasks) is
// forced to match.
func (e *Engine) SetPhaseStatus(ctx context.Context, phaseID int, status model.Status) error {
	if !status.Valid() {
		return apperr.InvalidState("unrecognized status %q", status)
	}

	start := time.Now()
	defer func() { metrics.ObserveCascade("phase", time.Since(start)) }()

	phase, err := e.store.Phases.Get(ctx, phaseID)
	if err != nil {
		return err
	}

	previous := phase.Status
	phase.Status = status
	if err := e.store.Phases.Save(ctx, phase); err != nil {
		return fmt.Errorf("failed to persist phase status: %w", err)
	}

	deliverables, err := e.store.Deliverables.FindByPhase(ctx, phaseID)
	if err != nil {
		return fmt.Errorf("failed to load deliverables for override: %w", err)
	}
	for i := range deliverables {
		deliverables[i].Status = status
		if err := e.store.Deliverables.Save(ctx, &deliverables[i]); err != nil {
			return fmt.Errorf("failed to force deliverable %d: %w", deliverables[i].ID, err)
		}
		if err := e.forceTasksTo(ctx, deliverables[i].ID, status); err != nil {
			return err
		}
	}

	e.logger.Info("Phase status overridden",
		zap.Int("phase_id", phase.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)

	if previous != status {
		if project, err := e.store.Projects.Get(ctx, phase.ProjectID); err == nil {
			e.notifier.Notify(ctx, notify.EventPhaseStatusChanged, phase.ProjectID,
				fmt.Sprintf("phase %d moved to %s", phase.ID, status),
				project.ProjectManagerID)
		}
	}

	e.recomputeProjectProgress(ctx, phase.ProjectID)
	return nil
}

// forceTasksTo overwrites every task under a deliverable with the
// override status, whatever their individual statuses were.
func (e *Engine) forceTasksTo(ctx context.Context, deliverableID int, status model.Status) error {
	tasks, err := e.store.Tasks.FindByDeliverable(ctx, deliverableID)
	if err != nil {
		return fmt.Errorf("failed to load tasks for override: %w", err)
	}
	for i := range tasks {
		if tasks[i].Status == status {
			continue
		}
		tasks[i].Status = status
		if err := e.store.Tasks.Save(ctx, &tasks[i]); err != nil {
			return fmt.Errorf("failed to force task %d: %w", tasks[i].ID, err)
		}
	}
	return nil
}
