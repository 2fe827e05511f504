package engine

import (
	"context"

	"go.uber.org/zap"

	"projecttracker/internal/notify"
	"projecttracker/pkg/metrics"
)

// Cascade steps. Each step re-reads current children from the store and
// derives the parent summary from scratch; nothing is carried over from
// the triggering mutation. An ancestor that has disappeared (deleted by a
// concurrent request) stops the climb silently; the triggering mutation
// is already complete and must not fail retroactively. Store errors
// mid-climb are handled the same way: log, stop, and let the next
// triggering mutation converge the summaries.

func (e *Engine) cascadeFromDeliverable(ctx context.Context, deliverableID int) {
	deliverable, err := e.store.Deliverables.Get(ctx, deliverableID)
	if err != nil {
		e.logger.Debug("Cascade stopped: deliverable gone",
			zap.Int("deliverable_id", deliverableID),
			zap.Error(err),
		)
		return
	}

	tasks, err := e.store.Tasks.FindByDeliverable(ctx, deliverableID)
	if err != nil {
		e.logger.Error("Cascade stopped: failed to read tasks",
			zap.Int("deliverable_id", deliverableID),
			zap.Error(err),
		)
		return
	}

	// A deliverable without tasks keeps its status (it may have been set
	// authoritatively); the climb continues regardless.
	if len(tasks) > 0 {
		metrics.IncrementRecompute("deliverable")
		derived := deriveDeliverableStatus(tasks)
		if derived != deliverable.Status {
			previous := deliverable.Status
			deliverable.Status = derived
			if err := e.store.Deliverables.Save(ctx, deliverable); err != nil {
				e.logger.Error("Cascade stopped: failed to save deliverable",
					zap.Int("deliverable_id", deliverableID),
					zap.Error(err),
				)
				return
			}
			e.logger.Info("Deliverable status derived",
				zap.Int("deliverable_id", deliverable.ID),
				zap.String("from", string(previous)),
				zap.String("to", string(derived)),
			)
			e.notifier.Notify(ctx, notify.EventDeliverableStatusChanged, deliverable.ProjectID,
				"deliverable status recomputed to "+string(derived),
				deliverable.AssigneeIDs...)
		}
	}

	e.cascadeFromPhase(ctx, deliverable.PhaseID)
}

func (e *Engine) cascadeFromPhase(ctx context.Context, phaseID int) {
	phase, err := e.store.Phases.Get(ctx, phaseID)
	if err != nil {
		e.logger.Debug("Cascade stopped: phase gone",
			zap.Int("phase_id", phaseID),
			zap.Error(err),
		)
		return
	}

	deliverables, err := e.store.Deliverables.FindByPhase(ctx, phaseID)
	if err != nil {
		e.logger.Error("Cascade stopped: failed to read deliverables",
			zap.Int("phase_id", phaseID),
			zap.Error(err),
		)
		return
	}

	if len(deliverables) > 0 {
		metrics.IncrementRecompute("phase")
		derived := derivePhaseStatus(deliverables)
		if derived != phase.Status {
			previous := phase.Status
			phase.Status = derived
			if err := e.store.Phases.Save(ctx, phase); err != nil {
				e.logger.Error("Cascade stopped: failed to save phase",
					zap.Int("phase_id", phaseID),
					zap.Error(err),
				)
				return
			}
			e.logger.Info("Phase status derived",
				zap.Int("phase_id", phase.ID),
				zap.String("from", string(previous)),
				zap.String("to", string(derived)),
			)
		}
	}

	e.recomputeProjectProgress(ctx, phase.ProjectID)
}

func (e *Engine) recomputeProjectProgress(ctx context.Context, projectID int) {
	project, err := e.store.Projects.Get(ctx, projectID)
	if err != nil {
		e.logger.Debug("Cascade stopped: project gone",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return
	}

	phases, err := e.store.Phases.FindByProject(ctx, projectID)
	if err != nil {
		e.logger.Error("Cascade stopped: failed to read phases",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return
	}

	// Zero phases: progress stays whatever it was. No division, no reset.
	if len(phases) == 0 {
		return
	}

	metrics.IncrementRecompute("project")
	progress := deriveProjectProgress(phases)
	if progress == project.Progress {
		return
	}

	previous := project.Progress
	project.Progress = progress
	if err := e.store.Projects.Save(ctx, project); err != nil {
		e.logger.Error("Failed to save project progress",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return
	}
	e.logger.Info("Project progress derived",
		zap.Int("project_id", project.ID),
		zap.Int("from", previous),
		zap.Int("to", progress),
	)
}
