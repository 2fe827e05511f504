package engine

import (
	"math"

	"projecttracker/internal/model"
)

// deriveDeliverableStatus rolls sibling task statuses up into the
// deliverable: all done wins, all todo wins, any other mixture is
// in-progress. Callers must not invoke this with an empty task list (a
// deliverable without tasks keeps whatever status it has).
func deriveDeliverableStatus(tasks []model.Task) model.Status {
	done, todo := 0, 0
	for _, t := range tasks {
		switch t.Status {
		case model.StatusDone:
			done++
		case model.StatusTodo:
			todo++
		}
	}
	switch {
	case done == len(tasks):
		return model.StatusDone
	case todo == len(tasks):
		return model.StatusTodo
	default:
		return model.StatusInProgress
	}
}

// derivePhaseStatus rolls deliverable statuses up into the phase. Same
// three-way rule as deliverables, with the done+todo mixture spelled out:
// a phase whose deliverables are only done and todo (nothing in progress)
// reports in-progress, not todo.
// TODO: product to confirm the done+todo case; an inline note in the
// legacy system claimed the opposite outcome. Keep in-progress until they
// rule.
func derivePhaseStatus(deliverables []model.Deliverable) model.Status {
	done, todo, inProgress := 0, 0, 0
	for _, d := range deliverables {
		switch d.Status {
		case model.StatusDone:
			done++
		case model.StatusTodo:
			todo++
		case model.StatusInProgress:
			inProgress++
		}
	}
	switch {
	case done == len(deliverables):
		return model.StatusDone
	case todo == len(deliverables):
		return model.StatusTodo
	case inProgress == 0 && done > 0 && todo > 0:
		return model.StatusInProgress
	default:
		return model.StatusInProgress
	}
}

// deriveProjectProgress is the percentage of phases with status done,
// rounded to the nearest integer. Callers skip it for zero phases.
func deriveProjectProgress(phases []model.Phase) int {
	done := 0
	for _, p := range phases {
		if p.Status == model.StatusDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(phases)) * 100))
}
