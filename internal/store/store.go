// Package store defines the entity store contract the consistency engine
// runs against. The engine never holds object graphs; every cascade step
// re-reads current children through these interfaces.
package store

import (
	"context"

	"projecttracker/internal/model"
)

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) (int, error)
	Get(ctx context.Context, id int) (*model.Project, error)
	Save(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id int) error
}

type PhaseStore interface {
	Insert(ctx context.Context, p *model.Phase) (int, error)
	Get(ctx context.Context, id int) (*model.Phase, error)
	Save(ctx context.Context, p *model.Phase) error
	Delete(ctx context.Context, id int) error
	FindByProject(ctx context.Context, projectID int) ([]model.Phase, error)
}

type DeliverableStore interface {
	Insert(ctx context.Context, d *model.Deliverable) (int, error)
	Get(ctx context.Context, id int) (*model.Deliverable, error)
	Save(ctx context.Context, d *model.Deliverable) error
	Delete(ctx context.Context, id int) error
	FindByPhase(ctx context.Context, phaseID int) ([]model.Deliverable, error)
}

type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) (int, error)
	Get(ctx context.Context, id int) (*model.Task, error)
	Save(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id int) error
	FindByDeliverable(ctx context.Context, deliverableID int) ([]model.Task, error)
}

type GrantStore interface {
	// Get returns apperr.ErrNotFound when no grant exists for the pair;
	// callers treat that as an empty capability set.
	Get(ctx context.Context, projectID, userID int) (*model.PermissionGrant, error)
	// Put replaces the whole capability set for the pair.
	Put(ctx context.Context, g *model.PermissionGrant) error
}

// Store bundles the per-entity stores, one repository per table.
type Store struct {
	Projects     ProjectStore
	Phases       PhaseStore
	Deliverables DeliverableStore
	Tasks        TaskStore
	Grants       GrantStore
}
