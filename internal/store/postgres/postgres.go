// Package postgres implements the entity store on pgx connection pools.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"projecttracker/internal/store"
)

// New wires one repository per table onto the shared pool.
func New(pool *pgxpool.Pool, logger *zap.Logger) store.Store {
	return store.Store{
		Projects:     &ProjectRepository{db: pool, logger: logger},
		Phases:       &PhaseRepository{db: pool, logger: logger},
		Deliverables: &DeliverableRepository{db: pool, logger: logger},
		Tasks:        &TaskRepository{db: pool, logger: logger},
		Grants:       &GrantRepository{db: pool, logger: logger},
	}
}
