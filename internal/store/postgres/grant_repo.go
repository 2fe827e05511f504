package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
)

type GrantRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewGrantRepository(db *pgxpool.Pool, logger *zap.Logger) *GrantRepository {
	return &GrantRepository{db: db, logger: logger}
}

func (r *GrantRepository) Get(ctx context.Context, projectID, userID int) (*model.PermissionGrant, error) {
	query := `
        SELECT project_id, user_id, capabilities
        FROM permission_grants
        WHERE project_id = $1 AND user_id = $2
    `
	var g model.PermissionGrant
	err := r.db.QueryRow(ctx, query, projectID, userID).Scan(
		&g.ProjectID,
		&g.UserID,
		&g.Capabilities,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("grant", userID)
	}
	if err != nil {
		r.logger.Error("Failed to get permission grant",
			zap.Error(err),
			zap.Int("project_id", projectID),
			zap.Int("user_id", userID),
		)
		return nil, err
	}
	return &g, nil
}

// Put replaces the whole capability set for the (project, user) pair.
func (r *GrantRepository) Put(ctx context.Context, g *model.PermissionGrant) error {
	query := `
        INSERT INTO permission_grants (project_id, user_id, capabilities)
        VALUES ($1, $2, $3)
        ON CONFLICT (project_id, user_id)
        DO UPDATE SET capabilities = EXCLUDED.capabilities, updated_at = NOW()
    `
	_, err := r.db.Exec(ctx, query, g.ProjectID, g.UserID, g.Capabilities)
	if err != nil {
		r.logger.Error("Failed to put permission grant",
			zap.Error(err),
			zap.Int("project_id", g.ProjectID),
			zap.Int("user_id", g.UserID),
		)
		return err
	}
	r.logger.Info("Permission grant replaced",
		zap.Int("project_id", g.ProjectID),
		zap.Int("user_id", g.UserID),
		zap.Strings("capabilities", g.Capabilities),
	)
	return nil
}
