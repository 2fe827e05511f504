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

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.String("title", p.Title),
		zap.Int("project_manager_id", p.ProjectManagerID),
	)
	query := `
        INSERT INTO projects (title, progress, project_manager_id, member_ids)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.Title,
		p.Progress,
		p.ProjectManagerID,
		p.MemberIDs,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert project",
			zap.Error(err),
			zap.String("title", p.Title),
		)
		return 0, err
	}
	p.ID = id
	r.logger.Info("Project inserted successfully", zap.Int("project_id", id))
	return id, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, title, progress, project_manager_id, member_ids, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Progress,
		&p.ProjectManagerID,
		&p.MemberIDs,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("project", id)
	}
	if err != nil {
		r.logger.Error("Failed to get project",
			zap.Error(err),
			zap.Int("project_id", id),
		)
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Save(ctx context.Context, p *model.Project) error {
	query := `
        UPDATE projects
        SET title = $2, progress = $3, project_manager_id = $4, member_ids = $5, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Progress,
		p.ProjectManagerID,
		p.MemberIDs,
	)
	if err != nil {
		r.logger.Error("Failed to save project",
			zap.Error(err),
			zap.Int("project_id", p.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("project", p.ID)
	}
	r.logger.Debug("Project saved",
		zap.Int("project_id", p.ID),
		zap.Int("progress", p.Progress),
	)
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project",
			zap.Error(err),
			zap.Int("project_id", id),
		)
		return err
	}
	r.logger.Info("Project deleted", zap.Int("project_id", id))
	return nil
}
