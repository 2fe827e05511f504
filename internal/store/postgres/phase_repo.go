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

type PhaseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPhaseRepository(db *pgxpool.Pool, logger *zap.Logger) *PhaseRepository {
	return &PhaseRepository{db: db, logger: logger}
}

func (r *PhaseRepository) Insert(ctx context.Context, p *model.Phase) (int, error) {
	r.logger.Debug("Inserting phase",
		zap.Int("project_id", p.ProjectID),
		zap.String("title", p.Title),
	)
	query := `
        INSERT INTO phases (project_id, title, start_date, end_date, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.ProjectID,
		p.Title,
		p.StartDate,
		p.EndDate,
		p.Status,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert phase",
			zap.Error(err),
			zap.Int("project_id", p.ProjectID),
		)
		return 0, err
	}
	p.ID = id
	r.logger.Info("Phase inserted successfully",
		zap.Int("phase_id", id),
		zap.Int("project_id", p.ProjectID),
	)
	return id, nil
}

func (r *PhaseRepository) Get(ctx context.Context, id int) (*model.Phase, error) {
	query := `
        SELECT id, project_id, title, start_date, end_date, status, created_at, updated_at
        FROM phases
        WHERE id = $1
    `
	var p model.Phase
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.ProjectID,
		&p.Title,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("phase", id)
	}
	if err != nil {
		r.logger.Error("Failed to get phase",
			zap.Error(err),
			zap.Int("phase_id", id),
		)
		return nil, err
	}
	return &p, nil
}

func (r *PhaseRepository) Save(ctx context.Context, p *model.Phase) error {
	query := `
        UPDATE phases
        SET title = $2, start_date = $3, end_date = $4, status = $5, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.Title,
		p.StartDate,
		p.EndDate,
		p.Status,
	)
	if err != nil {
		r.logger.Error("Failed to save phase",
			zap.Error(err),
			zap.Int("phase_id", p.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("phase", p.ID)
	}
	r.logger.Debug("Phase saved",
		zap.Int("phase_id", p.ID),
		zap.String("status", string(p.Status)),
	)
	return nil
}

func (r *PhaseRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM phases WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete phase",
			zap.Error(err),
			zap.Int("phase_id", id),
		)
		return err
	}
	r.logger.Info("Phase deleted", zap.Int("phase_id", id))
	return nil
}

func (r *PhaseRepository) FindByProject(ctx context.Context, projectID int) ([]model.Phase, error) {
	query := `
        SELECT id, project_id, title, start_date, end_date, status, created_at, updated_at
        FROM phases
        WHERE project_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query phases",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	phases := []model.Phase{}
	for rows.Next() {
		var p model.Phase
		if err := rows.Scan(
			&p.ID,
			&p.ProjectID,
			&p.Title,
			&p.StartDate,
			&p.EndDate,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan phase row",
				zap.Error(err),
				zap.Int("project_id", projectID),
			)
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}
