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

type DeliverableRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDeliverableRepository(db *pgxpool.Pool, logger *zap.Logger) *DeliverableRepository {
	return &DeliverableRepository{db: db, logger: logger}
}

func (r *DeliverableRepository) Insert(ctx context.Context, d *model.Deliverable) (int, error) {
	r.logger.Debug("Inserting deliverable",
		zap.Int("project_id", d.ProjectID),
		zap.Int("phase_id", d.PhaseID),
		zap.String("title", d.Title),
	)
	query := `
        INSERT INTO deliverables (project_id, phase_id, title, priority, priority_number, due_date, status, assignee_ids)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		d.ProjectID,
		d.PhaseID,
		d.Title,
		d.Priority,
		d.PriorityNumber,
		d.DueDate,
		d.Status,
		d.AssigneeIDs,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert deliverable",
			zap.Error(err),
			zap.Int("phase_id", d.PhaseID),
		)
		return 0, err
	}
	d.ID = id
	r.logger.Info("Deliverable inserted successfully",
		zap.Int("deliverable_id", id),
		zap.Int("phase_id", d.PhaseID),
	)
	return id, nil
}

func (r *DeliverableRepository) Get(ctx context.Context, id int) (*model.Deliverable, error) {
	query := `
        SELECT id, project_id, phase_id, title, priority, priority_number, due_date, status, assignee_ids, created_at, updated_at
        FROM deliverables
        WHERE id = $1
    `
	var d model.Deliverable
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.ProjectID,
		&d.PhaseID,
		&d.Title,
		&d.Priority,
		&d.PriorityNumber,
		&d.DueDate,
		&d.Status,
		&d.AssigneeIDs,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("deliverable", id)
	}
	if err != nil {
		r.logger.Error("Failed to get deliverable",
			zap.Error(err),
			zap.Int("deliverable_id", id),
		)
		return nil, err
	}
	return &d, nil
}

func (r *DeliverableRepository) Save(ctx context.Context, d *model.Deliverable) error {
	query := `
        UPDATE deliverables
        SET title = $2, priority = $3, priority_number = $4, due_date = $5, status = $6, assignee_ids = $7, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		d.ID,
		d.Title,
		d.Priority,
		d.PriorityNumber,
		d.DueDate,
		d.Status,
		d.AssigneeIDs,
	)
	if err != nil {
		r.logger.Error("Failed to save deliverable",
			zap.Error(err),
			zap.Int("deliverable_id", d.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("deliverable", d.ID)
	}
	r.logger.Debug("Deliverable saved",
		zap.Int("deliverable_id", d.ID),
		zap.String("status", string(d.Status)),
	)
	return nil
}

func (r *DeliverableRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM deliverables WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete deliverable",
			zap.Error(err),
			zap.Int("deliverable_id", id),
		)
		return err
	}
	r.logger.Info("Deliverable deleted", zap.Int("deliverable_id", id))
	return nil
}

func (r *DeliverableRepository) FindByPhase(ctx context.Context, phaseID int) ([]model.Deliverable, error) {
	query := `
        SELECT id, project_id, phase_id, title, priority, priority_number, due_date, status, assignee_ids, created_at, updated_at
        FROM deliverables
        WHERE phase_id = $1
        ORDER BY priority_number, id
    `
	rows, err := r.db.Query(ctx, query, phaseID)
	if err != nil {
		r.logger.Error("Failed to query deliverables",
			zap.Error(err),
			zap.Int("phase_id", phaseID),
		)
		return nil, err
	}
	defer rows.Close()

	deliverables := []model.Deliverable{}
	for rows.Next() {
		var d model.Deliverable
		if err := rows.Scan(
			&d.ID,
			&d.ProjectID,
			&d.PhaseID,
			&d.Title,
			&d.Priority,
			&d.PriorityNumber,
			&d.DueDate,
			&d.Status,
			&d.AssigneeIDs,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan deliverable row",
				zap.Error(err),
				zap.Int("phase_id", phaseID),
			)
			return nil, err
		}
		deliverables = append(deliverables, d)
	}
	return deliverables, rows.Err()
}
