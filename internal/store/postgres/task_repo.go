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

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) (int, error) {
	r.logger.Debug("Inserting task",
		zap.Int("project_id", t.ProjectID),
		zap.Int("deliverable_id", t.DeliverableID),
		zap.String("text", t.Text),
		zap.String("status", string(t.Status)),
	)
	query := `
        INSERT INTO tasks (project_id, phase_id, deliverable_id, text, priority, due_date, status, assignee_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		t.ProjectID,
		t.PhaseID,
		t.DeliverableID,
		t.Text,
		t.Priority,
		t.DueDate,
		t.Status,
		t.AssigneeID,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("project_id", t.ProjectID),
		)
		return 0, err
	}
	t.ID = id
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", id),
		zap.Int("project_id", t.ProjectID),
	)
	return id, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT id, project_id, phase_id, deliverable_id, text, priority, due_date, status, assignee_id, created_at, updated_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.PhaseID,
		&t.DeliverableID,
		&t.Text,
		&t.Priority,
		&t.DueDate,
		&t.Status,
		&t.AssigneeID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("task", id)
	}
	if err != nil {
		r.logger.Error("Failed to get task",
			zap.Error(err),
			zap.Int("task_id", id),
		)
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Save(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET text = $2, priority = $3, due_date = $4, status = $5, assignee_id = $6, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		t.ID,
		t.Text,
		t.Priority,
		t.DueDate,
		t.Status,
		t.AssigneeID,
	)
	if err != nil {
		r.logger.Error("Failed to save task",
			zap.Error(err),
			zap.Int("task_id", t.ID),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("task", t.ID)
	}
	r.logger.Debug("Task saved",
		zap.Int("task_id", t.ID),
		zap.String("status", string(t.Status)),
	)
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.Int("task_id", id),
		)
		return err
	}
	r.logger.Info("Task deleted", zap.Int("task_id", id))
	return nil
}

func (r *TaskRepository) FindByDeliverable(ctx context.Context, deliverableID int) ([]model.Task, error) {
	query := `
        SELECT id, project_id, phase_id, deliverable_id, text, priority, due_date, status, assignee_id, created_at, updated_at
        FROM tasks
        WHERE deliverable_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, deliverableID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("deliverable_id", deliverableID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.PhaseID,
			&t.DeliverableID,
			&t.Text,
			&t.Priority,
			&t.DueDate,
			&t.Status,
			&t.AssigneeID,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan task row",
				zap.Error(err),
				zap.Int("deliverable_id", deliverableID),
			)
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
