package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/access"
	"projecttracker/internal/engine"
	"projecttracker/internal/grants"
	"projecttracker/internal/model"
	"projecttracker/internal/store"
	"projecttracker/pkg/metrics"
)

type TaskHandler struct {
	engine *engine.Engine
	store  store.Store
	grants *grants.Service
	logger *zap.Logger
}

func NewTaskHandler(e *engine.Engine, st store.Store, g *grants.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{engine: e, store: st, grants: g, logger: logger}
}

// SetStatus handles PUT /task/:id/status, the bottom-up derivation path.
func (h *TaskHandler) SetStatus(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}
	status, ok := statusBody(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	task, err := h.store.Tasks.Get(ctx, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	project, err := h.store.Projects.Get(ctx, task.ProjectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	grant, err := h.grants.Get(ctx, project.ID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// A drag between columns is a status change; the task's own assignee
	// may do it without any capability grant.
	if !access.CanReorderTask(role, userID, project, grant, task) {
		metrics.IncrementPermissionDenied("edit_task")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to move this task"})
		return
	}

	if err := h.engine.SetTaskStatus(ctx, taskID, status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createTaskRequest struct {
	ProjectID     int    `json:"project_id" binding:"required"`
	PhaseID       int    `json:"phase_id"`
	DeliverableID int    `json:"deliverable_id"`
	Text          string `json:"text" binding:"required"`
	Priority      string `json:"priority"`
	DueDate       string `json:"due_date"`
	Status        string `json:"status"`
	AssigneeID    int    `json:"assignee_id"`
}

// Create handles POST /task.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	project, err := h.store.Projects.Get(ctx, req.ProjectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	grant, err := h.grants.Get(ctx, project.ID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !access.CanEditTask(role, userID, project, grant) {
		metrics.IncrementPermissionDenied("create_task")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to create tasks"})
		return
	}

	task := &model.Task{
		ProjectID:     req.ProjectID,
		PhaseID:       req.PhaseID,
		DeliverableID: req.DeliverableID,
		Text:          req.Text,
		Priority:      model.Priority(req.Priority),
		Status:        model.Status(req.Status),
		AssigneeID:    req.AssigneeID,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be RFC 3339"})
			return
		}
		task.DueDate = due
	}

	id, err := h.engine.CreateTask(ctx, task)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Delete handles DELETE /task/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	task, err := h.store.Tasks.Get(ctx, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	project, err := h.store.Projects.Get(ctx, task.ProjectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	grant, err := h.grants.Get(ctx, project.ID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !access.CanDeleteTask(role, userID, project, grant) {
		metrics.IncrementPermissionDenied("delete_task")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete tasks"})
		return
	}

	if err := h.engine.DeleteTask(ctx, taskID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
