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

type DeliverableHandler struct {
	engine *engine.Engine
	store  store.Store
	grants *grants.Service
	logger *zap.Logger
}

func NewDeliverableHandler(e *engine.Engine, st store.Store, g *grants.Service, logger *zap.Logger) *DeliverableHandler {
	return &DeliverableHandler{engine: e, store: st, grants: g, logger: logger}
}

// SetStatus handles PUT /deliverable/:id/status, the top-down override:
// the deliverable takes the status and every owned task is forced along.
func (h *DeliverableHandler) SetStatus(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	deliverableID, ok := pathID(c)
	if !ok {
		return
	}
	status, ok := statusBody(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	deliverable, err := h.store.Deliverables.Get(ctx, deliverableID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	project, err := h.store.Projects.Get(ctx, deliverable.ProjectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	grant, err := h.grants.Get(ctx, project.ID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !access.CanReorderDeliverable(role, userID, project, grant) {
		metrics.IncrementPermissionDenied("edit_deliverable")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to move this deliverable"})
		return
	}

	if err := h.engine.SetDeliverableStatus(ctx, deliverableID, status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createDeliverableRequest struct {
	ProjectID      int    `json:"project_id"`
	PhaseID        int    `json:"phase_id" binding:"required"`
	Title          string `json:"title" binding:"required"`
	Priority       string `json:"priority"`
	PriorityNumber int    `json:"priority_number"`
	DueDate        string `json:"due_date"`
	AssigneeIDs    []int  `json:"assignee_ids"`
}

// Create handles POST /deliverable.
func (h *DeliverableHandler) Create(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req createDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	phase, err := h.store.Phases.Get(ctx, req.PhaseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	project, err := h.store.Projects.Get(ctx, phase.ProjectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	grant, err := h.grants.Get(ctx, project.ID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !access.CanEditDeliverable(role, userID, project, grant) {
		metrics.IncrementPermissionDenied("create_deliverable")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to create deliverables"})
		return
	}

	deliverable := &model.Deliverable{
		ProjectID:      req.ProjectID,
		PhaseID:        req.PhaseID,
		Title:          req.Title,
		Priority:       model.Priority(req.Priority),
		PriorityNumber: req.PriorityNumber,
		AssigneeIDs:    req.AssigneeIDs,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be RFC 3339"})
			return
		}
		deliverable.DueDate = due
	}

	id, err := h.engine.CreateDeliverable(ctx, deliverable)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Delete handles DELETE /deliverable/:id. Admin capability only.
func (h *DeliverableHandler) Delete(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	deliverableID, ok := pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	deliverable, err := h.store.Deliverables.Get(ctx, deliverableID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	project, err := h.store.Projects.Get(ctx, deliverable.ProjectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	grant, err := h.grants.Get(ctx, project.ID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !access.CanDeleteDeliverable(role, userID, project, grant) {
		metrics.IncrementPermissionDenied("delete_deliverable")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete deliverables"})
		return
	}

	if err := h.engine.DeleteDeliverable(ctx, deliverableID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
