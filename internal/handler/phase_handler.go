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

type PhaseHandler struct {
	engine *engine.Engine
	store  store.Store
	grants *grants.Service
	logger *zap.Logger
}

func NewPhaseHandler(e *engine.Engine, st store.Store, g *grants.Service, logger *zap.Logger) *PhaseHandler {
	return &PhaseHandler{engine: e, store: st, grants: g, logger: logger}
}

// SetStatus handles PUT /phase/:id/status, the same override one level up
// from deliverables.
func (h *PhaseHandler) SetStatus(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	phaseID, ok := pathID(c)
	if !ok {
		return
	}
	status, ok := statusBody(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	phase, err := h.store.Phases.Get(ctx, phaseID)
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
	if !access.CanReorderPhase(role, userID, project, grant) {
		metrics.IncrementPermissionDenied("edit_phase")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to move this phase"})
		return
	}

	if err := h.engine.SetPhaseStatus(ctx, phaseID, status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createPhaseRequest struct {
	ProjectID int    `json:"project_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Create handles POST /phase.
func (h *PhaseHandler) Create(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req createPhaseRequest
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
	if !access.CanEditPhase(role, userID, project, grant) {
		metrics.IncrementPermissionDenied("create_phase")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to create phases"})
		return
	}

	phase := &model.Phase{
		ProjectID: req.ProjectID,
		Title:     req.Title,
	}
	if req.StartDate != "" {
		start, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be RFC 3339"})
			return
		}
		phase.StartDate = start
	}
	if req.EndDate != "" {
		end, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be RFC 3339"})
			return
		}
		phase.EndDate = end
	}

	id, err := h.engine.CreatePhase(ctx, phase)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Delete handles DELETE /phase/:id. Admin capability only; owned
// deliverables and their tasks go with it.
func (h *PhaseHandler) Delete(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	phaseID, ok := pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	phase, err := h.store.Phases.Get(ctx, phaseID)
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
	if !access.CanDeletePhase(role, userID, project, grant) {
		metrics.IncrementPermissionDenied("delete_phase")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete phases"})
		return
	}

	if err := h.engine.DeletePhase(ctx, phaseID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
