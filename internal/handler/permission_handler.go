package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/access"
	"projecttracker/internal/grants"
	"projecttracker/internal/model"
	"projecttracker/internal/store"
	"projecttracker/pkg/metrics"
)

type PermissionHandler struct {
	grants *grants.Service
	store  store.Store
	logger *zap.Logger
}

func NewPermissionHandler(g *grants.Service, st store.Store, logger *zap.Logger) *PermissionHandler {
	return &PermissionHandler{grants: g, store: st, logger: logger}
}

type assignPermissionsRequest struct {
	ProjectID   int      `json:"projectId" binding:"required"`
	UserID      int      `json:"userId" binding:"required"`
	Permissions []string `json:"permissions"`
}

// Assign handles POST /permissions/assign: the grant is replaced
// wholesale. Granting requires the admin capability on the project.
func (h *PermissionHandler) Assign(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req assignPermissionsRequest
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
	requesterGrant, err := h.grants.Get(ctx, project.ID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !access.HasPermission(role, userID, project, requesterGrant, model.CapAdmin) {
		metrics.IncrementPermissionDenied("assign_permissions")
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to assign permissions"})
		return
	}

	if err := h.grants.Assign(ctx, req.ProjectID, req.UserID, req.Permissions); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetByProjectAndUser handles
// GET /permissions/by-project-and-user?projectId=&userId=. A missing
// grant is an empty permission list, not an error.
func (h *PermissionHandler) GetByProjectAndUser(c *gin.Context) {
	if _, _, ok := requester(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	projectID, err := strconv.Atoi(c.Query("projectId"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
		return
	}
	userID, err := strconv.Atoi(c.Query("userId"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
		return
	}

	grant, err := h.grants.Get(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"permissions": grant.Capabilities})
}
