package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/engine"
	"projecttracker/internal/model"
	"projecttracker/internal/store"
)

type ProjectHandler struct {
	engine *engine.Engine
	store  store.Store
	logger *zap.Logger
}

func NewProjectHandler(e *engine.Engine, st store.Store, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{engine: e, store: st, logger: logger}
}

type createProjectRequest struct {
	Title            string `json:"title" binding:"required"`
	ProjectManagerID int    `json:"project_manager_id"`
	MemberIDs        []int  `json:"member_ids"`
}

// Create handles POST /project. Creating projects is not scoped to any
// existing project, so only the admin and project-manager roles qualify.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if role != model.RoleAdmin && role != model.RoleProjectManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to create projects"})
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	managerID := req.ProjectManagerID
	if managerID == 0 {
		managerID = userID
	}
	project := &model.Project{
		Title:            req.Title,
		ProjectManagerID: managerID,
		MemberIDs:        req.MemberIDs,
	}

	id, err := h.engine.CreateProject(c.Request.Context(), project)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Get handles GET /project/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	if _, _, ok := requester(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	project, err := h.store.Projects.Get(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
