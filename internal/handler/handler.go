// Package handler holds the gin HTTP handlers. Handlers authorize through
// the access resolver before any write and translate the error taxonomy
// onto HTTP statuses: NotFound 404, Unauthorized 403, InvalidState 400.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
)

// Context keys set by the auth middleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// requester returns the authenticated user id and role from the context.
func requester(c *gin.Context) (int, model.Role, bool) {
	rawID, ok := c.Get(CtxUserID)
	if !ok {
		return 0, 0, false
	}
	userID, ok := rawID.(int)
	if !ok {
		return 0, 0, false
	}
	rawRole, ok := c.Get(CtxRole)
	if !ok {
		return 0, 0, false
	}
	role, ok := rawRole.(model.Role)
	if !ok {
		return 0, 0, false
	}
	return userID, role, true
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// statusBody accepts either {"status": "..."} or a raw status string.
func statusBody(c *gin.Context) (model.Status, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return "", false
	}

	raw := strings.TrimSpace(string(body))
	if strings.HasPrefix(raw, "{") {
		var payload struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
			return "", false
		}
		raw = payload.Status
	} else {
		raw = strings.Trim(raw, `"`)
	}

	status, err := model.ParseStatus(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return status, true
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
