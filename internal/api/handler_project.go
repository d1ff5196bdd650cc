package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"talentlink/internal/model"
	"talentlink/internal/service/lifecycle"
	"talentlink/pkg/rbac"
)

type ProjectHandler struct {
	lifecycle *lifecycle.Service
	logger    *zap.Logger
}

func NewProjectHandler(lifecycleService *lifecycle.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		lifecycle: lifecycleService,
		logger:    logger,
	}
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var in lifecycle.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.lifecycle.CreateProject(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// List handles GET /projects?skill=&status=&mine=
func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	f := lifecycle.ProjectFilter{
		Skill:  c.Query("skill"),
		Status: model.ProjectStatus(c.Query("status")),
	}
	if c.Query("mine") == "true" {
		if actor.Role == rbac.RoleClient {
			f.ClientID = actor.UserID
		} else {
			f.FreelancerID = actor.UserID
		}
	}

	projects, err := h.lifecycle.ListProjects(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("Failed to list projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	p, err := h.lifecycle.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Edit handles PUT /projects/:id
func (h *ProjectHandler) Edit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	var upd lifecycle.ProjectUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.lifecycle.EditProject(c.Request.Context(), actor, projectID, upd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.lifecycle.DeleteProject(c.Request.Context(), actor, projectID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Clear handles DELETE /projects, removing every project the client owns.
func (h *ProjectHandler) Clear(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	n, err := h.lifecycle.ClearClientProjects(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// Acquire handles POST /projects/:id/acquire
func (h *ProjectHandler) Acquire(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	p, err := h.lifecycle.Acquire(c.Request.Context(), actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Assign handles POST /projects/:id/assign. A null freelancer_id detaches and
// reopens the project.
func (h *ProjectHandler) Assign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		FreelancerID *int `json:"freelancer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.lifecycle.Assign(c.Request.Context(), actor, projectID, req.FreelancerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateProgress handles POST /projects/:id/progress
func (h *ProjectHandler) UpdateProgress(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Progress int `json:"progress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.lifecycle.UpdateProgress(c.Request.Context(), actor, projectID, req.Progress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// pathID parses the :id path segment, writing the error response itself.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
