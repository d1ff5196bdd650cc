package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"talentlink/internal/model"
	"talentlink/internal/service/lifecycle"
)

type ApplicationHandler struct {
	lifecycle *lifecycle.Service
	logger    *zap.Logger
}

func NewApplicationHandler(lifecycleService *lifecycle.Service, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		lifecycle: lifecycleService,
		logger:    logger,
	}
}

// Apply handles POST /projects/:id/applications
func (h *ApplicationHandler) Apply(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	var in lifecycle.ApplicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	a, err := h.lifecycle.Apply(c.Request.Context(), actor, projectID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, a)
}

// ListMine handles GET /applications
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	apps, err := h.lifecycle.ListMyApplications(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// ListForProject handles GET /projects/:id/applications
func (h *ApplicationHandler) ListForProject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	apps, err := h.lifecycle.ListProjectApplications(c.Request.Context(), actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// Get handles GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	applicationID, ok := pathID(c)
	if !ok {
		return
	}

	a, err := h.lifecycle.GetApplication(c.Request.Context(), actor, applicationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// Accept handles POST /applications/:id/accept
func (h *ApplicationHandler) Accept(c *gin.Context) {
	h.decide(c, true)
}

// Reject handles POST /applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *ApplicationHandler) decide(c *gin.Context, accept bool) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	applicationID, ok := pathID(c)
	if !ok {
		return
	}

	var (
		a   *model.Application
		err error
	)
	if accept {
		a, err = h.lifecycle.AcceptApplication(c.Request.Context(), actor, applicationID)
	} else {
		a, err = h.lifecycle.RejectApplication(c.Request.Context(), actor, applicationID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// Propose handles POST /applications/:id/propose
func (h *ApplicationHandler) Propose(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	applicationID, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	a, err := h.lifecycle.ProposeStatus(c.Request.Context(), actor, applicationID, model.ProjectStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// Resolve handles POST /applications/:id/resolve
func (h *ApplicationHandler) Resolve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	applicationID, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Approve *bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Approve == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approve is required"})
		return
	}

	a, err := h.lifecycle.ResolveProposal(c.Request.Context(), actor, applicationID, *req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}
