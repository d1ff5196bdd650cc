package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"talentlink/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *AuthHandler,
	projectHandler *ProjectHandler,
	applicationHandler *ApplicationHandler,
	notificationHandler *NotificationHandler,
	jwtSecret string,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(TraceMiddleware(), MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/profile", authHandler.GetProfile)
		auth.PUT("/profile", authHandler.UpdateProfile)

		auth.POST("/projects", RequirePermission(rbac.PermissionCreateProject), projectHandler.Create)
		auth.GET("/projects", RequirePermission(rbac.PermissionReadProject), projectHandler.List)
		auth.DELETE("/projects", RequirePermission(rbac.PermissionDeleteProject), projectHandler.Clear)
		auth.GET("/projects/:id", RequirePermission(rbac.PermissionReadProject), projectHandler.Get)
		auth.PUT("/projects/:id", RequirePermission(rbac.PermissionEditProject), projectHandler.Edit)
		auth.DELETE("/projects/:id", RequirePermission(rbac.PermissionDeleteProject), projectHandler.Delete)
		auth.POST("/projects/:id/acquire", RequirePermission(rbac.PermissionAcquireProject), projectHandler.Acquire)
		auth.POST("/projects/:id/assign", RequirePermission(rbac.PermissionAssignProject), projectHandler.Assign)
		auth.POST("/projects/:id/progress", RequirePermission(rbac.PermissionUpdateProgress), projectHandler.UpdateProgress)

		auth.POST("/projects/:id/applications", RequirePermission(rbac.PermissionApplyProject), applicationHandler.Apply)
		auth.GET("/projects/:id/applications", RequirePermission(rbac.PermissionReadApplication), applicationHandler.ListForProject)
		auth.GET("/applications", RequirePermission(rbac.PermissionReadApplication), applicationHandler.ListMine)
		auth.GET("/applications/:id", RequirePermission(rbac.PermissionReadApplication), applicationHandler.Get)
		auth.POST("/applications/:id/accept", RequirePermission(rbac.PermissionDecideApplication), applicationHandler.Accept)
		auth.POST("/applications/:id/reject", RequirePermission(rbac.PermissionDecideApplication), applicationHandler.Reject)
		auth.POST("/applications/:id/propose", RequirePermission(rbac.PermissionProposeStatus), applicationHandler.Propose)
		auth.POST("/applications/:id/resolve", RequirePermission(rbac.PermissionResolveProposal), applicationHandler.Resolve)

		auth.GET("/notifications", RequirePermission(rbac.PermissionReadNotification), notificationHandler.List)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
