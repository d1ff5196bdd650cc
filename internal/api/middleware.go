package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"talentlink/internal/service/lifecycle"
	"talentlink/internal/util"
	"talentlink/pkg/metrics"
	"talentlink/pkg/rbac"
	"talentlink/pkg/trace"
)

// AuthMiddleware validates the bearer token and stores the verified identity
// in the gin context. Handlers never read ids or roles from request bodies.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		userID, role, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("role", role)

		c.Next()
	}
}

// RequirePermission rejects requests whose role lacks the permission. The
// lifecycle store re-checks ownership on every call; this is the early gate.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		r, ok := role.(string)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid role"})
			c.Abort()
			return
		}

		if err := rbac.CheckPermission(r, permission); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}

// TraceMiddleware attaches a trace id to the request context and echoes it in
// the response header, generating one when the caller sent none.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName)
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}

		ctx := trace.WithContext(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.HeaderName, traceID)

		c.Next()
	}
}

// MetricsMiddleware records request latency per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, status, time.Since(start))
	}
}

// actorFromContext builds the acting identity from what AuthMiddleware stored.
func actorFromContext(c *gin.Context) (lifecycle.Actor, bool) {
	userID, ok := c.Get("user_id")
	if !ok {
		return lifecycle.Actor{}, false
	}
	role, ok := c.Get("role")
	if !ok {
		return lifecycle.Actor{}, false
	}

	uid, okID := userID.(int)
	r, okRole := role.(string)
	if !okID || !okRole {
		return lifecycle.Actor{}, false
	}

	return lifecycle.Actor{UserID: uid, Role: r}, true
}
