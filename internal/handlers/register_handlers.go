package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
	"github.com/glsuite/gl_posting_app/pkg/config"
)

// Dependencies carries the service interfaces the HTTP layer dispatches to.
type Dependencies struct {
	Posting portssvc.PostingSvcFacade
	Facts   portsrepo.FactReader
}

// RegisterRoutes sets up all application routes, injecting dependencies using
// interfaces.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, deps)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the entity
// route registrations.
func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	v1 := r.Group("/api/v1")

	registerPostingRoutes(v1, deps.Posting)
	registerFactRoutes(v1, deps.Facts)
}
