package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portsrepo "github.com/glsuite/gl_posting_app/internal/core/ports/repositories"
	"github.com/glsuite/gl_posting_app/internal/middleware"
)

// factHandler serves read access to the posted fact lines of a document.
type factHandler struct {
	factReader portsrepo.FactReader
}

func newFactHandler(factReader portsrepo.FactReader) *factHandler {
	return &factHandler{factReader: factReader}
}

// getFactLines returns the persisted fact lines for a document under one
// accounting schema.
func (h *factHandler) getFactLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	recordID, err := strconv.ParseInt(c.Param("recordID"), 10, 64)
	if err != nil || recordID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}
	schemaID, err := strconv.ParseInt(c.Query("schemaID"), 10, 64)
	if err != nil || schemaID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schema ID"})
		return
	}

	ref := domain.TableRecordRef{TableName: c.Param("table"), RecordID: recordID}
	lines, err := h.factReader.FindFactLinesForDocument(c.Request.Context(), ref, schemaID)
	if err != nil {
		logger.Error("Failed to retrieve fact lines", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve fact lines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"factLines": lines})
}

// registerFactRoutes registers the fact read routes.
func registerFactRoutes(group *gin.RouterGroup, factReader portsrepo.FactReader) {
	h := newFactHandler(factReader)
	facts := group.Group("/facts")
	facts.GET("/:table/:recordID", h.getFactLines)
}
