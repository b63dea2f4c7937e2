package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glsuite/gl_posting_app/internal/core/domain"
	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
	"github.com/glsuite/gl_posting_app/internal/dto"
	"github.com/glsuite/gl_posting_app/internal/middleware"
)

// postingHandler handles HTTP requests that trigger document posting.
type postingHandler struct {
	postingService portssvc.PostingSvcFacade
}

// newPostingHandler creates a new postingHandler.
func newPostingHandler(postingService portssvc.PostingSvcFacade) *postingHandler {
	return &postingHandler{
		postingService: postingService,
	}
}

// postDocument triggers posting of one document and reports the classified
// outcome. A posting failure is a 422 carrying the stable error message, not
// a 500: the request itself was handled fine.
func (h *postingHandler) postDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var uriReq dto.PostingRequestURI
	if err := c.ShouldBindUri(&uriReq); err != nil {
		logger.Error("Failed to bind URI for postDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	var queryReq dto.PostingRequestQuery
	if err := c.ShouldBindQuery(&queryReq); err != nil {
		logger.Error("Failed to bind query for postDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ref := domain.TableRecordRef{TableName: uriReq.TableName, RecordID: uriReq.RecordID}
	logger = logger.With(slog.String("table", ref.TableName), slog.Int64("record_id", ref.RecordID))

	perr := h.postingService.Post(c.Request.Context(), ref, queryReq.Force, queryReq.Repost)
	if perr != nil {
		logger.Warn("Posting failed", slog.String("status", string(perr.StatusOrError())), slog.String("error", perr.Error()))
		c.JSON(http.StatusUnprocessableEntity, dto.NewPostingResponse(ref, perr))
		return
	}

	logger.Info("Document posted successfully")
	c.JSON(http.StatusOK, dto.NewPostingResponse(ref, nil))
}

// registerPostingRoutes registers the posting trigger routes.
func registerPostingRoutes(group *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newPostingHandler(postingService)
	posting := group.Group("/posting")
	posting.POST("/:table/:recordID", h.postDocument)
}
