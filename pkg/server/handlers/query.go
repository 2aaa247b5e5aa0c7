package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/quorum"
	"github.com/soundprediction/quorum/pkg/server/dto"
	"github.com/soundprediction/quorum/pkg/types"
)

// QueryHandler handles search and ask requests
type QueryHandler struct {
	quorum quorum.Quorum
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(q quorum.Quorum) *QueryHandler {
	return &QueryHandler{quorum: q}
}

// Search handles POST /search
func (h *QueryHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(c, http.StatusBadRequest, "invalid_request", "query field is required and cannot be empty")
		return
	}

	chunks, err := h.quorum.Retrieve(c.Request.Context(), req.Query, req.RetrieveOptions())
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSearchResponse(chunks))
}

// Ask handles POST /ask
func (h *QueryHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(c, http.StatusBadRequest, "invalid_request", "query field is required and cannot be empty")
		return
	}

	// Answer quality wants the full document context.
	opts := req.RetrieveOptions()
	opts.ReturnAllChunks = true

	answer, err := h.quorum.Ask(c.Request.Context(), req.Query, opts)
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// writeQueryError maps retrieval errors to HTTP status codes.
func writeQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidFilterKey):
		writeError(c, http.StatusBadRequest, "invalid_filter", err.Error())
	case errors.Is(err, types.ErrStorageUnavailable):
		writeError(c, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
	case errors.Is(err, types.ErrEmbeddingProvider):
		writeError(c, http.StatusBadGateway, "embedding_failed", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "query_failed", err.Error())
	}
}

func writeError(c *gin.Context, code int, errName, message string) {
	c.JSON(code, dto.ErrorResponse{
		Error:   errName,
		Message: message,
		Code:    code,
	})
}
