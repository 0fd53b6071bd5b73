package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/bincan-backend/internal/model"
	"github.com/stemsi/bincan-backend/internal/response"
	"github.com/stemsi/bincan-backend/internal/service"
)

// ContentHandler serves the curriculum text catalog.
type ContentHandler struct {
	exerciseService *service.ExerciseService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(exerciseService *service.ExerciseService) *ContentHandler {
	return &ContentHandler{exerciseService: exerciseService}
}

// ListContent godoc
// GET /api/v1/content
// Returns every category text keyed by category.
func (h *ContentHandler) ListContent(c *gin.Context) {
	entries := h.exerciseService.Catalog()
	byCategory := make(map[model.Category]model.Content, len(entries))
	for _, entry := range entries {
		byCategory[entry.Category] = entry
	}

	response.Success(c, http.StatusOK, byCategory)
}

// GetContent godoc
// GET /api/v1/content/:category
func (h *ContentHandler) GetContent(c *gin.Context) {
	cat := model.Category(c.Param("category"))
	if !cat.Valid() {
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownCategory)
		return
	}

	entry, err := h.exerciseService.CatalogEntry(cat)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrUnknownCategory)
		return
	}

	response.Success(c, http.StatusOK, entry)
}
