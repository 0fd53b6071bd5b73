package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/model"
	"github.com/stemsi/bincan-backend/internal/response"
	"github.com/stemsi/bincan-backend/internal/service"
	"github.com/stemsi/bincan-backend/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExerciseHandler handles exercise creation and grading endpoints.
type ExerciseHandler struct {
	exerciseService *service.ExerciseService
	log             zerolog.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService *service.ExerciseService, log zerolog.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
		log:             log.With().Str("component", "exercise_handler").Logger(),
	}
}

// CreateExercise godoc
// POST /api/v1/exercises
// Creates an exercise from free text and assigns its blanks.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req model.CreateExerciseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exercise, err := h.exerciseService.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, exercise)
}

// CreateFromCategory godoc
// POST /api/v1/exercises/from-category
// Creates an exercise from the catalog text of a category.
func (h *ExerciseHandler) CreateFromCategory(c *gin.Context) {
	var req model.CreateFromCategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exercise, err := h.exerciseService.CreateFromCategory(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, exercise)
}

// GetExercise godoc
// GET /api/v1/exercises/:id
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := parseExerciseID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, exercise)
}

// SubmitAnswer godoc
// POST /api/v1/exercises/:id/answer
// Stores one answer and grades that blank immediately.
func (h *ExerciseHandler) SubmitAnswer(c *gin.Context) {
	id, ok := parseExerciseID(c)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.exerciseService.SubmitAnswer(c.Request.Context(), id, req.BlankID, req.Answer)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GradeExercise godoc
// POST /api/v1/exercises/:id/grade
// Replaces the stored answers and grades every blank.
func (h *ExerciseHandler) GradeExercise(c *gin.Context) {
	id, ok := parseExerciseID(c)
	if !ok {
		return
	}

	var req model.GradeExerciseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	graded, err := h.exerciseService.GradeBatch(c.Request.Context(), id, req.Answers)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, graded)
}

// ResetExercise godoc
// POST /api/v1/exercises/:id/reset
// Clears answers and results so the same blanks can be tried again.
func (h *ExerciseHandler) ResetExercise(c *gin.Context) {
	id, ok := parseExerciseID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Reset(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, exercise)
}

// GetHint godoc
// GET /api/v1/exercises/:id/blanks/:blank_id/hint
func (h *ExerciseHandler) GetHint(c *gin.Context) {
	id, ok := parseExerciseID(c)
	if !ok {
		return
	}

	hint, err := h.exerciseService.Hint(c.Request.Context(), id, c.Param("blank_id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, hint)
}

// ExportExercise godoc
// GET /api/v1/exercises/:id/export
// Downloads blanks, answers and results as an xlsx workbook.
func (h *ExerciseHandler) ExportExercise(c *gin.Context) {
	id, ok := parseExerciseID(c)
	if !ok {
		return
	}

	data, err := h.exerciseService.Export(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Attachment(c, fmt.Sprintf("exercise-%s.xlsx", id), xlsxContentType, data)
}

// ListScores godoc
// GET /api/v1/exercises/:id/scores
// Lists past batch grading snapshots, newest first.
func (h *ExerciseHandler) ListScores(c *gin.Context) {
	id, ok := parseExerciseID(c)
	if !ok {
		return
	}

	scores, err := h.exerciseService.History(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if scores == nil {
		scores = []model.ScoreRecord{}
	}

	response.Success(c, http.StatusOK, gin.H{"scores": scores})
}

// fail maps service errors onto the response envelope.
func (h *ExerciseHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrBlankNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrBlankNotFound)
	case errors.Is(err, service.ErrUnknownCategory):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownCategory)
	case errors.Is(err, service.ErrHistoryDisabled):
		response.Fail(c, http.StatusNotFound, response.ErrHistoryDisabled)
	default:
		_ = c.Error(err)
		h.log.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func parseExerciseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
