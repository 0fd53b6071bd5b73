package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/response"
	"github.com/stemsi/bincan-backend/internal/service"
	ws "github.com/stemsi/bincan-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the instant grading stream of one exercise.
type WSHandler struct {
	exerciseService *service.ExerciseService
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(exerciseService *service.ExerciseService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		exerciseService: exerciseService,
		log:             log.With().Str("component", "ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// ExerciseStream godoc
// WS /ws/v1/exercises/:id/stream
// Upgrades to WebSocket for per-blank instant grading and final scoring.
func (h *WSHandler) ExerciseStream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Reject unknown exercises before the upgrade so clients get a plain 404.
	if _, err := h.exerciseService.Get(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Str("exercise_id", id.String()).Msg("Exercise lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(ws.MaxMessageSize)

	wsLog := h.log.With().Str("exercise_id", id.String()).Logger()
	wsLog.Info().Msg("Client connected")

	// The request context ends when the handler returns, which is also
	// when the socket closes.
	ctx := c.Request.Context()

	for {
		var msg ws.RequestPayload
		err := ws.ReadJSON(conn, &msg)
		if err != nil {
			if ws.IsDecodeError(err) {
				_ = ws.WriteError(conn, "malformed message")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var writeErr error
		switch msg.Action {
		case ws.ActionAnswer:
			writeErr = h.handleAnswer(ctx, conn, wsLog, id, &msg)
		case ws.ActionSubmit:
			writeErr = h.handleSubmit(ctx, conn, wsLog, id)
		case ws.ActionPing:
			writeErr = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			writeErr = ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
		if writeErr != nil {
			wsLog.Warn().Err(writeErr).Msg("Write failed, closing stream")
			return
		}
	}
}

// handleAnswer stores one answer and replies with its graded result.
func (h *WSHandler) handleAnswer(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, id uuid.UUID, msg *ws.RequestPayload) error {
	if msg.BlankID == "" {
		return ws.WriteError(conn, "blankId is required")
	}

	result, err := h.exerciseService.SubmitAnswer(ctx, id, msg.BlankID, msg.Answer)
	if err != nil {
		return ws.WriteError(conn, streamError(wsLog, err))
	}

	return ws.WriteTyped(conn, ws.GradedResponse{Event: ws.EventGraded, Result: result})
}

// handleSubmit grades every stored answer and replies with the score.
func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, id uuid.UUID) error {
	graded, err := h.exerciseService.GradeStored(ctx, id)
	if err != nil {
		return ws.WriteError(conn, streamError(wsLog, err))
	}

	wsLog.Info().
		Int("correct", graded.Score.Correct).
		Int("total", graded.Score.Total).
		Msg("Exercise submitted")

	return ws.WriteTyped(conn, ws.ScoredResponse{
		Event:   ws.EventScored,
		Results: graded.Results,
		Score:   graded.Score,
	})
}

// streamError turns a service error into the text sent on the socket.
func streamError(wsLog zerolog.Logger, err error) string {
	switch {
	case errors.Is(err, service.ErrBlankNotFound):
		return response.GetMessage(response.ErrBlankNotFound)
	case errors.Is(err, service.ErrExerciseNotFound):
		return response.GetMessage(response.ErrNotFound)
	default:
		wsLog.Error().Err(err).Msg("Stream operation failed")
		return response.GetMessage(response.ErrInternal)
	}
}
