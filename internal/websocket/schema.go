package websocket

import "github.com/stemsi/bincan-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload covers every client action. Only answer uses the blank fields.
type RequestPayload struct {
	Action  Action `json:"action"`
	BlankID string `json:"blankId,omitempty"`
	Answer  string `json:"answer,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventGraded Event = "graded"
	EventScored Event = "scored"
	EventPong   Event = "pong"
)

// GradedResponse carries the instant result of one blank.
type GradedResponse struct {
	Event  Event                `json:"event"`
	Result model.ExerciseResult `json:"result"`
}

// ScoredResponse carries the outcome of grading every stored answer.
type ScoredResponse struct {
	Event   Event                  `json:"event"`
	Results []model.ExerciseResult `json:"results"`
	Score   model.Score            `json:"score"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
