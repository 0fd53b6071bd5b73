package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ws "github.com/stemsi/bincan-backend/internal/websocket"
)

func dialStream(t *testing.T, srv *httptest.Server, id string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/exercises/" + id + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	}
	return conn, resp, err
}

func TestExerciseStream(t *testing.T) {
	s := newTestServer(t, nil)
	e := s.createScenario(t)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	conn, _, err := dialStream(t, srv, e.ID.String())
	require.NoError(t, err)

	// ping
	require.NoError(t, conn.WriteJSON(ws.RequestPayload{Action: ws.ActionPing}))
	var pong ws.PongResponse
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.EventPong, pong.Event)

	// instant grading
	require.NoError(t, conn.WriteJSON(ws.RequestPayload{Action: ws.ActionAnswer, BlankID: "blank_0", Answer: "나는"}))
	var graded ws.GradedResponse
	require.NoError(t, conn.ReadJSON(&graded))
	assert.Equal(t, ws.EventGraded, graded.Event)
	assert.Equal(t, "blank_0", graded.Result.BlankID)
	assert.True(t, graded.Result.IsCorrect)

	// unknown blank keeps the stream open
	require.NoError(t, conn.WriteJSON(ws.RequestPayload{Action: ws.ActionAnswer, BlankID: "blank_5", Answer: "x"}))
	var errResp ws.ErrorResponse
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, ws.EventError, errResp.Event)
	assert.Equal(t, "빈칸을 찾을 수 없습니다.", errResp.Error)

	// malformed frames keep the stream open
	for _, frame := range []string{`{"action":`, ``, `{"action":"ping"`, `{"action":42}`, `[]`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		errResp = ws.ErrorResponse{}
		require.NoError(t, conn.ReadJSON(&errResp), "frame %q", frame)
		assert.Equal(t, ws.EventError, errResp.Event, "frame %q", frame)
		assert.Equal(t, "malformed message", errResp.Error, "frame %q", frame)
	}

	// still usable afterwards
	require.NoError(t, conn.WriteJSON(ws.RequestPayload{Action: ws.ActionPing}))
	pong = ws.PongResponse{}
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.EventPong, pong.Event)

	// unknown action
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "dance"}))
	errResp = ws.ErrorResponse{}
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, "unknown action: dance", errResp.Error)

	// submit grades the stored answers
	require.NoError(t, conn.WriteJSON(ws.RequestPayload{Action: ws.ActionSubmit}))
	var scored ws.ScoredResponse
	require.NoError(t, conn.ReadJSON(&scored))
	assert.Equal(t, ws.EventScored, scored.Event)
	require.Len(t, scored.Results, 2)
	assert.True(t, scored.Results[0].IsCorrect)
	assert.False(t, scored.Results[1].IsCorrect)
	assert.Equal(t, 50, scored.Score.Percentage)
}

func TestExerciseStream_RejectsBeforeUpgrade(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	_, resp, err := dialStream(t, srv, uuid.NewString())
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = dialStream(t, srv, "nope")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
