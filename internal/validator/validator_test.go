package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/bincan-backend/internal/model"
)

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBind_CreateExerciseValid(t *testing.T) {
	var req model.CreateExerciseRequest
	fields := bindBody(t, `{"originalText":"나는 학교에 간다","difficulty":"beginner","category":"ai_basics"}`, &req)

	require.Nil(t, fields)
	assert.Equal(t, model.DifficultyBeginner, req.Difficulty)
	assert.Equal(t, model.CategoryAIBasics, req.Category)
}

func TestBind_BlankText(t *testing.T) {
	var req model.CreateExerciseRequest
	fields := bindBody(t, `{"originalText":"   \n  "}`, &req)

	require.NotNil(t, fields)
	assert.Equal(t, "originalText must not be blank", fields["originalText"])
}

func TestBind_MissingText(t *testing.T) {
	var req model.CreateExerciseRequest
	fields := bindBody(t, `{}`, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "originalText")
}

func TestBind_UnknownDifficultyAndCategory(t *testing.T) {
	var req model.CreateExerciseRequest
	fields := bindBody(t, `{"originalText":"학교","difficulty":"expert","category":"physics"}`, &req)

	require.NotNil(t, fields)
	assert.Equal(t, "difficulty must be one of beginner, intermediate, advanced", fields["difficulty"])
	assert.Equal(t, "category is not a known category", fields["category"])
}

func TestBind_SyntaxError(t *testing.T) {
	var req model.SubmitAnswerRequest
	fields := bindBody(t, `{"blankId":`, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "detail")
}

func TestBind_GradeRequestAllowsEmptyMap(t *testing.T) {
	var req model.GradeExerciseRequest
	require.Nil(t, bindBody(t, `{"answers":{}}`, &req))

	fields := bindBody(t, `{}`, &model.GradeExerciseRequest{})
	assert.Contains(t, fields, "answers")
}
