package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/bincan-backend/internal/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_AllowAndRefill(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "buckets are per key")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(10 * time.Minute)
	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestRateLimiter_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, time.Minute)
	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, response.ErrRateLimitExceeded, body.Error.Code)
}

func TestBrotli_CompressesLargeBodies(t *testing.T) {
	payload := strings.Repeat("빈칸 채우기 연습 ", 200)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, payload) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, payload, string(plain))

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())
}

func TestBrotli_SkipsEventStream(t *testing.T) {
	r := gin.New()
	r.Use(Brotli())
	r.GET("/sse", func(c *gin.Context) { c.String(http.StatusOK, strings.Repeat("x", 4096)) })

	req := httptest.NewRequest(http.MethodGet, "/sse", nil)
	req.Header.Set("Accept-Encoding", "br")
	req.Header.Set("Accept", "text/event-stream")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Len(t, w.Body.String(), 4096)
}

func TestBrotli_TailAfterThresholdStaysCompressed(t *testing.T) {
	head := strings.Repeat("가", 600)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/chunks", func(c *gin.Context) {
		c.Header("Content-Type", "text/plain")
		_, _ = c.Writer.WriteString(head)
		_, _ = c.Writer.WriteString("끝")
	})

	req := httptest.NewRequest(http.MethodGet, "/chunks", nil)
	req.Header.Set("Accept-Encoding", "br;q=1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, head+"끝", string(plain))
}

func TestBrotli_SkipsCompressedContentTypes(t *testing.T) {
	payload := bytes.Repeat([]byte{'P', 'K'}, 2048)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/xlsx", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
	})

	req := httptest.NewRequest(http.MethodGet, "/xlsx", nil)
	req.Header.Set("Accept-Encoding", "br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, w.Body.Bytes())
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/c", CacheControl(5*time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/n", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/c", nil))
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/n", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(response.RequestIDMiddleware(), RequestLogger(log))
	r.GET("/missing/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/missing/7", nil)
	req.Header.Set("X-Request-ID", "rid-7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "http", line["component"])
	assert.Equal(t, "rid-7", line["request_id"])
	assert.Equal(t, "/missing/:id", line["route"])
	assert.Equal(t, float64(404), line["status"])
}
