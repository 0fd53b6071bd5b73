package middleware

import (
	"mime"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes the brotli middleware.
type BrotliConfig struct {
	Quality   int
	MinLength int
	// Skipper bypasses compression for a request when it returns true.
	Skipper func(c *gin.Context) bool
	// SkipContentTypes lists media types that are already compressed.
	SkipContentTypes []string
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
	SkipContentTypes: []string{
		"application/zip",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"image/png",
		"image/jpeg",
	},
}

type writerMode int

const (
	modeBuffering writerMode = iota
	modeCompress
	modePassthrough
)

// brotliWriter buffers the body until MinLength bytes are known, then either
// compresses everything that follows or passes it through untouched.
type brotliWriter struct {
	gin.ResponseWriter
	cfg  *BrotliConfig
	bw   *brotli.Writer
	buf  []byte
	mode writerMode
}

func (w *brotliWriter) Write(data []byte) (int, error) {
	switch w.mode {
	case modeCompress:
		return w.bw.Write(data)
	case modePassthrough:
		return w.ResponseWriter.Write(data)
	}

	w.buf = append(w.buf, data...)
	if len(w.buf) < w.cfg.MinLength {
		return len(data), nil
	}
	if err := w.decide(); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (w *brotliWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// decide picks the output mode once enough of the body is buffered and
// drains the buffer accordingly.
func (w *brotliWriter) decide() error {
	pending := w.buf
	w.buf = nil

	if w.skipContentType() || w.Header().Get("Content-Encoding") != "" {
		w.mode = modePassthrough
		_, err := w.ResponseWriter.Write(pending)
		return err
	}

	w.mode = modeCompress
	w.Header().Set("Content-Encoding", "br")
	w.Header().Del("Content-Length")
	w.bw = brotli.NewWriterLevel(w.ResponseWriter, w.cfg.Quality)
	_, err := w.bw.Write(pending)
	return err
}

func (w *brotliWriter) skipContentType() bool {
	ct := w.Header().Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	for _, skip := range w.cfg.SkipContentTypes {
		if strings.EqualFold(mediaType, skip) {
			return true
		}
	}
	return false
}

// Flush sends whatever is buffered. A body still below MinLength at this
// point goes out uncompressed.
func (w *brotliWriter) Flush() {
	switch w.mode {
	case modeBuffering:
		w.mode = modePassthrough
		if len(w.buf) > 0 {
			_, _ = w.ResponseWriter.Write(w.buf)
			w.buf = nil
		}
	case modeCompress:
		_ = w.bw.Flush()
	}
	w.ResponseWriter.Flush()
}

// finish completes the response after the handler chain returns.
func (w *brotliWriter) finish() error {
	switch w.mode {
	case modeCompress:
		return w.bw.Close()
	case modeBuffering:
		if len(w.buf) == 0 {
			return nil
		}
		_, err := w.ResponseWriter.Write(w.buf)
		w.buf = nil
		return err
	}
	return nil
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if isStreaming(c) || (cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		w := &brotliWriter{ResponseWriter: c.Writer, cfg: &cfg}
		c.Writer = w
		defer func() {
			if err := w.finish(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// isStreaming reports requests whose responses must not be buffered: SSE
// needs every event delivered as written and a WebSocket handshake cannot
// go through a wrapped writer.
func isStreaming(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
