package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/response"
)

const (
	metricsInterval = 7 * time.Second
	healthTimeout   = 2 * time.Second
)

// QueueDepth reports how many score records wait for persistence.
type QueueDepth interface {
	Depth(ctx context.Context) (int64, error)
}

// Pinger checks the backends the server depends on.
type Pinger interface {
	Ping(ctx context.Context) (map[string]string, error)
}

// SystemHandler serves the health check and streams OS and Go runtime
// metrics via SSE.
type SystemHandler struct {
	queue     QueueDepth
	pinger    Pinger
	store     string
	startTime time.Time
	cpuModel  string
	log       zerolog.Logger

	// CPU delta state, shared by concurrent SSE clients.
	mu        sync.Mutex
	prevIdle  uint64
	prevTotal uint64
}

// NewSystemHandler creates a SystemHandler. queue and pinger may be nil.
func NewSystemHandler(queue QueueDepth, pinger Pinger, store string, log zerolog.Logger) *SystemHandler {
	h := &SystemHandler{
		queue:     queue,
		pinger:    pinger,
		store:     store,
		startTime: time.Now(),
		cpuModel:  readCPUModel(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
	// Seed initial CPU reading so the first tick gets a real delta
	h.prevIdle, h.prevTotal, _ = readCPUStat()
	return h
}

// Health godoc
// GET /health
// Reports 503 when a configured backend does not answer.
func (h *SystemHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "store": h.store}
	if h.pinger == nil {
		response.Success(c, http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	backends, err := h.pinger.Ping(ctx)
	if len(backends) > 0 {
		body["backends"] = backends
	}
	if err != nil {
		h.log.Warn().Err(err).Msg("Health check failed")
		body["status"] = "degraded"
		response.Success(c, http.StatusServiceUnavailable, body)
		return
	}
	response.Success(c, http.StatusOK, body)
}

// ---------- SSE Endpoint ----------

type systemMetrics struct {
	Timestamp int64          `json:"timestamp"`
	Uptime    string         `json:"uptime"`
	Store     string         `json:"store"`
	Host      hostMetrics    `json:"host"`
	Runtime   runtimeMetrics `json:"runtime"`

	// Score queue, nil when score history is disabled.
	QueueScores *int64 `json:"queue_scores"`
}

type hostMetrics struct {
	CPUModel   string     `json:"cpu_model"`
	CPUPercent float64    `json:"cpu_percent"`
	Memory     usage      `json:"memory"`
	Disk       usage      `json:"disk"`
	LoadAvg    [3]float64 `json:"load_avg"`
}

type usage struct {
	UsedBytes  uint64  `json:"used_bytes"`
	TotalBytes uint64  `json:"total_bytes"`
	Percent    float64 `json:"percent"`
}

func newUsage(total, free uint64) usage {
	if total == 0 || free > total {
		return usage{}
	}
	used := total - free
	return usage{UsedBytes: used, TotalBytes: total, Percent: float64(used) / float64(total) * 100}
}

type runtimeMetrics struct {
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	Sys        uint64 `json:"sys"`
	StackInuse uint64 `json:"stack_inuse"`
	NumGC      uint32 `json:"num_gc"`
	RSSBytes   uint64 `json:"rss_bytes"`
}

// SystemMetricsSSE godoc
// GET /api/v1/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Msg("Client connected to system metrics SSE")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	// Send immediately on connect, then every tick
	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Client disconnected from system metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	m := h.collect(c.Request.Context())
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	_, _ = c.Writer.Write([]byte("data: "))
	_, _ = c.Writer.Write(data)
	_, _ = c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	m := systemMetrics{
		Timestamp: time.Now().Unix(),
		Uptime:    formatDuration(time.Since(h.startTime)),
		Store:     h.store,
		Host: hostMetrics{
			CPUModel:   h.cpuModel,
			CPUPercent: h.cpuPercent(),
		},
		Runtime: readRuntime(),
	}

	if total, avail, err := readMemInfo(); err == nil {
		m.Host.Memory = newUsage(total, avail)
	}
	if total, free, err := readDisk("/"); err == nil {
		m.Host.Disk = newUsage(total, free)
	}
	if l1, l5, l15, err := readLoadAvg(); err == nil {
		m.Host.LoadAvg = [3]float64{l1, l5, l15}
	}

	if h.queue != nil {
		if depth, err := h.queue.Depth(ctx); err == nil {
			m.QueueScores = &depth
		}
	}
	return m
}

// cpuPercent returns host CPU usage since the previous call.
func (h *SystemHandler) cpuPercent() float64 {
	idle, total, err := readCPUStat()
	if err != nil {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if total <= h.prevTotal {
		return 0
	}
	busy := 1 - float64(idle-h.prevIdle)/float64(total-h.prevTotal)
	h.prevIdle, h.prevTotal = idle, total
	return busy * 100
}

func readRuntime() runtimeMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	rss, _ := readProcessRSS()
	return runtimeMetrics{
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		Sys:        ms.Sys,
		StackInuse: ms.StackInuse,
		NumGC:      ms.NumGC,
		RSSBytes:   rss,
	}
}

// ---------- /proc Readers ----------

// readProcStat returns the value fields of the first line of a /proc file
// whose first field equals key.
func readProcStat(path, key string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	for line := range strings.Lines(string(data)) {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == key {
			return fields[1:], nil
		}
	}
	return nil, fmt.Errorf("%s: %q not found", path, key)
}

// readProcKB reads "Name:   1234 kB" style entries, such as /proc/meminfo
// and /proc/self/status, and returns the requested ones in bytes.
func readProcKB(path string, keys ...string) (map[string]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]uint64, len(keys))
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(out) < len(keys) {
		name, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok || !slices.Contains(keys, name) {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		if len(fields) > 1 && fields[1] == "kB" {
			v *= 1024
		}
		out[name] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if _, ok := out[k]; !ok {
			return out, fmt.Errorf("%s: %q not found", path, k)
		}
	}
	return out, nil
}

// readCPUStat returns idle and total jiffies summed over all CPUs.
func readCPUStat() (idle, total uint64, err error) {
	fields, err := readProcStat("/proc/stat", "cpu")
	if err != nil {
		return 0, 0, err
	}
	if len(fields) < 4 {
		return 0, 0, errors.New("/proc/stat: short cpu line")
	}
	for i, f := range fields {
		v, _ := strconv.ParseUint(f, 10, 64)
		total += v
		// user nice system idle ...
		if i == 3 {
			idle = v
		}
	}
	return idle, total, nil
}

func readCPUModel() string {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return "Unknown"
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name, value, ok := strings.Cut(scanner.Text(), ":")
		if ok && strings.TrimSpace(name) == "model name" {
			return strings.TrimSpace(value)
		}
	}
	return "Unknown"
}

func readMemInfo() (total, available uint64, err error) {
	vals, err := readProcKB("/proc/meminfo", "MemTotal", "MemAvailable")
	if err != nil {
		return 0, 0, err
	}
	return vals["MemTotal"], vals["MemAvailable"], nil
}

func readProcessRSS() (uint64, error) {
	vals, err := readProcKB("/proc/self/status", "VmRSS")
	if err != nil {
		return 0, err
	}
	return vals["VmRSS"], nil
}

func readDisk(path string) (total, free uint64, err error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bavail * bsize, nil
}

func readLoadAvg() (load1, load5, load15 float64, err error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, 0, 0, err
	}
	_, err = fmt.Sscan(string(data), &load1, &load5, &load15)
	return load1, load5, load15, err
}

// ---------- Helpers ----------

// formatDuration renders d as "3d 4h 5m 6s", dropping leading zero units
// down to minutes.
func formatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	parts := []struct {
		n    int64
		unit string
	}{
		{secs / 86400, "d"},
		{secs / 3600 % 24, "h"},
		{secs / 60 % 60, "m"},
		{secs % 60, "s"},
	}

	var b strings.Builder
	for i, p := range parts {
		if b.Len() == 0 && p.n == 0 && i < 2 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d%s", p.n, p.unit)
	}
	return b.String()
}
