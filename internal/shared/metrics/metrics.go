package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	uploadsCompletedTotal  atomic.Uint64
	uploadsConflictTotal   atomic.Uint64
	dispatchSentTotal      atomic.Uint64
	dispatchDegradedTotal  atomic.Uint64
	jobsStatusUpdatedTotal atomic.Uint64

	completionDuration = newHistogram([]float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

// IncUploadCompleted increments the completed-uploads counter.
func IncUploadCompleted() {
	uploadsCompletedTotal.Add(1)
}

// IncUploadConflict increments the duplicate-key conflict counter.
func IncUploadConflict() {
	uploadsConflictTotal.Add(1)
}

// IncDispatchSent increments the queue-dispatch success counter.
func IncDispatchSent() {
	dispatchSentTotal.Add(1)
}

// IncDispatchDegraded increments the degraded-dispatch counter.
func IncDispatchDegraded() {
	dispatchDegradedTotal.Add(1)
}

// IncJobStatusUpdated increments the job status-update counter.
func IncJobStatusUpdated() {
	jobsStatusUpdatedTotal.Add(1)
}

// ObserveCompletionDurationMs records an upload-completion duration in milliseconds.
func ObserveCompletionDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	completionDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "uploads_completed_total", "Total upload completions persisted", uploadsCompletedTotal.Load())
	writeCounter(&buf, "uploads_conflict_total", "Total upload completions rejected as duplicates", uploadsConflictTotal.Load())
	writeCounter(&buf, "dispatch_sent_total", "Total processing messages dispatched", dispatchSentTotal.Load())
	writeCounter(&buf, "dispatch_degraded_total", "Total completions that degraded on dispatch failure", dispatchDegradedTotal.Load())
	writeCounter(&buf, "jobs_status_updated_total", "Total job status updates applied", jobsStatusUpdatedTotal.Load())
	writeHistogram(&buf, "upload_completion_duration_ms", "Upload completion duration in milliseconds", completionDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
