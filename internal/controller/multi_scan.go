package controller

import (
	"net/http"
	"time"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	applog "github.com/ILYXAAA/SecretsScanner-service/internal/log"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/queue"
	"github.com/prometheus/client_golang/prometheus"
)

var multiScanRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "secretscanner_multi_scan_request_duration_ms",
	Help:    "Duration of POST /multi_scan request handling in ms.",
	Buckets: prometheus.DefBuckets,
})

func init() {
	prometheus.MustRegister(multiScanRequestDuration)
}

// handleMultiScan validates every item in the batch and resolves every ref
// synchronously before enqueueing, so a single bad ref anywhere in the batch
// rejects the whole request rather than letting a partially-resolved batch
// into the queue.
func (s *Service) handleMultiScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { multiScanRequestDuration.Observe(float64(time.Since(start).Milliseconds())) }()

	traceID := traceIDFromContext(r)

	var req multiScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(r.Context()); err != nil {
		applog.WarnRejected(s.logger, "invalid multi_scan request: "+err.Error(), traceID, "/multi_scan", "")
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	jobs := make([]entity.ScanJob, len(req.Items))
	for i, item := range req.Items {
		job := item.toJob()
		if !s.resolveOrReject(w, r.Context(), traceID, "/multi_scan", &job) {
			return
		}
		jobs[i] = job
	}

	s.enqueueOrReject(w, traceID, "/multi_scan", queue.MultiItem(entity.MultiScanJob{Items: jobs}), "multi_scan")
}
