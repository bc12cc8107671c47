package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	applog "github.com/ILYXAAA/SecretsScanner-service/internal/log"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/queue"
	"github.com/prometheus/client_golang/prometheus"
)

var scanRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "secretscanner_scan_request_duration_ms",
	Help:    "Duration of POST /scan request handling in ms.",
	Buckets: prometheus.DefBuckets,
})

func init() {
	prometheus.MustRegister(scanRequestDuration)
}

// handleScan validates the request body, resolves the ref synchronously
// against C4, then enqueues a single_scan item. A ref that does not exist is
// rejected with 400 validation_failed and never reaches the queue.
func (s *Service) handleScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { scanRequestDuration.Observe(float64(time.Since(start).Milliseconds())) }()

	traceID := traceIDFromContext(r)

	var req scanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(r.Context()); err != nil {
		applog.WarnRejected(s.logger, "invalid scan request: "+err.Error(), traceID, "/scan", req.ProjectName)
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	job := req.toJob()
	if !s.resolveOrReject(w, r.Context(), traceID, "/scan", &job) {
		return
	}

	s.enqueueOrReject(w, traceID, "/scan", queue.SingleItem(job), job.ProjectName)
}

// resolveOrReject synchronously resolves job's ref via C4, writing 400
// validation_failed and returning false if the ref doesn't exist or
// resolution itself failed.
func (s *Service) resolveOrReject(w http.ResponseWriter, ctx context.Context, traceID, path string, job *entity.ScanJob) bool {
	exists, commitID, message, err := s.resolver.ResolveRef(ctx, traceID, job.RepoURL, job.RefType, job.Ref)
	if err != nil {
		applog.WarnRejected(s.logger, "ref resolution error: "+err.Error(), traceID, path, job.ProjectName)
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	if !exists {
		applog.WarnRejected(s.logger, "ref does not exist: "+message, traceID, path, job.ProjectName)
		writeError(w, http.StatusBadRequest, "validation_failed", message)
		return false
	}
	job.CommitID = commitID
	return true
}

// enqueueOrReject pushes item onto the queue, writing 429 queue_full if
// back-pressure rejects it.
func (s *Service) enqueueOrReject(w http.ResponseWriter, traceID, path string, item queue.Item, project string) {
	if err := s.queue.Enqueue(project, item); err != nil {
		applog.WarnRejected(s.logger, "queue full", traceID, path, project)
		writeError(w, http.StatusTooManyRequests, "queue_full", err.Error())
		return
	}
	applog.InfoRequest(s.logger, "job accepted", traceID, path, project)
	writeJSON(w, http.StatusOK, acceptedResponse{Status: "accepted"})
}
