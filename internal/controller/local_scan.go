package controller

import (
	"io"
	"net/http"
	"time"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	applog "github.com/ILYXAAA/SecretsScanner-service/internal/log"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/queue"
	"github.com/prometheus/client_golang/prometheus"
)

const maxLocalArchiveBytes = 512 << 20 // 512 MiB, generous cap on an in-memory upload

var localScanRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "secretscanner_local_scan_request_duration_ms",
	Help:    "Duration of POST /local_scan request handling in ms.",
	Buckets: prometheus.DefBuckets,
})

func init() {
	prometheus.MustRegister(localScanRequestDuration)
}

// handleLocalScan reads the archive entirely into memory before enqueueing,
// per spec.md §4.7 ("the queue item owns the bytes"). No ref resolution
// applies; the archive bytes ARE the source, skipping fetch entirely.
func (s *Service) handleLocalScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { localScanRequestDuration.Observe(float64(time.Since(start).Milliseconds())) }()

	traceID := traceIDFromContext(r)

	if err := r.ParseMultipartForm(maxLocalArchiveBytes); err != nil {
		applog.WarnRejected(s.logger, "malformed multipart body: "+err.Error(), traceID, "/local_scan", "")
		writeError(w, http.StatusBadRequest, "validation_failed", "malformed multipart body: "+err.Error())
		return
	}

	projectName := r.FormValue("project_name")
	callbackURL := r.FormValue("callback_url")
	if projectName == "" || callbackURL == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "project_name and callback_url are required")
		return
	}

	file, _, err := r.FormFile("archive")
	if err != nil {
		applog.WarnRejected(s.logger, "missing archive file: "+err.Error(), traceID, "/local_scan", projectName)
		writeError(w, http.StatusBadRequest, "validation_failed", "missing archive file")
		return
	}
	defer file.Close()

	archive, err := io.ReadAll(io.LimitReader(file, maxLocalArchiveBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "could not read archive: "+err.Error())
		return
	}
	if len(archive) > maxLocalArchiveBytes {
		writeError(w, http.StatusBadRequest, "validation_failed", "archive exceeds maximum upload size")
		return
	}

	job := entity.ScanJob{
		ProjectName:  projectName,
		CallbackURL:  callbackURL,
		LocalArchive: archive,
	}

	s.enqueueOrReject(w, traceID, "/local_scan", queue.LocalItem(job), projectName)
}
