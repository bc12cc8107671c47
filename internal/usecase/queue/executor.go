package queue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	applog "github.com/ILYXAAA/SecretsScanner-service/internal/log"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/catalog"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/classifier"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/courier"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/fetch"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/scanner"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps bundles every collaborator an executor needs to run a queue item to
// completion. Built once in app wiring and shared by every dispatcher.
type Deps struct {
	Logger     *zap.Logger
	Catalog    *catalog.Catalog
	Classifier *classifier.Classifier
	Fetcher    *fetch.Client
	Courier    *courier.Client
	ScanOpts   scanner.Options
	TempDir    string
}

// executor runs queue items against the pools and deps of one Queue.
type executor struct {
	deps  Deps
	pools *pools
}

// run dispatches item to the phase pipeline matching its Kind, per spec.md
// §4.5. Errors are delivered to the job's callback, never returned to the
// dispatcher loop, since a queue item is fire-and-forget once popped.
func (e *executor) run(ctx context.Context, item Item) {
	switch item.Kind {
	case KindSingle:
		e.runSingle(ctx, item.Job, false)
	case KindLocal:
		e.runSingle(ctx, item.Job, true)
	case KindMulti:
		e.runMulti(ctx, item.Multi)
	}
}

// runSingle executes the fetch/extract -> scan+classify -> cleanup ->
// deliver pipeline for one job. local suppresses ref resolution and the
// network fetch, substituting in-memory archive extraction instead.
func (e *executor) runSingle(ctx context.Context, job entity.ScanJob, local bool) {
	traceID := newTraceID()
	applog.InfoDispatch(e.deps.Logger, "starting job", job.ProjectName, string(kindOf(local)))

	report, errReport := e.execute(ctx, traceID, &job, local)
	e.deliver(ctx, job, report, errReport)
}

// runMulti executes a batch strictly sequentially: item N+1 only starts once
// item N has fully completed (scan, classify, deliver, cleanup), but the
// whole batch occupies a single queue slot so other top-level jobs still run
// concurrently with it.
func (e *executor) runMulti(ctx context.Context, multi entity.MultiScanJob) {
	for i := range multi.Items {
		job := multi.Items[i]
		traceID := newTraceID()
		applog.InfoDispatch(e.deps.Logger, "starting multi-scan item", job.ProjectName, "multi_scan")

		report, errReport := e.execute(ctx, traceID, &job, job.IsLocal())
		e.deliver(ctx, job, report, errReport)
		// continue past a failed item; each item gets its own callback.
	}
}

func kindOf(local bool) Kind {
	if local {
		return KindLocal
	}
	return KindSingle
}

// execute runs the fetch/scan/classify phases for one job, returning exactly
// one of (report, nil) on success or (nil, errReport) on failure.
func (e *executor) execute(ctx context.Context, traceID string, job *entity.ScanJob, local bool) (*entity.ScanReport, *entity.ErrorReport) {
	scratchDir := filepath.Join(e.deps.TempDir, "scan-"+uuid.NewString())
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		msg := fmt.Sprintf("could not allocate scratch directory: %v", err)
		er := entity.NewErrorReport(msg)
		return nil, &er
	}
	defer e.cleanup(scratchDir)

	var root string
	var err error
	if local {
		root, err = runOn(e.pools.io, func() ioResult {
			r, err := e.deps.Fetcher.ExtractLocalArchive(job.LocalArchive, scratchDir)
			return ioResult{path: r, err: err}
		}).unwrap()
	} else {
		root, err = e.fetchRemote(ctx, traceID, job, scratchDir)
	}
	if err != nil {
		applog.ErrorFetch(e.deps.Logger, err, "fetch phase failed", traceID, job.RepoURL, job.CommitID)
		msg := fmt.Sprintf("fetch failed: %v", err)
		er := entity.NewErrorReport(msg)
		return nil, &er
	}

	report, err := runOn(e.pools.cpu, func() cpuResult {
		r, err := e.scanAndClassify(ctx, traceID, job, root)
		return cpuResult{report: r, err: err}
	}).unwrap()
	if err != nil {
		applog.ErrorScan(e.deps.Logger, err, "scan phase failed", traceID, job.ProjectName)
		msg := fmt.Sprintf("scan failed: %v", err)
		er := entity.NewErrorReport(msg)
		return nil, &er
	}

	return report, nil
}

type ioResult struct {
	path string
	err  error
}

func (r ioResult) unwrap() (string, error) { return r.path, r.err }

type cpuResult struct {
	report *entity.ScanReport
	err    error
}

func (r cpuResult) unwrap() (*entity.ScanReport, error) { return r.report, r.err }

// fetchRemote downloads and extracts the archive at job.CommitID, the commit
// id the controller already resolved and validated before enqueue (spec.md
// §4.5's single_scan(ScanJob, commit_id) item shape). It never re-resolves
// the ref: doing so would risk fetching a different commit than the one
// that was validated and will be reported, if the ref moves in between.
func (e *executor) fetchRemote(ctx context.Context, traceID string, job *entity.ScanJob, scratchDir string) (string, error) {
	root, err := runOn(e.pools.io, func() ioResult {
		r, err := e.deps.Fetcher.FetchArchive(ctx, traceID, job.RepoURL, job.CommitID, scratchDir)
		return ioResult{path: r, err: err}
	}).unwrap()
	return root, err
}

// scanAndClassify walks root with the Rule Catalog and runs classification
// over the resulting findings, assembling the final report. Runs inside the
// CPU pool since both stages are compute-bound.
func (e *executor) scanAndClassify(ctx context.Context, traceID string, job *entity.ScanJob, root string) (*entity.ScanReport, error) {
	result, err := scanner.Scan(ctx, e.deps.Catalog, root, e.deps.ScanOpts, func(filesScanned, total int) {
		applog.InfoScan(e.deps.Logger, "scan progress", traceID, job.ProjectName, filesScanned)
	})
	if err != nil {
		return nil, err
	}

	findings := e.deps.Classifier.Classify(result.Findings)
	applog.InfoClassify(e.deps.Logger, "classification complete", traceID, len(findings))

	return &entity.ScanReport{
		Status:        entity.StatusCompleted,
		ProjectName:   job.ProjectName,
		RepoURL:       job.RepoURL,
		CommitID:      job.CommitID,
		Findings:      findings,
		FilesScanned:  result.FilesScanned,
		FilesExcluded: result.FilesExcluded,
		Languages:     result.Languages,
		Frameworks:    result.Frameworks,
	}, nil
}

// deliver sends whichever of report/errReport is non-nil to the job's
// callback URL, inside the I/O pool. The courier client itself logs the
// critical-exhaustion case; there is nothing durable to queue on top.
func (e *executor) deliver(ctx context.Context, job entity.ScanJob, report *entity.ScanReport, errReport *entity.ErrorReport) {
	runOn(e.pools.io, func() struct{} {
		if report != nil {
			_ = e.deps.Courier.Deliver(ctx, job.ProjectName, job.CallbackURL, report)
		} else {
			_ = e.deps.Courier.DeliverError(ctx, job.ProjectName, job.CallbackURL, errReport.Message)
		}
		return struct{}{}
	})
}

func (e *executor) cleanup(scratchDir string) {
	if err := os.RemoveAll(scratchDir); err != nil {
		applog.ErrorCleanup(e.deps.Logger, err, scratchDir)
	}
}

func newTraceID() string {
	return uuid.NewString()
}
