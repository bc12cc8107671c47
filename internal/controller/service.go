// Package controller implements the HTTP Surface (C7): a thin net/http
// adapter that validates requests, resolves refs synchronously, and enqueues
// jobs onto the Job Queue. It never performs scan work on the request-
// handling goroutine (spec.md §4.7).
package controller

import (
	"context"
	"net/http"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/queue"
	"go.uber.org/zap"
)

// RefResolver is the subset of fetch.Client the controller needs for
// synchronous ref validation before enqueue.
type RefResolver interface {
	ResolveRef(ctx context.Context, traceID, repoURL string, refType entity.RefType, ref string) (exists bool, commitID, message string, err error)
}

// QueueClient is the subset of *queue.Queue the controller needs.
type QueueClient interface {
	Enqueue(project string, item queue.Item) error
	Depth() int
	MaxWorkers() int
	ActiveWorkers() int
}

// Service wires the HTTP handlers to their collaborators and exposes a
// http.Handler via Router.
type Service struct {
	logger   *zap.Logger
	queue    QueueClient
	resolver RefResolver
	apiKey   string
}

// New builds a Service ready to be mounted with Router.
func New(logger *zap.Logger, queueClient QueueClient, resolver RefResolver, apiKey string) *Service {
	return &Service{logger: logger, queue: queueClient, resolver: resolver, apiKey: apiKey}
}

// Router builds the mux for every C7 endpoint, wrapped with the API-key
// middleware.
func (s *Service) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scan", s.handleScan)
	mux.HandleFunc("POST /multi_scan", s.handleMultiScan)
	mux.HandleFunc("POST /local_scan", s.handleLocalScan)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Config I/O is out of core scope (spec.md §6); these stubs exist so the
	// contracted paths resolve to something other than 404.
	mux.HandleFunc("GET /rules", s.handleConfigStub)
	mux.HandleFunc("POST /rules", s.handleConfigStub)
	mux.HandleFunc("GET /excluded-files", s.handleConfigStub)
	mux.HandleFunc("POST /excluded-files", s.handleConfigStub)
	mux.HandleFunc("GET /excluded-extensions", s.handleConfigStub)
	mux.HandleFunc("POST /excluded-extensions", s.handleConfigStub)
	mux.HandleFunc("GET /false-positive", s.handleConfigStub)
	mux.HandleFunc("POST /false-positive", s.handleConfigStub)

	return s.withAPIKey(withTracing(mux))
}
