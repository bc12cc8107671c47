package controller

import "net/http"

// handleHealth reports the live queue depth, configured worker count, and
// currently-executing job count (spec.md §6).
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		QueueSize:     s.queue.Depth(),
		MaxWorkers:    s.queue.MaxWorkers(),
		ActiveWorkers: s.queue.ActiveWorkers(),
	})
}
