package controller

import "net/http"

// handleConfigStub answers the config-I/O family of endpoints (rules,
// exclusion lists, false-positive substrings), explicitly out of core scope
// per spec.md §6. It exists so the contracted paths resolve rather than 404,
// without committing to an editing API the spec never describes.
func (s *Service) handleConfigStub(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "not_implemented", "configuration I/O is served by the operator's file-based deployment, not this API")
}
