package transport

import (
	"net/http"
	"strings"
)

// handleTest runs the stored fixture named by the path and answers with its
// verdict. Requests rejected before the run carry the matching error status
// and a FAILURE verdict explaining why.
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		id = strings.Trim(strings.TrimPrefix(r.URL.Path, "/execute-test/"), "/")
	}

	verdict, err := s.executor.RunTest(r.Context(), id, bearerToken(r.Header.Get("Authorization")))
	if err != nil {
		s.logger.Info(r.Context(), "test rejected", "test_id", id, "error", err)
		writeJSON(w, statusFor(err), verdict)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}
