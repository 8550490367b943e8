package api

import (
	"encoding/json"
	"net/http"
	"ultrasonic-web/internal/models"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.page)
}

// handleDistance measures synchronously; the response is never cached since
// every request triggers a fresh burst.
func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	reading := s.reader.Reading()
	response := models.NewDistanceResponse(&reading)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error().Err(err).Msg("could not write distance response")
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(notFoundBody))
}
