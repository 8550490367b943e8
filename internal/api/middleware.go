package api

import (
	"github.com/rs/zerolog/hlog"
	"net/http"
	"time"
)

const requestIDHeader = "X-Request-Id"

// logRequests attaches the server logger to each request, tags it with a
// request id echoed in the response headers, and writes one access line.
// Failed requests log at info, the rest at debug.
func (s *Server) logRequests(next http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		l := hlog.FromRequest(r)
		event := l.Debug()
		if status >= http.StatusBadRequest {
			event = l.Info()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", size).
			Dur("duration", duration).
			Msg("handled request")
	})

	h := access(next)
	h = hlog.RemoteAddrHandler("remote")(h)
	h = hlog.RequestIDHandler("request_id", requestIDHeader)(h)
	return hlog.NewHandler(s.logger)(h)
}
