package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/gridboard/pkg/board"
)

// Request headers identifying the caller.
const (
	HeaderUserID    = "X-User-ID"
	HeaderSessionID = "X-Session-ID"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	userKey
	sessionKey
)

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// userFromContext returns the caller's user ID.
func userFromContext(ctx context.Context) string {
	if u, ok := ctx.Value(userKey).(string); ok && u != "" {
		return u
	}
	return board.DefaultUser
}

// sessionFromContext returns the caller's session ID.
func sessionFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sessionKey).(string)
	return s
}

// requestLogger attaches a request-scoped logger and logs each request once
// it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := s.logger.With(
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), l)))
		l.Debug("request", "status", ww.Status(), "duration", time.Since(start).Round(time.Microsecond))
	})
}

// identity resolves the user and session from the request headers. A
// request without a session gets a fresh one, echoed in the response.
func identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get(HeaderUserID)
		if user == "" {
			user = board.DefaultUser
		}
		session := r.Header.Get(HeaderSessionID)
		if session == "" {
			session = r.URL.Query().Get("session")
		}
		if session == "" {
			session = uuid.NewString()
		}
		w.Header().Set(HeaderSessionID, session)

		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
