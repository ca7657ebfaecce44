// Package api serves jobly's REST endpoints.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/thomurie/jobly/internal/auth"
	"github.com/thomurie/jobly/internal/repository"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Connect(ctx context.Context) error
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Jobs   *repository.JobStore
	Users  *repository.UserStore
	Tokens *auth.Issuer
	DB     Pinger
	Logger *slog.Logger
}

type APIServer struct {
	addr   string
	deps   Deps
	logger *slog.Logger
}

func NewAPIServer(addr string, deps Deps) *APIServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &APIServer{
		addr:   addr,
		deps:   deps,
		logger: logger,
	}
}

type wrappedWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (w *wrappedWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}

	w.ResponseWriter.WriteHeader(statusCode)
	w.statusCode = statusCode
	w.headerWritten = true
}

func (w *wrappedWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Access names who may call a route.
type Access string

const (
	AccessPublic      Access = "public"
	AccessAdmin       Access = "admin"
	AccessAdminOrSelf Access = "admin or same user"
)

// Route describes one endpoint.
type Route struct {
	Method  string
	Path    string
	Access  Access
	Summary string
	Handler http.HandlerFunc
}

// Routes returns the endpoint table in registration order.
func (s *APIServer) Routes() []Route {
	return []Route{
		{"GET", "/health", AccessPublic, "Service and database health", s.HealthCheck},
		{"POST", "/auth/token", AccessPublic, "Exchange credentials for a token", s.Token},
		{"POST", "/auth/register", AccessPublic, "Register a non-admin user", s.Register},
		{"GET", "/jobs", AccessPublic, "List jobs, filtered by title, minSalary and hasEquity", s.ListJobs},
		{"POST", "/jobs", AccessAdmin, "Create a job", s.CreateJob},
		{"GET", "/jobs/{id:[0-9]+}", AccessPublic, "Get a job", s.GetJob},
		{"PATCH", "/jobs/{id:[0-9]+}", AccessAdmin, "Partially update a job", s.UpdateJob},
		{"DELETE", "/jobs/{id:[0-9]+}", AccessAdmin, "Delete a job", s.DeleteJob},
		{"POST", "/users", AccessAdmin, "Create a user, possibly an admin", s.CreateUser},
		{"GET", "/users", AccessAdmin, "List users", s.ListUsers},
		{"GET", "/users/{username}", AccessAdminOrSelf, "Get a user and their applications", s.GetUser},
		{"PATCH", "/users/{username}", AccessAdminOrSelf, "Partially update a user", s.UpdateUser},
		{"DELETE", "/users/{username}", AccessAdminOrSelf, "Delete a user", s.DeleteUser},
		{"POST", "/users/{username}/jobs/{id:[0-9]+}", AccessAdminOrSelf, "Apply to a job", s.ApplyToJob},
	}
}

func (s *APIServer) guard(access Access, h http.HandlerFunc) http.HandlerFunc {
	switch access {
	case AccessAdmin:
		return s.ensureAdmin(h)
	case AccessAdminOrSelf:
		return s.ensureAdminOrSameUser(h)
	default:
		return h
	}
}

// Handler returns the routed handler with all middleware applied.
func (s *APIServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, s.logger, repository.NewNotFoundError("route", r.URL.Path))
	})

	for _, route := range s.Routes() {
		router.HandleFunc(route.Path, s.guard(route.Access, route.Handler)).Methods(route.Method)
	}

	middlewareChain := MiddlwareChain(
		RequestIDMiddleware,
		s.RequestLoggerMiddleware,
		s.AuthenticateMiddleware,
	)

	return middlewareChain(router)
}

// Run serves until ctx is cancelled, then shuts down within shutdownTimeout.
func (s *APIServer) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server has started", "addr", s.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	claimsKey
)

// RequestIDFrom returns the request id assigned by RequestIDMiddleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func RequestIDMiddleware(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	}
}

func (s *APIServer) RequestLoggerMiddleware(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &wrappedWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Try X-Forwarded-For (contains a comma-separated list of IPs)
		ip := r.RemoteAddr
		if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
			// Get first IP in the list (client's original IP)
			ips := strings.Split(xForwardedFor, ",")
			ip = strings.TrimSpace(ips[0])
		}

		next.ServeHTTP(wrapped, r)

		level := slog.LevelInfo
		if wrapped.statusCode >= 500 {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"ip", ip,
			"duration", time.Since(start),
			"request_id", RequestIDFrom(r.Context()),
		)
	}
}

type Middleware func(http.Handler) http.HandlerFunc

func MiddlwareChain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}

		return next.ServeHTTP
	}
}
