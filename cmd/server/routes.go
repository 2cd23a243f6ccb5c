package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Router builds the HTTP routes of the daemon
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/status", s.handleStatus)

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimit)
		}

		r.Get("/wallets", s.handleWallets)
		r.Get("/wallets/{chain}", s.handleWallet)

		r.Get("/explorer/tx/{chain}/{hash}", s.handleExplorerTx)
		r.Get("/explorer/address/{chain}/{address}", s.handleExplorerAddress)
		r.Get("/validate/{chain}/{address}", s.handleValidate)

		r.Post("/swap", s.handleSwap)
		r.Post("/approve", s.handleApprove)
		r.Post("/approved", s.handleIsApproved)
	})

	return r
}

// logRequests logs every request and counts it by route pattern
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequest(route, status)

		logrus.WithFields(logrus.Fields{
			"method":     r.Method,
			"route":      route,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("Request served")
	})
}

// rateLimit rejects requests above the configured rate
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
