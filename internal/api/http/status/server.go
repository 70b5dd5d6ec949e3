package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lilycand/eldig/internal/logger"
	"github.com/lilycand/eldig/internal/service/driver"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

// Source provides the snapshot served by the handler.
type Source interface {
	Snapshot() driver.Snapshot
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

// NewHandler returns the HTTP handler. gatherer may be nil, in which case
// /metrics is not mounted.
func NewHandler(source Source, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, source.Snapshot())
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		snapshot := source.Snapshot()

		code, body := http.StatusOK, healthResponse{Status: "ok", State: snapshot.State.String()}
		if snapshot.State.IsCritical() {
			code, body.Status = http.StatusServiceUnavailable, "critical"
		}

		writeJSON(w, code, body)
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// Serve runs handler on lis until ctx is canceled.
func Serve(ctx context.Context, handler http.Handler, lis net.Listener) error {
	ctx = logger.WithName(ctx, "http-monitor")

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: shutdownTimeout,
	}

	logger.InfoKV(ctx, "HTTP monitor listening", "listen_address", lis.Addr().String())

	done := make(chan error, 1)

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP monitor")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		done <- server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP monitor: %w", err)
	}

	if err := <-done; err != nil {
		return fmt.Errorf("shutdown HTTP monitor: %w", err)
	}

	logger.Info(ctx, "HTTP monitor stopped")

	return nil
}

// writeJSON encodes body with the given status code.
func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.ErrorKV(context.Background(), "Failed to encode response", "error", err)
	}
}
