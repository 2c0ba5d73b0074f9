// Package metrics counts authentication operations by origin and outcome.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder receives one event per orchestrated operation.
type Recorder interface {
	// Operation records that op finished with outcome, served by origin.
	Operation(op, origin, outcome string)
	// Fallback records that op was redirected to the local store.
	Fallback(op string)
}

// Nop returns a Recorder that records nothing.
func Nop() Recorder { return nopRecorder{} }

type nopRecorder struct{}

func (nopRecorder) Operation(string, string, string) {}
func (nopRecorder) Fallback(string)                  {}

// Prometheus is a Recorder backed by Prometheus counters.
type Prometheus struct {
	reg        *prometheus.Registry
	operations *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
}

// NewPrometheus registers the counters on a fresh registry.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Prometheus{
		reg: reg,
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eden",
			Subsystem: "auth",
			Name:      "operations_total",
			Help:      "Authentication operations by backing store and outcome.",
		}, []string{"operation", "origin", "outcome"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eden",
			Subsystem: "auth",
			Name:      "fallbacks_total",
			Help:      "Operations redirected to the on-device store because the remote service was unavailable.",
		}, []string{"operation"}),
	}
}

func (p *Prometheus) Operation(op, origin, outcome string) {
	p.operations.WithLabelValues(op, origin, outcome).Inc()
}

func (p *Prometheus) Fallback(op string) {
	p.fallbacks.WithLabelValues(op).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

// Serve exposes Handler on addr under /metrics until ctx is done.
func (p *Prometheus) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
