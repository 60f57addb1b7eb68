// Package metrics exposes prometheus counters for the paper lifecycle and a
// standalone metrics server.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the lifecycle counters. A nil *Metrics is accepted by all
// consumers and disables instrumentation.
type Metrics struct {
	PapersSealed     prometheus.Counter
	PapersRedeemed   prometheus.Counter
	SharesSubmitted  prometheus.Counter
	QuorumReached    prometheus.Counter
	AnchorsConfirmed prometheus.Counter
	AnchorsFailed    prometheus.Counter
	AnchorRetries    prometheus.Counter
	Verifications    *prometheus.CounterVec
}

// New registers the lifecycle counters on a fresh registry and returns both.
func New(namespace string) (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		PapersSealed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_sealed_total",
			Help:      "Papers encrypted and split for distribution.",
		}),
		PapersRedeemed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_redeemed_total",
			Help:      "Papers decrypted after quorum.",
		}),
		SharesSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_submitted_total",
			Help:      "Valid custodian share submissions.",
		}),
		QuorumReached: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quorum_reached_total",
			Help:      "Papers whose submission count reached the threshold.",
		}),
		AnchorsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anchors_confirmed_total",
			Help:      "Digest anchors confirmed by the integrity ledger.",
		}),
		AnchorsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anchors_failed_total",
			Help:      "Digest anchors that exhausted their retry budget.",
		}),
		AnchorRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anchor_retries_total",
			Help:      "Transient anchor submission failures that were retried.",
		}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Integrity verifications by outcome.",
		}, []string{"outcome"}),
	}

	return m, registry
}

// Server serves the prometheus registry over HTTP on its own listener.
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics server for the given registry.
func NewServer(listenAddr string, registry *prometheus.Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &Server{
		srv: &http.Server{
			Addr:    listenAddr,
			Handler: mux,
		},
	}
}

// ListenAndServe blocks serving metrics until Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
