// Package metrics exposes Prometheus instrumentation for the prospect service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Evaluation kinds recorded by IncEvaluation
const (
	KindProbability = "probability"
	KindComparison  = "comparison"
	KindRankings    = "rankings"
)

// Fetch outcomes recorded by ObserveRosterFetch
const (
	OutcomeSuccess = "success"
	OutcomeCached  = "cached"
	OutcomeError   = "error"
)

// Metrics decouples callers from the Prometheus implementation
type Metrics interface {
	IncEvaluation(kind string)
	ObserveRosterFetch(league, outcome string, seconds float64)
	SetRosterSize(league string, n int)
	SetWSClients(n int)
}

var _ Metrics = (*Service)(nil)

// Service holds the registered collectors
type Service struct {
	Evaluations   *prometheus.CounterVec
	RosterFetches *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	RosterSize    *prometheus.GaugeVec
	WSClients     prometheus.Gauge
}

// NewService creates and registers the collectors.
// If no registerer is provided, the default Prometheus registerer is used.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prospect_evaluations_total",
			Help: "Evaluations served, by kind.",
		}, []string{"kind"}),
		RosterFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prospect_roster_fetch_total",
			Help: "Roster loads, by league and outcome.",
		}, []string{"league", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prospect_roster_fetch_duration_seconds",
			Help:    "Time spent loading a league roster.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"league"}),
		RosterSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "prospect_roster_size",
			Help: "Records in the current roster snapshot.",
		}, []string{"league"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prospect_ws_clients",
			Help: "Connected websocket sessions.",
		}),
	}

	reg.MustRegister(s.Evaluations, s.RosterFetches, s.FetchDuration, s.RosterSize, s.WSClients)
	return s
}

func (s *Service) IncEvaluation(kind string) {
	s.Evaluations.WithLabelValues(kind).Inc()
}

func (s *Service) ObserveRosterFetch(league, outcome string, seconds float64) {
	s.RosterFetches.WithLabelValues(league, outcome).Inc()
	s.FetchDuration.WithLabelValues(league).Observe(seconds)
}

func (s *Service) SetRosterSize(league string, n int) {
	s.RosterSize.WithLabelValues(league).Set(float64(n))
}

func (s *Service) SetWSClients(n int) {
	s.WSClients.Set(float64(n))
}

// NewHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}
