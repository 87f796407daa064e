package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tunelink/internal/core"
)

type Server struct {
	config  core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

// Metrics implements core.MetricsRecorder.
type Metrics struct {
	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	UpdatesTotal       *prometheus.CounterVec
}

func NewServer(config core.ServerConfig, logger *zap.Logger) *Server {
	metrics := newMetrics(prometheus.DefaultRegisterer)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      newMux(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func newMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunelink_conversions_total",
				Help: "Total number of link conversions by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		ConversionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tunelink_conversion_duration_seconds",
				Help:    "Time spent converting links",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tunelink_cache_hits_total",
				Help: "Total number of conversion cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tunelink_cache_misses_total",
				Help: "Total number of conversion cache misses",
			},
		),
		UpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunelink_telegram_updates_total",
				Help: "Total number of Telegram updates by kind",
			},
			[]string{"kind"},
		),
	}

	registerer.MustRegister(
		metrics.ConversionsTotal,
		metrics.ConversionDuration,
		metrics.CacheHitsTotal,
		metrics.CacheMissesTotal,
		metrics.UpdatesTotal,
	)

	return metrics
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"tunelink"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"tunelink"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

// RecordConversion counts a finished conversion. Duration is only observed
// for resolved directions so unsupported links don't skew the histogram.
func (m *Metrics) RecordConversion(direction string, outcome core.Outcome, duration time.Duration) {
	m.ConversionsTotal.WithLabelValues(direction, string(outcome)).Inc()
	if direction != core.DirectionUnknown {
		m.ConversionDuration.WithLabelValues(direction).Observe(duration.Seconds())
	}
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// RecordUpdate counts an incoming Telegram update by kind ("message",
// "inline_query", "command").
func (m *Metrics) RecordUpdate(kind string) {
	m.UpdatesTotal.WithLabelValues(kind).Inc()
}
