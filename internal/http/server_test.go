package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"tunelink/internal/core"
)

func TestHealthEndpoints(t *testing.T) {
	mux := newMux()

	tests := []struct {
		path     string
		contains string
	}{
		{"/healthz", `"status":"ok"`},
		{"/readyz", `"status":"ready"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestMetrics_RecordConversion(t *testing.T) {
	metrics := newMetrics(prometheus.NewRegistry())

	metrics.RecordConversion("spotify_to_youtube_music", core.OutcomeOK, 120*time.Millisecond)
	metrics.RecordConversion("spotify_to_youtube_music", core.OutcomeOK, 80*time.Millisecond)
	metrics.RecordConversion("unknown", core.OutcomeUnsupported, time.Millisecond)

	ok := testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("spotify_to_youtube_music", "ok"))
	if ok != 2 {
		t.Errorf("conversions ok = %f, want 2", ok)
	}

	unsupported := testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("unknown", "unsupported"))
	if unsupported != 1 {
		t.Errorf("conversions unsupported = %f, want 1", unsupported)
	}
}

func TestMetrics_CacheCounters(t *testing.T) {
	metrics := newMetrics(prometheus.NewRegistry())

	metrics.RecordCacheHit()
	metrics.RecordCacheHit()
	metrics.RecordCacheMiss()

	if hits := testutil.ToFloat64(metrics.CacheHitsTotal); hits != 2 {
		t.Errorf("cache hits = %f, want 2", hits)
	}
	if misses := testutil.ToFloat64(metrics.CacheMissesTotal); misses != 1 {
		t.Errorf("cache misses = %f, want 1", misses)
	}
}

func TestMetrics_RecordUpdate(t *testing.T) {
	metrics := newMetrics(prometheus.NewRegistry())

	metrics.RecordUpdate("message")
	metrics.RecordUpdate("inline_query")
	metrics.RecordUpdate("message")

	if got := testutil.ToFloat64(metrics.UpdatesTotal.WithLabelValues("message")); got != 2 {
		t.Errorf("message updates = %f, want 2", got)
	}
}
