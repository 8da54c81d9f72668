package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/universidad-api/internal/service"
)

type pingerStub struct{ err error }

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func TestMetricsHandlerSummaryAndPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/inscripciones", http.StatusOK, 10*time.Millisecond)
	metrics.ObserveInscripcion("create", nil)
	handler := NewMetricsHandler(metrics, nil)

	c, w := newTestContext(http.MethodGet, "/metrics/summary", "")
	handler.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	var snapshot service.MetricsSnapshot
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &snapshot))
	assert.Equal(t, uint64(1), snapshot.RequestsTotal)
	assert.Equal(t, uint64(1), snapshot.InscripcionesCreadas)

	c, w = newTestContext(http.MethodGet, "/metrics", "")
	handler.Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "inscripcion_operations_total")
}

func TestMetricsHandlerReady(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/ready", "")
	NewMetricsHandler(nil, pingerStub{}).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/ready", "")
	NewMetricsHandler(nil, pingerStub{err: errors.New("connection refused")}).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	c, w = newTestContext(http.MethodGet, "/metrics", "")
	NewMetricsHandler(nil, nil).Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
