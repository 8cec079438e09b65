package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

func TestObserveAssignmentOutcomes(t *testing.T) {
	metrics := NewMetricsService()
	logger := zap.NewNop()
	ctx := context.Background()

	observeAssignment(ctx, logger, metrics, "assign_tutor", time.Now(), nil)
	observeAssignment(ctx, logger, metrics, "assign_tutor", time.Now(), appErrors.Clone(appErrors.ErrAlreadyOccupied, "busy"))
	observeAssignment(ctx, logger, metrics, "assign_tutor", time.Now(), internalError(errors.New("db down"), "failed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.assignmentTotal.WithLabelValues("assign_tutor", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.assignmentTotal.WithLabelValues("assign_tutor", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.assignmentTotal.WithLabelValues("assign_tutor", OutcomeError)))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "cache_hits_total 1")

	var nilMetrics *MetricsService
	nilMetrics.ObserveAssignment("close_student", OutcomeSuccess, time.Second)
	rec = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
