package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/globalenglish-api/internal/models"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
	"github.com/noah-isme/globalenglish-api/pkg/middleware/requestid"
)

// observeAssignment logs and counts the outcome of an engine operation.
func observeAssignment(ctx context.Context, logger *zap.Logger, metrics *MetricsService, operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	fields := []zap.Field{zap.String("operation", operation)}
	if id := requestid.FromContext(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Status < 500 {
			outcome = OutcomeRejected
			fields = append(fields, zap.String("code", appErr.Code), zap.String("reason", appErr.Message))
			if rejection, ok := appErr.Details.(*models.AssignmentRejection); ok {
				for k, v := range rejection.EntityIDs {
					fields = append(fields, zap.String(k, v))
				}
			}
			logger.Info("assignment rejected", fields...)
		} else {
			outcome = OutcomeError
			logger.Error("assignment failed", append(fields, zap.Error(err))...)
		}
	}
	metrics.ObserveAssignment(operation, outcome, time.Since(started))
}
