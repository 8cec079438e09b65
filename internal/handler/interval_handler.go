package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/globalenglish-api/internal/dto"
	"github.com/noah-isme/globalenglish-api/internal/models"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
	"github.com/noah-isme/globalenglish-api/pkg/response"
)

type intervalCloser interface {
	Close(ctx context.Context, id string, req dto.CloseIntervalRequest) (*models.IntervalRow, error)
}

// IntervalHandler closes any kind of assignment interval.
type IntervalHandler struct {
	closers map[models.IntervalKind]intervalCloser
}

// NewIntervalHandler maps each interval kind to the service that owns it.
func NewIntervalHandler(schedules, tutors, students intervalCloser) *IntervalHandler {
	return &IntervalHandler{closers: map[models.IntervalKind]intervalCloser{
		models.IntervalClassroomSchedule: schedules,
		models.IntervalTutor:             tutors,
		models.IntervalStudent:           students,
	}}
}

// Close godoc
// @Summary Close an assignment interval
// @Tags Intervals
// @Accept json
// @Produce json
// @Param kind path string true "classroom-schedule, tutor or student"
// @Param id path string true "Assignment ID"
// @Param payload body dto.CloseIntervalRequest false "End date (defaults to today)"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /intervals/{kind}/{id}/close [put]
func (h *IntervalHandler) Close(c *gin.Context) {
	kind := models.IntervalKind(c.Param("kind"))
	closer, ok := h.closers[kind]
	if !kind.Valid() || !ok || closer == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown interval kind %q", kind)))
		return
	}
	var req dto.CloseIntervalRequest
	if !bindOptionalJSON(c, &req, "invalid close payload") {
		return
	}
	row, err := closer.Close(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}
