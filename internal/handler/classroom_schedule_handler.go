package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/globalenglish-api/internal/dto"
	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/pkg/response"
)

type classroomScheduleService interface {
	Assign(ctx context.Context, req dto.AssignClassroomSlotRequest) (*models.ClassroomScheduleAssignment, error)
	Close(ctx context.Context, id string, req dto.CloseIntervalRequest) (*models.IntervalRow, error)
	History(ctx context.Context, classroomID string) ([]models.ClassroomSlot, error)
}

// ClassroomScheduleHandler exposes classroom slot placement endpoints.
type ClassroomScheduleHandler struct {
	service classroomScheduleService
}

// NewClassroomScheduleHandler builds a new handler.
func NewClassroomScheduleHandler(service classroomScheduleService) *ClassroomScheduleHandler {
	return &ClassroomScheduleHandler{service: service}
}

// Assign godoc
// @Summary Place a schedule slot in a classroom
// @Tags ClassroomSchedules
// @Accept json
// @Produce json
// @Param payload body dto.AssignClassroomSlotRequest true "Slot placement"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classroom-schedules [post]
func (h *ClassroomScheduleHandler) Assign(c *gin.Context) {
	var req dto.AssignClassroomSlotRequest
	if !bindJSON(c, &req, "invalid classroom schedule payload") {
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Close godoc
// @Summary Close a classroom slot assignment
// @Tags ClassroomSchedules
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.CloseIntervalRequest false "End date (defaults to today)"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classroom-schedules/{id}/close [put]
func (h *ClassroomScheduleHandler) Close(c *gin.Context) {
	var req dto.CloseIntervalRequest
	if !bindOptionalJSON(c, &req, "invalid close payload") {
		return
	}
	row, err := h.service.Close(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// History godoc
// @Summary Classroom schedule history
// @Tags ClassroomSchedules
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/schedule-history [get]
func (h *ClassroomScheduleHandler) History(c *gin.Context) {
	items, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
