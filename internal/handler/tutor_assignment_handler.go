package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/globalenglish-api/internal/dto"
	"github.com/noah-isme/globalenglish-api/internal/middleware"
	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/pkg/response"
)

type tutorAssignmentService interface {
	Assign(ctx context.Context, req dto.AssignTutorRequest) (*models.TutorAssignment, error)
	Change(ctx context.Context, req dto.ChangeTutorRequest) (*models.TutorChangeResult, error)
	Close(ctx context.Context, id string, req dto.CloseIntervalRequest) (*models.IntervalRow, error)
	History(ctx context.Context, classroomID string) ([]models.TutorAssignment, error)
	Timetable(ctx context.Context, tutorID, date string) (*models.TutorTimetable, bool, error)
}

// TutorAssignmentHandler exposes tutor assignment endpoints.
type TutorAssignmentHandler struct {
	service tutorAssignmentService
}

// NewTutorAssignmentHandler builds a new handler.
func NewTutorAssignmentHandler(service tutorAssignmentService) *TutorAssignmentHandler {
	return &TutorAssignmentHandler{service: service}
}

// Assign godoc
// @Summary Assign a tutor to a classroom
// @Tags TutorAssignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignTutorRequest true "Tutor assignment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tutor-assignments [post]
func (h *TutorAssignmentHandler) Assign(c *gin.Context) {
	var req dto.AssignTutorRequest
	if !bindJSON(c, &req, "invalid tutor assignment payload") {
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Change godoc
// @Summary Replace the tutor of a classroom
// @Tags TutorAssignments
// @Accept json
// @Produce json
// @Param payload body dto.ChangeTutorRequest true "Tutor change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tutor-assignments/change [post]
func (h *TutorAssignmentHandler) Change(c *gin.Context) {
	var req dto.ChangeTutorRequest
	if !bindJSON(c, &req, "invalid tutor change payload") {
		return
	}
	result, err := h.service.Change(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Close godoc
// @Summary Close a tutor assignment
// @Tags TutorAssignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.CloseIntervalRequest false "End date and reason"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tutor-assignments/{id}/close [put]
func (h *TutorAssignmentHandler) Close(c *gin.Context) {
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
// @Summary Classroom tutor history
// @Tags TutorAssignments
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/tutor-history [get]
func (h *TutorAssignmentHandler) History(c *gin.Context) {
	items, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Timetable godoc
// @Summary Weekly timetable of a tutor
// @Tags TutorAssignments
// @Produce json
// @Param id path string true "Tutor ID"
// @Param date query string false "As-of date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/timetable [get]
func (h *TutorAssignmentHandler) Timetable(c *gin.Context) {
	timetable, hit, err := h.service.Timetable(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, timetable, nil, middleware.ExtractMeta(c))
}
