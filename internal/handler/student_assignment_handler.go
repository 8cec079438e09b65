package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/globalenglish-api/internal/dto"
	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/pkg/response"
)

type studentAssignmentService interface {
	Assign(ctx context.Context, req dto.AssignStudentRequest) (*models.StudentAssignment, error)
	Move(ctx context.Context, req dto.MoveStudentRequest) (*models.MoveResult, error)
	Close(ctx context.Context, id string, req dto.CloseIntervalRequest) (*models.IntervalRow, error)
	ClassroomStudents(ctx context.Context, classroomID, date string) ([]models.ClassroomStudent, error)
}

// StudentAssignmentHandler exposes student placement and mobility endpoints.
type StudentAssignmentHandler struct {
	service studentAssignmentService
}

// NewStudentAssignmentHandler builds a new handler.
func NewStudentAssignmentHandler(service studentAssignmentService) *StudentAssignmentHandler {
	return &StudentAssignmentHandler{service: service}
}

// Assign godoc
// @Summary Assign a student to a classroom
// @Tags StudentAssignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignStudentRequest true "Student assignment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student-assignments [post]
func (h *StudentAssignmentHandler) Assign(c *gin.Context) {
	var req dto.AssignStudentRequest
	if !bindJSON(c, &req, "invalid student assignment payload") {
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Move godoc
// @Summary Move a student between classrooms of the same grade group
// @Tags StudentAssignments
// @Accept json
// @Produce json
// @Param payload body dto.MoveStudentRequest true "Student move"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /student-assignments/move [post]
func (h *StudentAssignmentHandler) Move(c *gin.Context) {
	var req dto.MoveStudentRequest
	if !bindJSON(c, &req, "invalid student move payload") {
		return
	}
	result, err := h.service.Move(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Close godoc
// @Summary Close a student assignment
// @Tags StudentAssignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.CloseIntervalRequest false "End date (defaults to today)"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student-assignments/{id}/close [put]
func (h *StudentAssignmentHandler) Close(c *gin.Context) {
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

// ClassroomStudents godoc
// @Summary Students assigned to a classroom on a date
// @Tags StudentAssignments
// @Produce json
// @Param id path string true "Classroom ID"
// @Param date query string false "As-of date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/students [get]
func (h *StudentAssignmentHandler) ClassroomStudents(c *gin.Context) {
	items, err := h.service.ClassroomStudents(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &models.Pagination{Page: 1, PageSize: len(items), TotalCount: len(items)})
}
