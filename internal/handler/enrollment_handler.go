package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
	"github.com/betsymikaodi/gestion-formation-api/internal/service"
	appErrors "github.com/betsymikaodi/gestion-formation-api/pkg/errors"
	"github.com/betsymikaodi/gestion-formation-api/pkg/response"
)

// EnrollmentHandler exposes inscription endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

func enrollmentFilterFromQuery(c *gin.Context) models.EnrollmentFilter {
	var filter models.EnrollmentFilter
	filter.StudentID = c.Query("apprenantId")
	filter.CourseID = c.Query("formationId")
	filter.Status = models.EnrollmentStatus(c.Query("statut"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "0")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("size", "10")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sortBy")
	filter.SortDirection = c.Query("sortDirection")
	return filter
}

// List godoc
// @Summary List enrollments
// @Tags Inscriptions
// @Produce json
// @Param apprenantId query string false "Filter by student"
// @Param formationId query string false "Filter by course"
// @Param statut query string false "Filter by status"
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /inscriptions [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), enrollmentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Pending godoc
// @Summary List pending enrollments
// @Tags Inscriptions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /inscriptions/en-attente [get]
func (h *EnrollmentHandler) Pending(c *gin.Context) {
	filter := enrollmentFilterFromQuery(c)
	filter.Status = models.EnrollmentStatusPending
	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Get godoc
// @Summary Get enrollment detail with its payment ledger
// @Tags Inscriptions
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /inscriptions/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Create godoc
// @Summary Register a student to a course
// @Tags Inscriptions
// @Accept json
// @Produce json
// @Param payload body service.CreateEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /inscriptions [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Update godoc
// @Summary Update an enrollment
// @Tags Inscriptions
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.UpdateEnrollmentRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Router /inscriptions/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	var req service.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Confirm godoc
// @Summary Confirm a pending enrollment
// @Tags Inscriptions
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /inscriptions/{id}/confirmer [patch]
func (h *EnrollmentHandler) Confirm(c *gin.Context) {
	enrollment, err := h.enrollments.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Cancel godoc
// @Summary Cancel an enrollment
// @Tags Inscriptions
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /inscriptions/{id}/annuler [patch]
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	enrollment, err := h.enrollments.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// SetPending godoc
// @Summary Revert a confirmed enrollment to pending
// @Tags Inscriptions
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /inscriptions/{id}/attente [patch]
func (h *EnrollmentHandler) SetPending(c *gin.Context) {
	enrollment, err := h.enrollments.SetPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Delete godoc
// @Summary Delete an enrollment and its ledger
// @Tags Inscriptions
// @Param id path string true "Enrollment ID"
// @Success 204
// @Router /inscriptions/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.enrollments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
