package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
	"github.com/betsymikaodi/gestion-formation-api/internal/service"
	appErrors "github.com/betsymikaodi/gestion-formation-api/pkg/errors"
	"github.com/betsymikaodi/gestion-formation-api/pkg/response"
)

// StudentHandler exposes apprenant endpoints.
type StudentHandler struct {
	students    *service.StudentService
	interchange *service.InterchangeService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, interchange *service.InterchangeService) *StudentHandler {
	return &StudentHandler{students: students, interchange: interchange}
}

func studentFilterFromQuery(c *gin.Context) models.StudentFilter {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
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
// @Summary List students
// @Tags Apprenants
// @Produce json
// @Param search query string false "Search by name, email or CIN"
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size"
// @Param sortBy query string false "Sort column"
// @Param sortDirection query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /apprenants [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, pagination, err := h.students.List(c.Request.Context(), studentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail with enrollments
// @Tags Apprenants
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /apprenants/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Count godoc
// @Summary Count registered students
// @Tags Apprenants
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /apprenants/count [get]
func (h *StudentHandler) Count(c *gin.Context) {
	total, err := h.students.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"total": total}, nil)
}

// Create godoc
// @Summary Register a student
// @Tags Apprenants
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /apprenants [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update a student
// @Tags Apprenants
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /apprenants/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete a student
// @Tags Apprenants
// @Param id path string true "Student ID"
// @Success 204
// @Router /apprenants/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export students as CSV, Excel or PDF
// @Tags Apprenants
// @Produce octet-stream
// @Param format path string true "csv, excel or pdf"
// @Param scope path string true "all or page"
// @Success 200 {file} binary
// @Router /apprenants/export/{format}/{scope} [get]
func (h *StudentHandler) Export(c *gin.Context) {
	format := c.Param("format")
	scope := c.Param("scope")

	var raw []byte
	var contentType string
	var err error
	switch scope {
	case "all":
		raw, contentType, err = h.interchange.ExportAll(c.Request.Context(), format)
	case "page":
		raw, contentType, err = h.interchange.ExportPage(c.Request.Context(), format, studentFilterFromQuery(c))
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export scope"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	ext := "csv"
	switch {
	case strings.EqualFold(format, service.FormatExcel):
		ext = "xlsx"
	case strings.EqualFold(format, service.FormatPDF):
		ext = "pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="apprenants.`+ext+`"`)
	c.Data(http.StatusOK, contentType, raw)
}

// Import godoc
// @Summary Import students from CSV or Excel
// @Tags Apprenants
// @Accept multipart/form-data
// @Produce json
// @Param format path string true "csv or excel"
// @Param file formData file true "Roster document"
// @Success 200 {object} response.Envelope
// @Router /apprenants/import/{format} [post]
func (h *StudentHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing file"))
		return
	}
	defer file.Close() //nolint:errcheck

	raw, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable file"))
		return
	}
	report, err := h.interchange.Import(c.Request.Context(), c.Param("format"), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
