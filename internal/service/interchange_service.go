package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
	appErrors "github.com/betsymikaodi/gestion-formation-api/pkg/errors"
	"github.com/betsymikaodi/gestion-formation-api/pkg/export"
)

// Interchange formats supported for student export and import.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

const rosterTitle = "Liste des apprenants"

var studentExportHeaders = []string{"nom", "prenom", "email", "telephone", "adresse", "dateNaissance", "cin"}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// InterchangeService exports the student roster as CSV, Excel or PDF documents
// sharing one header contract, and imports it back from CSV or Excel.
type InterchangeService struct {
	students  *StudentService
	repo      studentRepository
	csv       datasetRenderer
	excel     datasetRenderer
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInterchangeService constructs the interchange service.
func NewInterchangeService(students *StudentService, repo studentRepository, csvExporter, excelExporter datasetRenderer, pdfExporter *export.PDFExporter, validate *validator.Validate, logger *zap.Logger) *InterchangeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterchangeService{students: students, repo: repo, csv: csvExporter, excel: excelExporter, pdf: pdfExporter, validator: validate, logger: logger}
}

// ExportAll renders the complete roster in the requested format.
func (s *InterchangeService) ExportAll(ctx context.Context, format string) ([]byte, string, error) {
	students, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	return s.render(format, students)
}

// ExportPage renders one page of the roster, honouring the active search and
// sort so the file matches what the console shows.
func (s *InterchangeService) ExportPage(ctx context.Context, format string, filter models.StudentFilter) ([]byte, string, error) {
	students, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	return s.render(format, students)
}

func (s *InterchangeService) render(format string, students []models.Student) ([]byte, string, error) {
	data := export.Dataset{Headers: studentExportHeaders}
	for _, student := range students {
		row := map[string]string{
			"nom":       student.LastName,
			"prenom":    student.FirstName,
			"email":     student.Email,
			"telephone": student.Phone,
			"adresse":   student.Address,
			"cin":       student.CIN,
		}
		if student.BirthDate != nil {
			row["dateNaissance"] = student.BirthDate.Format("2006-01-02")
		}
		data.Rows = append(data.Rows, row)
	}

	switch strings.ToLower(format) {
	case FormatCSV:
		raw, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return raw, "text/csv", nil
	case FormatExcel:
		raw, err := s.excel.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render excel")
		}
		return raw, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		raw, err := s.pdf.Render(data, rosterTitle)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return raw, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// Import reads a CSV or Excel document and inserts the valid rows. Rejected
// rows are reported individually; the import never aborts on a bad row.
func (s *InterchangeService) Import(ctx context.Context, format string, raw []byte) (*models.ImportReport, error) {
	var data export.Dataset
	var err error
	switch strings.ToLower(format) {
	case FormatCSV:
		data, err = parseCSV(raw)
	case FormatExcel:
		data, err = export.ParseSheet(raw)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported import format")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable import file")
	}

	report := &models.ImportReport{Total: len(data.Rows)}
	for i, row := range data.Rows {
		// header is row 1 in the source document
		rowNumber := i + 2
		req, err := rowToStudent(row)
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, models.ImportRowError{RowNumber: rowNumber, Message: err.Error()})
			continue
		}
		if _, err := s.students.Create(ctx, req); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, models.ImportRowError{RowNumber: rowNumber, Message: appErrors.FromError(err).Message})
			continue
		}
		report.Inserted++
	}
	return report, nil
}

func rowToStudent(row map[string]string) (CreateStudentRequest, error) {
	req := CreateStudentRequest{
		LastName:  strings.TrimSpace(row["nom"]),
		FirstName: strings.TrimSpace(row["prenom"]),
		Email:     strings.TrimSpace(row["email"]),
		Phone:     strings.TrimSpace(row["telephone"]),
		Address:   strings.TrimSpace(row["adresse"]),
		CIN:       strings.TrimSpace(row["cin"]),
	}
	if req.LastName == "" || req.FirstName == "" {
		return req, fmt.Errorf("nom and prenom are required")
	}
	if req.Email == "" {
		return req, fmt.Errorf("email is required")
	}
	if req.CIN == "" {
		return req, fmt.Errorf("cin is required")
	}
	if birth := strings.TrimSpace(row["dateNaissance"]); birth != "" {
		parsed, err := time.Parse("2006-01-02", birth)
		if err != nil {
			return req, fmt.Errorf("invalid dateNaissance %q", birth)
		}
		req.BirthDate = &parsed
	}
	return req, nil
}

func parseCSV(raw []byte) (export.Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return export.Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return export.Dataset{}, fmt.Errorf("csv file is empty")
	}
	data := export.Dataset{Headers: records[0]}
	for _, record := range records[1:] {
		row := make(map[string]string, len(data.Headers))
		for i, header := range data.Headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}
