package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"workforce_backend/internal/services"
	"workforce_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the admin attendance reports.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// AdminMonthly returns per-employee present/absent/hours for a month.
func (h *ReportHandler) AdminMonthly(c *gin.Context) {
	var q adminMonthlyQuery
	if !bindQuery(c, &q, "AdminMonthly") {
		return
	}
	page, limit := utils.ParsePagination(q.Page, q.Limit)

	summary, err := h.reportService.AdminMonthlySummary(c.Request.Context(), services.AdminMonthlyQuery{
		Month:      q.Month,
		Department: q.Department,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		respondAttendanceError(c, err, "AdminMonthly", "Error fetching monthly attendance summary")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Monthly attendance summary fetched successfully", gin.H{
		"month":          summary.Month,
		"monthName":      summary.MonthName,
		"year":           summary.Year,
		"pagination":     summary.Pagination,
		"monthlySummary": summary.MonthlySummary,
	})
}

// AdminDetails lists attendance records filtered by day, employee or department.
func (h *ReportHandler) AdminDetails(c *gin.Context) {
	var q adminDetailQuery
	if !bindQuery(c, &q, "AdminDetails") {
		return
	}
	page, limit := utils.ParsePagination(q.Page, q.Limit)

	report, err := h.reportService.AdminDetailReport(c.Request.Context(), services.AdminDetailQuery{
		Date:       q.Date,
		EmployeeID: q.EmployeeID,
		Department: q.Department,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		respondAttendanceError(c, err, "AdminDetails", "Error fetching attendance details")
		return
	}
	message := report.Message
	if message == "" {
		message = "Attendance records fetched successfully"
	}
	utils.RespondWithSuccess(c, http.StatusOK, message, gin.H{
		"filterDate":        report.FilterDate,
		"pagination":        report.Pagination,
		"attendanceRecords": report.AttendanceRecords,
	})
}

// AdminMonthlyExport streams the monthly summary as an xlsx workbook.
func (h *ReportHandler) AdminMonthlyExport(c *gin.Context) {
	var q exportQuery
	if !bindQuery(c, &q, "AdminMonthlyExport") {
		return
	}
	export, err := h.reportService.ExportMonthlySummary(c.Request.Context(), q.Month, q.Department)
	if err != nil {
		respondAttendanceError(c, err, "AdminMonthlyExport", "Failed to export monthly summary")
		return
	}
	sendFile(c, services.XLSXContentType, export)
}

// GetMyMonthlyPDF renders the caller's monthly report as a PDF.
func (h *AttendanceHandler) GetMyMonthlyPDF(c *gin.Context) {
	employeeID, ok := callerID(c, "GetMyMonthlyPDF")
	if !ok {
		return
	}
	var q myMonthlyQuery
	if !bindQuery(c, &q, "GetMyMonthlyPDF") {
		return
	}
	export, err := h.reportService.ExportMyMonthlyPDF(c.Request.Context(), employeeID, q.Month)
	if err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Employee not found.", err.Error()))
			return
		}
		respondAttendanceError(c, err, "GetMyMonthlyPDF", "Failed to generate attendance report")
		return
	}
	sendFile(c, services.PDFContentType, export)
}

func sendFile(c *gin.Context, contentType string, export *services.MonthlyExport) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename))
	c.Data(http.StatusOK, contentType, export.Content)
}
