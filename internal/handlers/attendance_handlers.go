package handlers

import (
	"errors"
	"net/http"

	"workforce_backend/internal/middleware"
	"workforce_backend/internal/services"
	"workforce_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceHandler serves the employee punch and self-report endpoints.
type AttendanceHandler struct {
	attendanceService services.AttendanceService
	reportService     services.ReportService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(as services.AttendanceService, rs services.ReportService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as, reportService: rs}
}

// callerID resolves the authenticated employee's id or answers 401.
func callerID(c *gin.Context, handlerName string) (primitive.ObjectID, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		utils.LogError(errors.New("identity not found in context"), handlerName+": identity not in context")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unauthorized", "Missing identity in context"))
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(identity.ID)
	if err != nil {
		utils.LogError(err, handlerName+": malformed account id in token")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unauthorized", "Invalid account id in token"))
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondAttendanceError maps punch and report errors to API errors.
func respondAttendanceError(c *gin.Context, err error, handlerName, fallback string) {
	switch {
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeAlreadyCheckedIn, "You are already checked in!", err.Error()))
	case errors.Is(err, services.ErrNotCheckedIn):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeNotCheckedIn, "You are not currently checked in", err.Error()))
	case errors.Is(err, services.ErrNoRecordForToday):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No check-in record found for today", err.Error()))
	case errors.Is(err, services.ErrInvalidSessionRange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Check-out time must be after check-in time", err.Error()))
	case errors.Is(err, services.ErrConcurrentUpdate):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConcurrentUpdate, "Attendance was updated by another request, please retry", err.Error()))
	case errors.Is(err, services.ErrInvalidMonthFormat):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, msgInvalidMonth, err.Error()))
	case errors.Is(err, services.ErrInvalidDateFormat):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, msgInvalidDate, err.Error()))
	case errors.Is(err, services.ErrInvalidEmployeeID):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, msgInvalidEmployeeID, err.Error()))
	case errors.Is(err, services.ErrInvalidDepartmentID):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, msgInvalidDepartment, err.Error()))
	default:
		utils.LogError(err, handlerName+": unexpected error")
		utils.RespondInternalError(c, fallback)
	}
}

// CheckIn opens a session for the caller.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	employeeID, ok := callerID(c, "CheckIn")
	if !ok {
		return
	}
	view, err := h.attendanceService.CheckIn(c.Request.Context(), employeeID)
	if err != nil {
		respondAttendanceError(c, err, "CheckIn", "Error during check-in")
		return
	}
	utils.LogInfo("Employee checked in", map[string]interface{}{"employee": employeeID.Hex(), "date": view.DateIST})
	utils.RespondWithSuccess(c, http.StatusOK, "Check-in successful", gin.H{"attendance": view})
}

// CheckOut closes the caller's open session.
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	employeeID, ok := callerID(c, "CheckOut")
	if !ok {
		return
	}
	view, err := h.attendanceService.CheckOut(c.Request.Context(), employeeID)
	if err != nil {
		respondAttendanceError(c, err, "CheckOut", "Error during check-out")
		return
	}
	utils.LogInfo("Employee checked out", map[string]interface{}{"employee": employeeID.Hex(), "hours": view.WorkingHours})
	utils.RespondWithSuccess(c, http.StatusOK, "Check-out successful", gin.H{"attendance": view})
}

// GetMyAttendance lists the caller's records, newest first.
func (h *AttendanceHandler) GetMyAttendance(c *gin.Context) {
	employeeID, ok := callerID(c, "GetMyAttendance")
	if !ok {
		return
	}
	views, err := h.attendanceService.ListMine(c.Request.Context(), employeeID)
	if err != nil {
		respondAttendanceError(c, err, "GetMyAttendance", "Error fetching attendance records")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", gin.H{"attendance": views})
}

// GetWeeklySummary returns hours per day for the last seven civil days.
func (h *AttendanceHandler) GetWeeklySummary(c *gin.Context) {
	employeeID, ok := callerID(c, "GetWeeklySummary")
	if !ok {
		return
	}
	summary, err := h.attendanceService.WeeklySummary(c.Request.Context(), employeeID)
	if err != nil {
		respondAttendanceError(c, err, "GetWeeklySummary", "Error fetching weekly summary")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", gin.H{"summary": summary})
}

// GetToday returns today's record; no punch yet is a successful empty answer.
func (h *AttendanceHandler) GetToday(c *gin.Context) {
	employeeID, ok := callerID(c, "GetToday")
	if !ok {
		return
	}
	view, err := h.attendanceService.GetToday(c.Request.Context(), employeeID)
	if err != nil {
		respondAttendanceError(c, err, "GetToday", "Error fetching today's attendance")
		return
	}
	if view == nil {
		utils.RespondWithSuccess(c, http.StatusOK, "No attendance record found for today", gin.H{"attendance": nil})
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", gin.H{"attendance": view})
}

// GetMyMonthly classifies every day of the requested month for the caller.
func (h *AttendanceHandler) GetMyMonthly(c *gin.Context) {
	employeeID, ok := callerID(c, "GetMyMonthly")
	if !ok {
		return
	}
	var q myMonthlyQuery
	if !bindQuery(c, &q, "GetMyMonthly") {
		return
	}
	page, limit := utils.ParsePagination(q.Page, q.Limit)

	report, err := h.reportService.MyMonthlyReport(c.Request.Context(), employeeID, q.Month, page, limit)
	if err != nil {
		respondAttendanceError(c, err, "GetMyMonthly", "Server Error")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Monthly attendance fetched successfully", gin.H{
		"month":             report.Month,
		"stats":             report.Stats,
		"pagination":        report.Pagination,
		"attendanceRecords": report.AttendanceRecords,
	})
}
