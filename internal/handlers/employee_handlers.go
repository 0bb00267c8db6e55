package handlers

import (
	"errors"
	"net/http"

	"workforce_backend/internal/services"
	"workforce_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EmployeeHandler serves the admin employee directory.
type EmployeeHandler struct {
	employeeService services.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(es services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: es}
}

// CreateEmployee registers a new employee account.
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req services.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateEmployee: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	emp, err := h.employeeService.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error()))
		case errors.Is(err, services.ErrInvalidDepartmentID):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, msgInvalidDepartment, err.Error()))
		case errors.Is(err, services.ErrInvalidPositionID):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid position id.", err.Error()))
		case errors.Is(err, services.ErrInvalidDateFormat):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, msgInvalidDate, err.Error()))
		default:
			utils.LogError(err, "CreateEmployee: Error from employeeService.CreateEmployee")
			utils.RespondInternalError(c, "Failed to create employee.")
		}
		return
	}
	utils.LogInfo("Employee created", map[string]interface{}{"employee": emp.ID.Hex()})
	utils.RespondWithSuccess(c, http.StatusCreated, "Employee created successfully", gin.H{"employee": emp})
}

// ListEmployees pages through employee profiles, optionally within one department.
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var q employeeListQuery
	if !bindQuery(c, &q, "ListEmployees") {
		return
	}
	page, limit := utils.ParsePagination(q.Page, q.Limit)

	profiles, pagination, err := h.employeeService.ListEmployees(c.Request.Context(), q.Department, page, limit)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDepartmentID) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, msgInvalidDepartment, err.Error()))
			return
		}
		utils.LogError(err, "ListEmployees: Error from employeeService.ListEmployees")
		utils.RespondInternalError(c, "Failed to retrieve employees.")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", gin.H{
		"employees":  profiles,
		"pagination": pagination,
	})
}
