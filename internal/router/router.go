package router

import (
	"time"

	"workforce_backend/internal/calendar"
	"workforce_backend/internal/handlers"
	"workforce_backend/internal/repositories"
	"workforce_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps are the storage-backed collaborators chosen by the server at startup.
type Deps struct {
	Attendance repositories.AttendanceRepository
	Employees  repositories.EmployeeRepository
	Admins     repositories.AdminRepository

	// ReportCache is optional; nil disables caching of past-month summaries.
	ReportCache    services.ReportCache
	ReportCacheTTL time.Duration

	Calendar     *calendar.Normalizer
	Clock        calendar.Clock
	SecureCookie bool
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, deps Deps) {
	handlers.RegisterValidators()

	if deps.Calendar == nil {
		deps.Calendar = calendar.IST()
	}
	if deps.Clock == nil {
		deps.Clock = calendar.SystemClock{}
	}

	// Initialize Services
	attendanceService := services.NewAttendanceService(deps.Attendance, deps.Calendar, deps.Clock)
	reportService := services.NewReportService(deps.Attendance, deps.Employees, deps.ReportCache, deps.ReportCacheTTL, deps.Calendar, deps.Clock)
	authService := services.NewAuthService(deps.Employees, deps.Admins)
	employeeService := services.NewEmployeeService(deps.Employees, deps.Calendar)

	// Initialize Handlers
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService, reportService)
	reportHandler := handlers.NewReportHandler(reportService)
	authHandler := handlers.NewAuthHandler(authService, deps.SecureCookie)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)
	SetupAttendanceRoutes(apiV1, attendanceHandler, reportHandler)
	SetupEmployeeRoutes(apiV1, employeeHandler)
}
