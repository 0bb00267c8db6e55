package router

import (
	"workforce_backend/internal/handlers"
	"workforce_backend/internal/middleware"
	"workforce_backend/internal/models"

	"github.com/gin-gonic/gin"
)

var adminRoles = []string{models.RoleAdmin, models.RoleSuperAdmin}

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/employee/login", authHandler.LoginEmployee)
		authRoutes.POST("/admin/login", authHandler.LoginAdmin)
		authRoutes.POST("/logout", authHandler.Logout)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware()) // Apply AuthMiddleware to this sub-group
		{
			authRequiredRoutes.GET("/me", authHandler.Me)
		}
	}
}

// SetupAttendanceRoutes sets up the punch, self-report and admin report routes.
func SetupAttendanceRoutes(apiGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler, reportHandler *handlers.ReportHandler) {
	attendanceRoutes := apiGroup.Group("/attendance")

	webRoutes := attendanceRoutes.Group("")
	webRoutes.Use(middleware.AuthMiddleware(), middleware.AccountTypeMiddleware(models.AccountTypeEmployee))
	{
		webRoutes.POST("/checkin", attendanceHandler.CheckIn)
		webRoutes.POST("/checkout", attendanceHandler.CheckOut)
		webRoutes.GET("/me", attendanceHandler.GetMyAttendance)
		webRoutes.GET("/me/monthly", attendanceHandler.GetMyMonthly)
		webRoutes.GET("/me/monthly/pdf", attendanceHandler.GetMyMonthlyPDF)
		webRoutes.GET("/weekly-summary", attendanceHandler.GetWeeklySummary)
		webRoutes.GET("/today", attendanceHandler.GetToday)
	}

	mobileRoutes := attendanceRoutes.Group("")
	mobileRoutes.Use(middleware.MobileAuthMiddleware(), middleware.AccountTypeMiddleware(models.AccountTypeEmployee))
	{
		mobileRoutes.POST("/checkinMobile", attendanceHandler.CheckIn)
		mobileRoutes.POST("/checkoutMobile", attendanceHandler.CheckOut)
		mobileRoutes.GET("/todayMob", attendanceHandler.GetToday)
	}

	adminRoutes := attendanceRoutes.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(), middleware.RoleAuthMiddleware(adminRoles...))
	{
		adminRoutes.GET("/details", reportHandler.AdminDetails)
		adminRoutes.GET("/monthly", reportHandler.AdminMonthly)
		adminRoutes.GET("/monthly/export", reportHandler.AdminMonthlyExport)
	}
}

// SetupEmployeeRoutes sets up the admin employee directory routes.
func SetupEmployeeRoutes(apiGroup *gin.RouterGroup, employeeHandler *handlers.EmployeeHandler) {
	employeeRoutes := apiGroup.Group("/employees")
	employeeRoutes.Use(middleware.AuthMiddleware(), middleware.RoleAuthMiddleware(adminRoles...))
	{
		employeeRoutes.POST("", employeeHandler.CreateEmployee)
		employeeRoutes.GET("", employeeHandler.ListEmployees)
	}
}
