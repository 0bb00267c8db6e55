package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MonthlyStats classifies every day of a month for one employee.
type MonthlyStats struct {
	Present   int `json:"present"`
	Absent    int `json:"absent"`
	Ongoing   int `json:"ongoing"`
	TotalDays int `json:"totalDays"`
}

// Pagination describes a paged list of attendance records.
type Pagination struct {
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalRecords int64 `json:"totalRecords"`
	TotalPages   int   `json:"totalPages"`
}

// EmployeePagination describes a paged list of employees.
type EmployeePagination struct {
	Page           int   `json:"page"`
	Limit          int   `json:"limit"`
	TotalEmployees int64 `json:"totalEmployees"`
	TotalPages     int   `json:"totalPages"`
}

// MonthlyRecord is a stored record as shown in the monthly report.
type MonthlyRecord struct {
	ID           primitive.ObjectID `json:"_id"`
	Date         string             `json:"date"` // civil day key
	WorkingHours float64            `json:"working_hours"`
	Sessions     []Session          `json:"sessions"`
}

// EmployeeMonthlySummary is one row of the admin monthly summary.
type EmployeeMonthlySummary struct {
	EmployeeID        primitive.ObjectID `json:"employeeId"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Department        string             `json:"department"`
	Position          string             `json:"position"`
	PresentDays       int                `json:"presentDays"`
	AbsentDays        int                `json:"absentDays"`
	TotalWorkingHours float64            `json:"totalWorkingHours"`
}

// DetailEmployee is the flattened employee shown next to an attendance record.
type DetailEmployee struct {
	ID         *primitive.ObjectID `json:"_id"`
	Name       *string             `json:"name"`
	Email      *string             `json:"email"`
	Department *string             `json:"department"`
}

// DetailSession is a session without display fields.
type DetailSession struct {
	CheckIn  time.Time  `json:"checkIn"`
	CheckOut *time.Time `json:"checkOut"`
	Duration float64    `json:"duration"`
}

// DetailRecord is one row of the admin attendance detail report.
type DetailRecord struct {
	ID           primitive.ObjectID `json:"_id"`
	Employee     DetailEmployee     `json:"employee"`
	Date         string             `json:"date"`
	WorkingHours float64            `json:"working_hours"`
	Sessions     []DetailSession    `json:"sessions"`
}
