package repositories

import (
	"context"
	"time"

	"workforce_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceFilter narrows a record listing. Zero values mean "no restriction".
type AttendanceFilter struct {
	// EmployeeIDs restricts to these owners. A non-nil empty slice matches nothing.
	EmployeeIDs []primitive.ObjectID
	From        *time.Time // inclusive
	To          *time.Time // exclusive
	// Ascending sorts oldest first; the default is newest first.
	Ascending bool
}

// matchesNothing reports a filter that cannot select any record.
func (f AttendanceFilter) matchesNothing() bool {
	return f.EmployeeIDs != nil && len(f.EmployeeIDs) == 0
}

// AttendanceRepository persists one AttendanceRecord per (employee, civil day).
type AttendanceRepository interface {
	// FindByEmployeeAndDate returns ErrNotFound when the day has no record.
	FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date time.Time) (*models.AttendanceRecord, error)
	// Create inserts a new record; a record for the same (employee, date) yields ErrDuplicateKey.
	Create(ctx context.Context, rec *models.AttendanceRecord) error
	// UpdateSessions writes sessions and working hours only if the stored version equals rec.Version,
	// then advances rec.Version. A stale version yields ErrVersionConflict.
	UpdateSessions(ctx context.Context, rec *models.AttendanceRecord) error
	// Find lists records sorted by date then id. limit <= 0 returns every match.
	Find(ctx context.Context, filter AttendanceFilter, page, limit int) ([]models.AttendanceRecord, int64, error)
	// SummarizeByEmployee counts records and sums working hours per employee in [from, to).
	// A nil employeeIDs means all employees.
	SummarizeByEmployee(ctx context.Context, from, to time.Time, employeeIDs []primitive.ObjectID) ([]models.EmployeeAttendanceTotals, error)
}

func pageOffset(page, limit int) int64 {
	if page < 1 || limit <= 0 {
		return 0
	}
	return int64(page-1) * int64(limit)
}
