package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is one check-in/check-out pair. It only exists inside its AttendanceRecord.
type Session struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	CheckIn  time.Time          `json:"checkIn" bson:"checkIn"`
	CheckOut *time.Time         `json:"checkOut,omitempty" bson:"checkOut,omitempty"`
	Duration float64            `json:"duration" bson:"duration"` // hours, set once closed
}

// IsOpen reports whether the session has no check-out yet.
func (s Session) IsOpen() bool {
	return s.CheckOut == nil
}

// AttendanceRecord is one employee's attendance for one civil day.
// Date is the UTC instant of that day's midnight in the civil zone.
type AttendanceRecord struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Employee     primitive.ObjectID `json:"employee" bson:"employee"`
	Date         time.Time          `json:"date" bson:"date"`
	Sessions     []Session          `json:"sessions" bson:"sessions"`
	WorkingHours float64            `json:"working_hours" bson:"working_hours"`
	Version      int64              `json:"-" bson:"version"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// LastSession returns the index of the last session, or -1 when there are none.
func (r *AttendanceRecord) LastSession() int {
	return len(r.Sessions) - 1
}

// HasOpenSession reports whether the last session is still open.
func (r *AttendanceRecord) HasOpenSession() bool {
	last := r.LastSession()
	return last >= 0 && r.Sessions[last].IsOpen()
}

// Clone returns a deep copy, so a failed mutation can be discarded.
func (r *AttendanceRecord) Clone() *AttendanceRecord {
	cp := *r
	cp.Sessions = make([]Session, len(r.Sessions))
	for i, s := range r.Sessions {
		cp.Sessions[i] = s
		if s.CheckOut != nil {
			out := *s.CheckOut
			cp.Sessions[i].CheckOut = &out
		}
	}
	return &cp
}

// EmployeeAttendanceTotals is one employee's aggregate over a date range.
type EmployeeAttendanceTotals struct {
	EmployeeID        primitive.ObjectID `json:"employeeId" bson:"_id"`
	PresentDays       int                `json:"presentDays" bson:"presentDays"`
	TotalWorkingHours float64            `json:"totalWorkingHours" bson:"totalWorkingHours"`
}
