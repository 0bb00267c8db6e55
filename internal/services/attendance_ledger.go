package services

import (
	"time"

	"workforce_backend/internal/models"
	"workforce_backend/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// openSession appends a session checked in at now.
func openSession(rec *models.AttendanceRecord, now time.Time) error {
	if rec.HasOpenSession() {
		return ErrAlreadyCheckedIn
	}
	rec.Sessions = append(rec.Sessions, models.Session{
		ID:      primitive.NewObjectID(),
		CheckIn: now.UTC(),
	})
	return nil
}

// closeSession checks out the last session at now.
func closeSession(rec *models.AttendanceRecord, now time.Time) error {
	if rec == nil {
		return ErrNoRecordForToday
	}
	if !rec.HasOpenSession() {
		return ErrNotCheckedIn
	}
	last := &rec.Sessions[rec.LastSession()]
	if !now.After(last.CheckIn) {
		return ErrInvalidSessionRange
	}
	out := now.UTC()
	last.CheckOut = &out
	return nil
}

// recomputeDurations restores the derived fields. It must run after every mutation
// and is the only writer of Duration and WorkingHours.
func recomputeDurations(rec *models.AttendanceRecord) {
	total := 0.0
	for i := range rec.Sessions {
		s := &rec.Sessions[i]
		if s.CheckOut == nil {
			s.Duration = 0
			continue
		}
		s.Duration = utils.RoundHours(s.CheckOut.Sub(s.CheckIn).Hours())
		total += s.Duration
	}
	rec.WorkingHours = utils.RoundHours(total)
}
