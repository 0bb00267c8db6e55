package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"workforce_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const attendanceNS = "workforce.attendances"

func TestMongoAttendanceRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	day := time.Date(2025, 11, 19, 18, 30, 0, 0, time.UTC)

	mt.Run("create maps duplicate key", func(mt *mtest.T) {
		repo := NewMongoAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: workforce.attendances index: employee_1_date_1",
		}))

		err := repo.Create(ctx, &models.AttendanceRecord{Employee: primitive.NewObjectID(), Date: day})
		if !errors.Is(err, ErrDuplicateKey) {
			t.Fatalf("Create() error = %v, want ErrDuplicateKey", err)
		}
	})

	mt.Run("create starts at version one", func(mt *mtest.T) {
		repo := NewMongoAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec := &models.AttendanceRecord{Employee: primitive.NewObjectID(), Date: day}
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if rec.ID.IsZero() || rec.Version != 1 || rec.Sessions == nil {
			t.Errorf("record = %+v", rec)
		}
	})

	mt.Run("update with stale version conflicts", func(mt *mtest.T) {
		repo := NewMongoAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		rec := &models.AttendanceRecord{ID: primitive.NewObjectID(), Version: 3}
		if err := repo.UpdateSessions(ctx, rec); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("UpdateSessions() error = %v, want ErrVersionConflict", err)
		}
		if rec.Version != 3 {
			t.Errorf("version = %d, want unchanged 3", rec.Version)
		}
	})

	mt.Run("update bumps version", func(mt *mtest.T) {
		repo := NewMongoAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		rec := &models.AttendanceRecord{ID: primitive.NewObjectID(), Version: 3}
		if err := repo.UpdateSessions(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if rec.Version != 4 {
			t.Errorf("version = %d, want 4", rec.Version)
		}
	})

	mt.Run("find by employee and date", func(mt *mtest.T) {
		repo := NewMongoAttendanceRepository(mt.DB)
		emp := primitive.NewObjectID()
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, attendanceNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "employee", Value: emp},
			{Key: "date", Value: day},
			{Key: "working_hours", Value: 8.5},
			{Key: "version", Value: int64(2)},
		}))

		rec, err := repo.FindByEmployeeAndDate(ctx, emp, day)
		if err != nil {
			t.Fatal(err)
		}
		if rec.ID != id || rec.WorkingHours != 8.5 || rec.Version != 2 {
			t.Errorf("record = %+v", rec)
		}
	})

	mt.Run("find by employee and date not found", func(mt *mtest.T) {
		repo := NewMongoAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, attendanceNS, mtest.FirstBatch))

		if _, err := repo.FindByEmployeeAndDate(ctx, primitive.NewObjectID(), day); !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	mt.Run("summarize decodes group totals", func(mt *mtest.T) {
		repo := NewMongoAttendanceRepository(mt.DB)
		emp := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, attendanceNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: emp},
			{Key: "presentDays", Value: int32(5)},
			{Key: "totalWorkingHours", Value: 40.0},
		}))

		totals, err := repo.SummarizeByEmployee(ctx, day, day.AddDate(0, 1, 0), []primitive.ObjectID{emp})
		if err != nil {
			t.Fatal(err)
		}
		if len(totals) != 1 || totals[0].EmployeeID != emp || totals[0].PresentDays != 5 || totals[0].TotalWorkingHours != 40 {
			t.Errorf("totals = %+v", totals)
		}
	})

	mt.Run("summarize empty id set skips the store", func(mt *mtest.T) {
		repo := NewMongoAttendanceRepository(mt.DB)
		totals, err := repo.SummarizeByEmployee(ctx, day, day.AddDate(0, 1, 0), []primitive.ObjectID{})
		if err != nil || len(totals) != 0 {
			t.Fatalf("totals = %v, err = %v", totals, err)
		}
	})
}
