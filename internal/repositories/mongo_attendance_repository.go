package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workforce_backend/internal/database"
	"workforce_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAttendanceRepository struct {
	coll *mongo.Collection
}

// NewMongoAttendanceRepository creates an AttendanceRepository backed by the attendances collection.
func NewMongoAttendanceRepository(db *mongo.Database) AttendanceRepository {
	return &mongoAttendanceRepository{coll: db.Collection(database.AttendanceCollection)}
}

func (r *mongoAttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date time.Time) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := r.coll.FindOne(ctx, bson.M{"employee": employeeID, "date": date}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding attendance for employee %s: %v", ErrDatabaseError, employeeID.Hex(), err)
	}
	return &rec, nil
}

func (r *mongoAttendanceRepository) Create(ctx context.Context, rec *models.AttendanceRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	rec.Version = 1
	if rec.Sessions == nil {
		rec.Sessions = []models.Session{}
	}

	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: attendance for employee %s on %s already exists", ErrDuplicateKey, rec.Employee.Hex(), rec.Date.Format(time.RFC3339))
		}
		return fmt.Errorf("%w: creating attendance: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *mongoAttendanceRepository) UpdateSessions(ctx context.Context, rec *models.AttendanceRecord) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": rec.ID, "version": rec.Version}
	update := bson.M{
		"$set": bson.M{
			"sessions":      rec.Sessions,
			"working_hours": rec.WorkingHours,
			"updatedAt":     now,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%w: updating attendance %s: %v", ErrDatabaseError, rec.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	rec.Version++
	rec.UpdatedAt = now
	return nil
}

func (r *mongoAttendanceRepository) Find(ctx context.Context, filter AttendanceFilter, page, limit int) ([]models.AttendanceRecord, int64, error) {
	if filter.matchesNothing() {
		return []models.AttendanceRecord{}, 0, nil
	}
	query := attendanceQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: counting attendance: %v", ErrDatabaseError, err)
	}

	dir := -1
	if filter.Ascending {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: dir}, {Key: "_id", Value: dir}})
	if limit > 0 {
		opts.SetSkip(pageOffset(page, limit)).SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing attendance: %v", ErrDatabaseError, err)
	}
	records := []models.AttendanceRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("%w: decoding attendance: %v", ErrDatabaseError, err)
	}
	return records, total, nil
}

func (r *mongoAttendanceRepository) SummarizeByEmployee(ctx context.Context, from, to time.Time, employeeIDs []primitive.ObjectID) ([]models.EmployeeAttendanceTotals, error) {
	if employeeIDs != nil && len(employeeIDs) == 0 {
		return []models.EmployeeAttendanceTotals{}, nil
	}
	match := bson.M{"date": bson.M{"$gte": from, "$lt": to}}
	if employeeIDs != nil {
		match["employee"] = bson.M{"$in": employeeIDs}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$employee"},
			{Key: "presentDays", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalWorkingHours", Value: bson.D{{Key: "$sum", Value: "$working_hours"}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating attendance: %v", ErrDatabaseError, err)
	}
	totals := []models.EmployeeAttendanceTotals{}
	if err := cur.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("%w: decoding attendance totals: %v", ErrDatabaseError, err)
	}
	return totals, nil
}

func attendanceQuery(f AttendanceFilter) bson.M {
	q := bson.M{}
	if f.EmployeeIDs != nil {
		if len(f.EmployeeIDs) == 1 {
			q["employee"] = f.EmployeeIDs[0]
		} else {
			q["employee"] = bson.M{"$in": f.EmployeeIDs}
		}
	}
	if f.From != nil || f.To != nil {
		dateRange := bson.M{}
		if f.From != nil {
			dateRange["$gte"] = *f.From
		}
		if f.To != nil {
			dateRange["$lt"] = *f.To
		}
		q["date"] = dateRange
	}
	return q
}
