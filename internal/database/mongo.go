package database

import (
	"context"
	"fmt"
	"time"

	"workforce_backend/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the Mongo repositories.
const (
	AttendanceCollection = "attendances"
	EmployeeCollection   = "employees"
	DepartmentCollection = "departments"
	PositionCollection   = "positions"
	AdminCollection      = "admins"
)

// InitMongo connects to MongoDB, verifies the primary and ensures indexes.
func InitMongo(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("error pinging mongo: %w", err)
	}
	utils.LogInfo("Successfully connected to MongoDB", map[string]interface{}{"database": dbName})

	db := client.Database(dbName)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

// EnsureIndexes creates the indexes the repositories rely on.
// The (employee, date) unique index is what makes concurrent first punches safe.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		AttendanceCollection: {
			{
				Keys:    bson.D{{Key: "employee", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("employee_date_unique"),
			},
			{
				Keys:    bson.D{{Key: "date", Value: 1}},
				Options: options.Index().SetName("date_idx"),
			},
		},
		EmployeeCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
			{
				Keys:    bson.D{{Key: "department", Value: 1}},
				Options: options.Index().SetName("department_idx"),
			},
		},
		AdminCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", coll, err)
		}
	}
	return nil
}
