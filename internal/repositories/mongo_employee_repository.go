package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"workforce_backend/internal/database"
	"workforce_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEmployeeRepository struct {
	coll *mongo.Collection
}

// NewMongoEmployeeRepository creates an EmployeeRepository backed by the employees collection.
func NewMongoEmployeeRepository(db *mongo.Database) EmployeeRepository {
	return &mongoEmployeeRepository{coll: db.Collection(database.EmployeeCollection)}
}

// profileDoc is the projection produced by profilePipeline.
type profileDoc struct {
	ID           primitive.ObjectID  `bson:"_id"`
	Name         string              `bson:"name"`
	Email        string              `bson:"email"`
	DepartmentID *primitive.ObjectID `bson:"department,omitempty"`
	Department   string              `bson:"departmentName"`
	Position     string              `bson:"positionName"`
}

func (d profileDoc) toModel() models.EmployeeProfile {
	return models.EmployeeProfile{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		DepartmentID: d.DepartmentID,
		Department:   d.Department,
		Position:     d.Position,
	}
}

func (r *mongoEmployeeRepository) Create(ctx context.Context, emp *models.Employee) error {
	if emp.ID.IsZero() {
		emp.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	emp.CreatedAt, emp.UpdatedAt = now, now
	emp.Email = strings.ToLower(strings.TrimSpace(emp.Email))

	if _, err := r.coll.InsertOne(ctx, emp); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: email %s is already registered", ErrDuplicateKey, emp.Email)
		}
		return fmt.Errorf("%w: creating employee: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *mongoEmployeeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoEmployeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *mongoEmployeeRepository) findOne(ctx context.Context, filter bson.M) (*models.Employee, error) {
	var emp models.Employee
	if err := r.coll.FindOne(ctx, filter).Decode(&emp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding employee: %v", ErrDatabaseError, err)
	}
	return &emp, nil
}

func (r *mongoEmployeeRepository) ListIDsByDepartment(ctx context.Context, departmentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := r.coll.Find(ctx, bson.M{"department": departmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: listing department employees: %v", ErrDatabaseError, err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decoding department employees: %v", ErrDatabaseError, err)
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *mongoEmployeeRepository) ListProfiles(ctx context.Context, departmentID *primitive.ObjectID, page, limit int) ([]models.EmployeeProfile, int64, error) {
	match := bson.M{}
	if departmentID != nil {
		match["department"] = *departmentID
	}

	total, err := r.coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: counting employees: %v", ErrDatabaseError, err)
	}

	stages := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		stages = append(stages,
			bson.D{{Key: "$skip", Value: pageOffset(page, limit)}},
			bson.D{{Key: "$limit", Value: int64(limit)}},
		)
	}
	profiles, err := r.aggregateProfiles(ctx, append(stages, profileLookupStages()...))
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *mongoEmployeeRepository) FindProfiles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.EmployeeProfile, error) {
	out := make(map[primitive.ObjectID]models.EmployeeProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	stages := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": ids}}}}}
	profiles, err := r.aggregateProfiles(ctx, append(stages, profileLookupStages()...))
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

func (r *mongoEmployeeRepository) aggregateProfiles(ctx context.Context, pipeline mongo.Pipeline) ([]models.EmployeeProfile, error) {
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating employee profiles: %v", ErrDatabaseError, err)
	}
	var docs []profileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decoding employee profiles: %v", ErrDatabaseError, err)
	}
	profiles := make([]models.EmployeeProfile, 0, len(docs))
	for _, d := range docs {
		profiles = append(profiles, d.toModel())
	}
	return profiles, nil
}

// profileLookupStages joins department and position names onto employee documents.
func profileLookupStages() mongo.Pipeline {
	firstName := func(field string) bson.D {
		return bson.D{{Key: "$ifNull", Value: bson.A{
			bson.D{{Key: "$arrayElemAt", Value: bson.A{"$" + field + ".name", 0}}},
			"",
		}}}
	}
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.DepartmentCollection},
			{Key: "localField", Value: "department"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "dept"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.PositionCollection},
			{Key: "localField", Value: "position"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "pos"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "email", Value: 1},
			{Key: "department", Value: 1},
			{Key: "departmentName", Value: firstName("dept")},
			{Key: "positionName", Value: firstName("pos")},
		}}},
	}
}
