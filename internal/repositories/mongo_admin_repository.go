package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"workforce_backend/internal/database"
	"workforce_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoAdminRepository struct {
	coll *mongo.Collection
}

func NewMongoAdminRepository(db *mongo.Database) AdminRepository {
	return &mongoAdminRepository{coll: db.Collection(database.AdminCollection)}
}

func (r *mongoAdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *mongoAdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoAdminRepository) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var admin models.Admin
	if err := r.coll.FindOne(ctx, filter).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding admin: %v", ErrDatabaseError, err)
	}
	return &admin, nil
}
