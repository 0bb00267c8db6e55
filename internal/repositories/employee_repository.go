package repositories

import (
	"context"

	"workforce_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmployeeRepository reads and registers employees together with their department and position names.
type EmployeeRepository interface {
	Create(ctx context.Context, emp *models.Employee) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error)
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	ListIDsByDepartment(ctx context.Context, departmentID primitive.ObjectID) ([]primitive.ObjectID, error)
	// ListProfiles pages through employees, optionally in one department, ordered by name.
	ListProfiles(ctx context.Context, departmentID *primitive.ObjectID, page, limit int) ([]models.EmployeeProfile, int64, error)
	// FindProfiles resolves the given ids; unknown ids are absent from the map.
	FindProfiles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.EmployeeProfile, error)
}

// AdminRepository looks up back-office accounts.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}
