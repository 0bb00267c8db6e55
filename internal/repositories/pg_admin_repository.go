package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"workforce_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type pgAdminRepository struct {
	db SQLExecutor
}

func NewPgAdminRepository(db SQLExecutor) AdminRepository {
	return &pgAdminRepository{db: db}
}

func (r *pgAdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, `WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *pgAdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return r.findOne(ctx, `WHERE id = $1`, id.Hex())
}

func (r *pgAdminRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.Admin, error) {
	query := `SELECT id, name, email, password_hash, role, active, created_at, updated_at FROM admins ` + where
	var (
		admin models.Admin
		id    string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&id, &admin.Name, &admin.Email, &admin.PasswordHash, &admin.Role, &admin.Active, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding admin: %v", ErrDatabaseError, err)
	}
	if admin.ID, err = parseRowID(id); err != nil {
		return nil, err
	}
	return &admin, nil
}
