package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"workforce_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const employeeColumns = `id, employee_code, name, email, phone, department_id, position_id, status, password_hash, join_date, created_at, updated_at`

const profileSelect = `SELECT e.id, e.name, e.email, e.department_id, COALESCE(d.name, ''), COALESCE(p.name, '')
	FROM employees e
	LEFT JOIN departments d ON d.id = e.department_id
	LEFT JOIN positions p ON p.id = e.position_id`

type pgEmployeeRepository struct {
	db SQLExecutor
}

// NewPgEmployeeRepository creates an EmployeeRepository backed by the employees table.
func NewPgEmployeeRepository(db SQLExecutor) EmployeeRepository {
	return &pgEmployeeRepository{db: db}
}

func scanEmployeeRow(row scanner) (*models.Employee, error) {
	var (
		emp                models.Employee
		id                 string
		department, positn sql.NullString
		joinDate           sql.NullTime
	)
	err := row.Scan(&id, &emp.EmployeeCode, &emp.Name, &emp.Email, &emp.Phone, &department, &positn,
		&emp.Status, &emp.PasswordHash, &joinDate, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning employee: %v", ErrDatabaseError, err)
	}
	if emp.ID, err = parseRowID(id); err != nil {
		return nil, err
	}
	if emp.Department, err = parseNullRowID(department); err != nil {
		return nil, err
	}
	if emp.Position, err = parseNullRowID(positn); err != nil {
		return nil, err
	}
	if joinDate.Valid {
		jd := joinDate.Time.UTC()
		emp.JoinDate = &jd
	}
	return &emp, nil
}

func scanProfileRow(row scanner) (models.EmployeeProfile, error) {
	var (
		p          models.EmployeeProfile
		id         string
		department sql.NullString
	)
	err := row.Scan(&id, &p.Name, &p.Email, &department, &p.Department, &p.Position)
	if err != nil {
		return p, fmt.Errorf("%w: scanning employee profile: %v", ErrDatabaseError, err)
	}
	if p.ID, err = parseRowID(id); err != nil {
		return p, err
	}
	if p.DepartmentID, err = parseNullRowID(department); err != nil {
		return p, err
	}
	return p, nil
}

func (r *pgEmployeeRepository) Create(ctx context.Context, emp *models.Employee) error {
	if emp.ID.IsZero() {
		emp.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	emp.CreatedAt, emp.UpdatedAt = now, now
	emp.Email = strings.ToLower(strings.TrimSpace(emp.Email))

	var joinDate sql.NullTime
	if emp.JoinDate != nil {
		joinDate = sql.NullTime{Time: *emp.JoinDate, Valid: true}
	}

	query := `INSERT INTO employees (` + employeeColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query,
		emp.ID.Hex(), emp.EmployeeCode, emp.Name, emp.Email, emp.Phone,
		nullRowID(emp.Department), nullRowID(emp.Position), emp.Status, emp.PasswordHash,
		joinDate, emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "employees_email_key") {
			return fmt.Errorf("%w: email %s is already registered", ErrDuplicateKey, emp.Email)
		}
		return fmt.Errorf("%w: creating employee: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *pgEmployeeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return scanEmployeeRow(r.db.QueryRowContext(ctx, query, id.Hex()))
}

func (r *pgEmployeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`
	return scanEmployeeRow(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *pgEmployeeRepository) ListIDsByDepartment(ctx context.Context, departmentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM employees WHERE department_id = $1`, departmentID.Hex())
	if err != nil {
		return nil, fmt.Errorf("%w: listing department employees: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	ids := []primitive.ObjectID{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: scanning employee id: %v", ErrDatabaseError, err)
		}
		id, err := parseRowID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating department employees: %v", ErrDatabaseError, err)
	}
	return ids, nil
}

func (r *pgEmployeeRepository) ListProfiles(ctx context.Context, departmentID *primitive.ObjectID, page, limit int) ([]models.EmployeeProfile, int64, error) {
	where := &whereBuilder{}
	if departmentID != nil {
		where.add("e.department_id = ?", departmentID.Hex())
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees e`+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: counting employees: %v", ErrDatabaseError, err)
	}

	limitSQL, args := where.limitClause(page, limit)
	profiles, err := r.queryProfiles(ctx, profileSelect+where.String()+` ORDER BY e.name ASC, e.id ASC`+limitSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *pgEmployeeRepository) FindProfiles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.EmployeeProfile, error) {
	out := make(map[primitive.ObjectID]models.EmployeeProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	where := &whereBuilder{}
	where.addIDs("e.id", ids)
	profiles, err := r.queryProfiles(ctx, profileSelect+where.String(), where.args...)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

func (r *pgEmployeeRepository) queryProfiles(ctx context.Context, query string, args ...interface{}) ([]models.EmployeeProfile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing employee profiles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	profiles := []models.EmployeeProfile{}
	for rows.Next() {
		p, err := scanProfileRow(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating employee profiles: %v", ErrDatabaseError, err)
	}
	return profiles, nil
}
