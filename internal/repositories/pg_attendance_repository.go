package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"workforce_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const attendanceColumns = `id, employee_id, date, sessions, working_hours, version, created_at, updated_at`

type pgAttendanceRepository struct {
	db SQLExecutor
}

// NewPgAttendanceRepository creates an AttendanceRepository backed by the attendances table.
func NewPgAttendanceRepository(db SQLExecutor) AttendanceRepository {
	return &pgAttendanceRepository{db: db}
}

func scanAttendanceRow(row scanner) (*models.AttendanceRecord, error) {
	var (
		rec          models.AttendanceRecord
		id, employee string
		sessionsJSON []byte
	)
	err := row.Scan(&id, &employee, &rec.Date, &sessionsJSON, &rec.WorkingHours, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning attendance: %v", ErrDatabaseError, err)
	}
	if rec.ID, err = parseRowID(id); err != nil {
		return nil, err
	}
	if rec.Employee, err = parseRowID(employee); err != nil {
		return nil, err
	}
	rec.Sessions = []models.Session{}
	if len(sessionsJSON) > 0 {
		if err := json.Unmarshal(sessionsJSON, &rec.Sessions); err != nil {
			return nil, fmt.Errorf("%w: decoding sessions of %s: %v", ErrDatabaseError, id, err)
		}
	}
	rec.Date = rec.Date.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}

func (r *pgAttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date time.Time) (*models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE employee_id = $1 AND date = $2`
	return scanAttendanceRow(r.db.QueryRowContext(ctx, query, employeeID.Hex(), date))
}

func (r *pgAttendanceRepository) Create(ctx context.Context, rec *models.AttendanceRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.Sessions == nil {
		rec.Sessions = []models.Session{}
	}
	sessionsJSON, err := json.Marshal(rec.Sessions)
	if err != nil {
		return fmt.Errorf("%w: encoding sessions: %v", ErrDatabaseError, err)
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	rec.Version = 1

	query := `INSERT INTO attendances (` + attendanceColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID.Hex(), rec.Employee.Hex(), rec.Date, sessionsJSON, rec.WorkingHours, rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "attendances_employee_date_key") {
			return fmt.Errorf("%w: attendance for employee %s on %s already exists", ErrDuplicateKey, rec.Employee.Hex(), rec.Date.Format(time.RFC3339))
		}
		return fmt.Errorf("%w: creating attendance: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *pgAttendanceRepository) UpdateSessions(ctx context.Context, rec *models.AttendanceRecord) error {
	sessionsJSON, err := json.Marshal(rec.Sessions)
	if err != nil {
		return fmt.Errorf("%w: encoding sessions: %v", ErrDatabaseError, err)
	}
	now := time.Now().UTC()
	query := `UPDATE attendances
	          SET sessions = $1, working_hours = $2, version = version + 1, updated_at = $3
	          WHERE id = $4 AND version = $5`
	res, err := r.db.ExecContext(ctx, query, sessionsJSON, rec.WorkingHours, now, rec.ID.Hex(), rec.Version)
	if err != nil {
		return fmt.Errorf("%w: updating attendance %s: %v", ErrDatabaseError, rec.ID.Hex(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: reading affected rows: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	rec.Version++
	rec.UpdatedAt = now
	return nil
}

// buildAttendanceWhere renders the filter as a WHERE clause.
func buildAttendanceWhere(f AttendanceFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.EmployeeIDs != nil {
		w.addIDs("employee_id", f.EmployeeIDs)
	}
	if f.From != nil {
		w.add("date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("date < ?", *f.To)
	}
	return w
}

func (r *pgAttendanceRepository) Find(ctx context.Context, filter AttendanceFilter, page, limit int) ([]models.AttendanceRecord, int64, error) {
	if filter.matchesNothing() {
		return []models.AttendanceRecord{}, 0, nil
	}
	where := buildAttendanceWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendances`+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: counting attendance: %v", ErrDatabaseError, err)
	}

	order := " ORDER BY date DESC, id DESC"
	if filter.Ascending {
		order = " ORDER BY date ASC, id ASC"
	}
	limitSQL, args := where.limitClause(page, limit)
	query := `SELECT ` + attendanceColumns + ` FROM attendances` + where.String() + order + limitSQL

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing attendance: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	records := []models.AttendanceRecord{}
	for rows.Next() {
		rec, err := scanAttendanceRow(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating attendance: %v", ErrDatabaseError, err)
	}
	return records, total, nil
}

func (r *pgAttendanceRepository) SummarizeByEmployee(ctx context.Context, from, to time.Time, employeeIDs []primitive.ObjectID) ([]models.EmployeeAttendanceTotals, error) {
	if employeeIDs != nil && len(employeeIDs) == 0 {
		return []models.EmployeeAttendanceTotals{}, nil
	}
	where := buildAttendanceWhere(AttendanceFilter{EmployeeIDs: employeeIDs, From: &from, To: &to})
	query := `SELECT employee_id, COUNT(*), COALESCE(SUM(working_hours), 0)
	          FROM attendances` + where.String() + ` GROUP BY employee_id`

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating attendance: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	totals := []models.EmployeeAttendanceTotals{}
	for rows.Next() {
		var (
			id string
			t  models.EmployeeAttendanceTotals
		)
		if err := rows.Scan(&id, &t.PresentDays, &t.TotalWorkingHours); err != nil {
			return nil, fmt.Errorf("%w: scanning attendance totals: %v", ErrDatabaseError, err)
		}
		if t.EmployeeID, err = parseRowID(id); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating attendance totals: %v", ErrDatabaseError, err)
	}
	return totals, nil
}
