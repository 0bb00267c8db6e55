package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"workforce_backend/internal/calendar"
	"workforce_backend/internal/models"
	"workforce_backend/internal/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testIST = time.FixedZone("IST", calendar.ISTOffset)

func ist(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, testIST)
}

// memAttendanceRepo mimics the unique (employee, date) key and the version check.
type memAttendanceRepo struct {
	mu        sync.Mutex
	records   map[primitive.ObjectID]*models.AttendanceRecord
	findCalls int

	// conflicts makes the next N updates fail with ErrVersionConflict.
	conflicts int
	// failWith is returned by every call when set.
	failWith error
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: map[primitive.ObjectID]*models.AttendanceRecord{}}
}

func (r *memAttendanceRepo) seed(employee primitive.ObjectID, date time.Time, hours float64, sessions ...models.Session) *models.AttendanceRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := &models.AttendanceRecord{
		ID:           primitive.NewObjectID(),
		Employee:     employee,
		Date:         date.UTC(),
		Sessions:     append([]models.Session{}, sessions...),
		WorkingHours: hours,
		Version:      1,
	}
	r.records[rec.ID] = rec
	return rec.Clone()
}

func (r *memAttendanceRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *memAttendanceRepo) FindByEmployeeAndDate(_ context.Context, employeeID primitive.ObjectID, date time.Time) (*models.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, rec := range r.records {
		if rec.Employee == employeeID && rec.Date.Equal(date) {
			return rec.Clone(), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memAttendanceRepo) Create(_ context.Context, rec *models.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.Employee == rec.Employee && existing.Date.Equal(rec.Date) {
			return repositories.ErrDuplicateKey
		}
	}
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	rec.Version = 1
	r.records[rec.ID] = rec.Clone()
	return nil
}

func (r *memAttendanceRepo) UpdateSessions(_ context.Context, rec *models.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts > 0 {
		r.conflicts--
		return repositories.ErrVersionConflict
	}
	stored, ok := r.records[rec.ID]
	if !ok || stored.Version != rec.Version {
		return repositories.ErrVersionConflict
	}
	rec.Version++
	r.records[rec.ID] = rec.Clone()
	return nil
}

func (r *memAttendanceRepo) matches(f repositories.AttendanceFilter, rec *models.AttendanceRecord) bool {
	if f.EmployeeIDs != nil {
		found := false
		for _, id := range f.EmployeeIDs {
			if id == rec.Employee {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && rec.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !rec.Date.Before(*f.To) {
		return false
	}
	return true
}

func (r *memAttendanceRepo) Find(_ context.Context, f repositories.AttendanceFilter, page, limit int) ([]models.AttendanceRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.failWith != nil {
		return nil, 0, r.failWith
	}
	var out []models.AttendanceRecord
	for _, rec := range r.records {
		if r.matches(f, rec) {
			out = append(out, *rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			if f.Ascending {
				return out[i].Date.Before(out[j].Date)
			}
			return out[i].Date.After(out[j].Date)
		}
		if f.Ascending {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	total := int64(len(out))
	if limit > 0 {
		start := (page - 1) * limit
		if start > len(out) {
			start = len(out)
		}
		end := start + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	if out == nil {
		out = []models.AttendanceRecord{}
	}
	return out, total, nil
}

func (r *memAttendanceRepo) SummarizeByEmployee(_ context.Context, from, to time.Time, ids []primitive.ObjectID) ([]models.EmployeeAttendanceTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := repositories.AttendanceFilter{EmployeeIDs: ids, From: &from, To: &to}
	byEmp := map[primitive.ObjectID]*models.EmployeeAttendanceTotals{}
	for _, rec := range r.records {
		if !r.matches(f, rec) {
			continue
		}
		t, ok := byEmp[rec.Employee]
		if !ok {
			t = &models.EmployeeAttendanceTotals{EmployeeID: rec.Employee}
			byEmp[rec.Employee] = t
		}
		t.PresentDays++
		t.TotalWorkingHours += rec.WorkingHours
	}
	out := []models.EmployeeAttendanceTotals{}
	for _, t := range byEmp {
		out = append(out, *t)
	}
	return out, nil
}

type memEmployeeRepo struct {
	mu          sync.Mutex
	employees   []models.Employee
	departments map[primitive.ObjectID]string
	positions   map[primitive.ObjectID]string
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{
		departments: map[primitive.ObjectID]string{},
		positions:   map[primitive.ObjectID]string{},
	}
}

func (r *memEmployeeRepo) add(name string, dept *primitive.ObjectID) models.Employee {
	r.mu.Lock()
	defer r.mu.Unlock()
	emp := models.Employee{ID: primitive.NewObjectID(), Name: name, Email: name + "@example.com", Department: dept, Status: models.EmployeeStatusActive}
	r.employees = append(r.employees, emp)
	return emp
}

func (r *memEmployeeRepo) Create(_ context.Context, emp *models.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if e.Email == emp.Email {
			return repositories.ErrDuplicateKey
		}
	}
	if emp.ID.IsZero() {
		emp.ID = primitive.NewObjectID()
	}
	r.employees = append(r.employees, *emp)
	return nil
}

func (r *memEmployeeRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memEmployeeRepo) FindByEmail(_ context.Context, email string) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if e.Email == email {
			cp := e
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memEmployeeRepo) ListIDsByDepartment(_ context.Context, dept primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []primitive.ObjectID{}
	for _, e := range r.employees {
		if e.Department != nil && *e.Department == dept {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

func (r *memEmployeeRepo) profile(e models.Employee) models.EmployeeProfile {
	p := models.EmployeeProfile{ID: e.ID, Name: e.Name, Email: e.Email, DepartmentID: e.Department}
	if e.Department != nil {
		p.Department = r.departments[*e.Department]
	}
	if e.Position != nil {
		p.Position = r.positions[*e.Position]
	}
	return p
}

func (r *memEmployeeRepo) ListProfiles(_ context.Context, dept *primitive.ObjectID, page, limit int) ([]models.EmployeeProfile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.EmployeeProfile
	for _, e := range r.employees {
		if dept != nil && (e.Department == nil || *e.Department != *dept) {
			continue
		}
		all = append(all, r.profile(e))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if limit > 0 {
		start := (page - 1) * limit
		if start > len(all) {
			start = len(all)
		}
		end := start + limit
		if end > len(all) {
			end = len(all)
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (r *memEmployeeRepo) FindProfiles(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.EmployeeProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[primitive.ObjectID]models.EmployeeProfile{}
	for _, id := range ids {
		for _, e := range r.employees {
			if e.ID == id {
				out[id] = r.profile(e)
			}
		}
	}
	return out, nil
}

type memAdminRepo struct {
	admins []models.Admin
}

func (r *memAdminRepo) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	for _, a := range r.admins {
		if a.Email == email {
			cp := a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memAdminRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	for _, a := range r.admins {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// memCache stores JSON like the redis cache does.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, target interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, target)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}
