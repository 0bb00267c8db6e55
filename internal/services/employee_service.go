package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"workforce_backend/internal/calendar"
	"workforce_backend/internal/models"
	"workforce_backend/internal/repositories"
	"workforce_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors for Employees ---
var (
	ErrEmployeeNotFound  = fmt.Errorf("%w: employee", ErrAccountNotFound)
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidPositionID = fmt.Errorf("%w: position", ErrInvalidObjectID)
)

// --- Employee DTOs ---
type CreateEmployeeRequest struct {
	EmployeeCode string `json:"employeeId"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	Department   string `json:"department" binding:"omitempty,objectid"`
	Position     string `json:"position" binding:"omitempty,objectid"`
	Password     string `json:"password" binding:"required,min=6"`
	JoinDate     string `json:"joinDate" binding:"omitempty,daykey"`
}

// --- EmployeeService Interface ---
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error)
	ListEmployees(ctx context.Context, department string, page, limit int) ([]models.EmployeeProfile, models.EmployeePagination, error)
}

// --- employeeService Implementation ---
type employeeService struct {
	repo     repositories.EmployeeRepository
	cal      *calendar.Normalizer
	hashCost int
}

// NewEmployeeService creates a new instance of EmployeeService.
func NewEmployeeService(repo repositories.EmployeeRepository, cal *calendar.Normalizer) EmployeeService {
	return &employeeService{repo: repo, cal: cal, hashCost: bcrypt.DefaultCost}
}

func (s *employeeService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	dept, err := parseOptionalID(req.Department, ErrInvalidDepartmentID)
	if err != nil {
		return nil, err
	}
	pos, err := parseOptionalID(req.Position, ErrInvalidPositionID)
	if err != nil {
		return nil, err
	}

	emp := &models.Employee{
		EmployeeCode: strings.TrimSpace(req.EmployeeCode),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		Department:   dept,
		Position:     pos,
		Status:       models.EmployeeStatusActive,
	}
	if req.JoinDate != "" {
		joined, err := s.cal.DayStartFromKey(req.JoinDate)
		if err != nil {
			return nil, fmt.Errorf("%w: joinDate %q", ErrInvalidDateFormat, req.JoinDate)
		}
		emp.JoinDate = &joined
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	emp.PasswordHash = string(hashed)

	if err := s.repo.Create(ctx, emp); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	emp.PasswordHash = ""
	return emp, nil
}

func (s *employeeService) ListEmployees(ctx context.Context, department string, page, limit int) ([]models.EmployeeProfile, models.EmployeePagination, error) {
	page, limit = utils.NormalizePagination(page, limit)
	dept, err := parseOptionalID(department, ErrInvalidDepartmentID)
	if err != nil {
		return nil, models.EmployeePagination{}, err
	}
	profiles, total, err := s.repo.ListProfiles(ctx, dept, page, limit)
	if err != nil {
		return nil, models.EmployeePagination{}, fmt.Errorf("failed to list employees: %w", err)
	}
	return profiles, models.EmployeePagination{
		Page:           page,
		Limit:          limit,
		TotalEmployees: total,
		TotalPages:     utils.TotalPages(total, limit),
	}, nil
}
