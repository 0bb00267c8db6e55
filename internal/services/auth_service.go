package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workforce_backend/internal/models"
	"workforce_backend/internal/repositories"
	"workforce_backend/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors for Auth ---
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Auth DTOs ---

// AccountView is the caller's account without credentials.
type AccountView struct {
	ID         primitive.ObjectID  `json:"_id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Type       string              `json:"type"`
	Role       string              `json:"role"`
	Department *primitive.ObjectID `json:"department,omitempty"`
}

type AuthResponse struct {
	AccessToken string      `json:"token"`
	ExpiresIn   int64       `json:"expiresIn"` // seconds
	Account     AccountView `json:"user"`
}

// --- AuthService Interface ---
type AuthService interface {
	LoginEmployee(ctx context.Context, creds models.Credentials) (*AuthResponse, error)
	LoginAdmin(ctx context.Context, creds models.Credentials) (*AuthResponse, error)
	Me(ctx context.Context, identity models.Identity) (*AccountView, error)
}

// --- authService Implementation ---
type authService struct {
	employeeRepo repositories.EmployeeRepository
	adminRepo    repositories.AdminRepository
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(er repositories.EmployeeRepository, ar repositories.AdminRepository) AuthService {
	return &authService{employeeRepo: er, adminRepo: ar}
}

func (s *authService) LoginEmployee(ctx context.Context, creds models.Credentials) (*AuthResponse, error) {
	emp, err := s.employeeRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}
	if emp.Status == models.EmployeeStatusInactive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return issueToken(employeeAccount(emp))
}

func (s *authService) LoginAdmin(ctx context.Context, creds models.Credentials) (*AuthResponse, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}
	if !admin.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return issueToken(adminAccount(admin))
}

// Me resolves the token identity back to its stored account.
func (s *authService) Me(ctx context.Context, identity models.Identity) (*AccountView, error) {
	id, err := primitive.ObjectIDFromHex(identity.ID)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	var account AccountView
	switch identity.Type {
	case models.AccountTypeAdmin:
		admin, err := s.adminRepo.FindByID(ctx, id)
		if err != nil {
			return nil, accountLookupError(err)
		}
		account = adminAccount(admin)
	default:
		emp, err := s.employeeRepo.FindByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		if err != nil {
			return nil, accountLookupError(err)
		}
		account = employeeAccount(emp)
	}
	return &account, nil
}

func accountLookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrAccountNotFound
	}
	return fmt.Errorf("failed to retrieve account: %w", err)
}

func employeeAccount(emp *models.Employee) AccountView {
	return AccountView{
		ID:         emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		Type:       models.AccountTypeEmployee,
		Role:       models.RoleEmployee,
		Department: emp.Department,
	}
}

func adminAccount(admin *models.Admin) AccountView {
	role := admin.Role
	if role == "" {
		role = models.RoleAdmin
	}
	return AccountView{
		ID:    admin.ID,
		Name:  admin.Name,
		Email: admin.Email,
		Type:  models.AccountTypeAdmin,
		Role:  role,
	}
}

func issueToken(account AccountView) (*AuthResponse, error) {
	token, err := utils.GenerateAccessToken(account.ID.Hex(), account.Type, account.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return &AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(utils.AccessTokenTTL() / time.Second),
		Account:     account,
	}, nil
}
