package service

// auth_service.go issues and refreshes JWTs and owns the employee lifecycle.
// Passwords are bcrypt-hashed; login failures always return the same
// AuthError so usernames cannot be enumerated.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"brewpos/internal/apierror"
	"brewpos/internal/dto"
	"brewpos/internal/model"
	"brewpos/internal/repository"
)

// Claims is the JWT payload for both access and refresh tokens.
type Claims struct {
	EmployeeID string `json:"employee_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	TokenType  string `json:"token_type"` // "access" | "refresh"
	jwt.RegisteredClaims
}

type AuthService struct {
	employees  repository.EmployeeRepository
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(employees repository.EmployeeRepository, jwtSecret string, accessHours, refreshHours int) *AuthService {
	return &AuthService{
		employees:  employees,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  time.Duration(accessHours) * time.Hour,
		refreshTTL: time.Duration(refreshHours) * time.Hour,
	}
}

// Login verifies credentials and returns a token pair.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	emp, err := s.employees.FindByUsername(ctx, req.Username)
	if err != nil || !emp.Active {
		return nil, &apierror.AuthError{Reason: "invalid credentials"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &apierror.AuthError{Reason: "invalid credentials"}
	}

	access, err := s.signToken(emp, "access", s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.signToken(emp, "refresh", s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	log.Info().Str("username", emp.Username).Msg("employee logged in")
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		Employee:     dto.ToEmployeeResponse(emp),
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// employee is re-read so a deactivation takes effect at the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	claims, err := s.ParseToken(refreshToken)
	if err != nil {
		return nil, &apierror.AuthError{Reason: "invalid refresh token"}
	}
	if claims.TokenType != "refresh" {
		return nil, &apierror.AuthError{Reason: "not a refresh token"}
	}

	id, err := uuid.Parse(claims.EmployeeID)
	if err != nil {
		return nil, &apierror.AuthError{Reason: "invalid refresh token"}
	}
	emp, err := s.employees.FindByID(ctx, id)
	if err != nil || !emp.Active {
		return nil, &apierror.AuthError{Reason: "account no longer active"}
	}

	access, err := s.signToken(emp, "access", s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &dto.RefreshResponse{
		AccessToken: access,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}

// ParseToken validates signature and expiry and returns the claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) signToken(emp *model.Employee, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		EmployeeID: emp.ID.String(),
		Username:   emp.Username,
		Role:       emp.Role,
		TokenType:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   emp.ID.String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// CreateEmployee registers a new account (admin only, enforced at the router).
func (s *AuthService) CreateEmployee(ctx context.Context, req *dto.CreateEmployeeRequest) (*model.Employee, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	emp := &model.Employee{
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		Role:         req.Role,
		OrgID:        req.OrgID,
		Active:       true,
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, &apierror.PersistenceError{Op: "save", Err: err}
	}
	log.Info().Str("username", emp.Username).Str("role", emp.Role).Msg("employee created")
	return emp, nil
}

// UpdateEmployee patches the mutable fields of an account.
func (s *AuthService) UpdateEmployee(ctx context.Context, id uuid.UUID, req *dto.UpdateEmployeeRequest) (*model.Employee, error) {
	emp, err := s.findEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		emp.Email = req.Email
	}
	if req.Role != nil {
		emp.Role = *req.Role
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		emp.PasswordHash = string(hash)
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, &apierror.PersistenceError{Op: "save", Err: err}
	}
	return emp, nil
}

// ListEmployees returns all accounts; inactive ones only when asked.
func (s *AuthService) ListEmployees(ctx context.Context, includeInactive bool) ([]model.Employee, error) {
	return s.employees.List(ctx, includeInactive)
}

// GetEmployee looks up one account.
func (s *AuthService) GetEmployee(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	return s.findEmployee(ctx, id)
}

// DeactivateEmployee soft-deletes an account; existing tokens expire naturally.
func (s *AuthService) DeactivateEmployee(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findEmployee(ctx, id); err != nil {
		return err
	}
	return s.employees.SoftDelete(ctx, id)
}

// ReactivateEmployee re-enables a deactivated account.
func (s *AuthService) ReactivateEmployee(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findEmployee(ctx, id); err != nil {
		return err
	}
	return s.employees.Reactivate(ctx, id)
}

func (s *AuthService) findEmployee(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	emp, err := s.employees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierror.NotFoundError{Kind: "employee", ID: id.String()}
		}
		return nil, &apierror.PersistenceError{Op: "load", Err: err}
	}
	return emp, nil
}
