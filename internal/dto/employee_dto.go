package dto

import (
	"time"

	"github.com/google/uuid"

	"brewpos/internal/model"
)

type CreateEmployeeRequest struct {
	Username string     `json:"username" binding:"required,min=3,max=64"`
	Password string     `json:"password" binding:"required,min=8"`
	Email    *string    `json:"email,omitempty" binding:"omitempty,email"`
	Role     string     `json:"role" binding:"required,oneof=cashier supervisor admin"`
	OrgID    *uuid.UUID `json:"org_id,omitempty"`
}

type UpdateEmployeeRequest struct {
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Role     *string `json:"role,omitempty" binding:"omitempty,oneof=cashier supervisor admin"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=8"`
	Active   *bool   `json:"active,omitempty"`
}

type EmployeeResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     *string    `json:"email,omitempty"`
	Role      string     `json:"role"`
	OrgID     *uuid.UUID `json:"org_id,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

func ToEmployeeResponse(e *model.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		Username:  e.Username,
		Email:     e.Email,
		Role:      e.Role,
		OrgID:     e.OrgID,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
	}
}
