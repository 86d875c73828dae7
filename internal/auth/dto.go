package auth

import (
	"strings"

	"github.com/maviontech/project-management/internal"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	if d.Password == "" {
		return internal.NewValidationError("password is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RequestResetDTO struct {
	Email string `json:"email"`
}

func (d RequestResetDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type ConfirmResetDTO struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (d ConfirmResetDTO) Validate() error {
	if d.Token == "" {
		return internal.NewValidationError("token is required", internal.ErrCodeValidationFailed)
	}
	if d.NewPassword == "" {
		return internal.NewValidationError("new_password is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	MemberID int64  `json:"member_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Tenant   string `json:"tenant"`
}
