package member

import (
	"encoding/json"
	"strings"

	"github.com/maviontech/project-management/internal"
	memberDatamodel "github.com/maviontech/project-management/internal/core/datamodel/member"
)

type MemberDTO struct {
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Phone     string          `json:"phone"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

func (d MemberDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	if strings.Count(d.Email, "@") != 1 {
		return internal.NewValidationError("email address is malformed", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.FirstName) == "" {
		return internal.NewValidationError("first name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func (d MemberDTO) toModel() *memberDatamodel.Member {
	return &memberDatamodel.Member{
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     d.Phone,
		Meta:      d.Meta,
	}
}
