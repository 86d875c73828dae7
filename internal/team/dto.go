package team

import (
	"strings"

	"github.com/maviontech/project-management/internal"
)

type TeamDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TeamLeadID  *int64 `json:"team_lead_id,omitempty"`
}

func (d TeamDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return internal.NewValidationError("team name is required", internal.ErrCodeValidationFailed)
	}
	if Slugify(d.Name) == "" {
		return internal.NewValidationError("team name must contain letters or digits", internal.ErrCodeValidationFailed)
	}
	return nil
}

type MembershipDTO struct {
	MemberID int64  `json:"member_id"`
	TeamRole string `json:"team_role"`
}

func (d MembershipDTO) Validate() error {
	if d.MemberID <= 0 {
		return internal.NewValidationError("member_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
