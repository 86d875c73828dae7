package chat

import (
	"strings"

	"github.com/maviontech/project-management/internal"
)

const maxMessageLength = 4000

type MessageDTO struct {
	Body string `json:"body"`
}

func (d MessageDTO) Validate() error {
	if strings.TrimSpace(d.Body) == "" {
		return internal.NewValidationError("message body is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Body) > maxMessageLength {
		return internal.NewValidationError("message body is too long", internal.ErrCodeValidationFailed)
	}
	return nil
}
