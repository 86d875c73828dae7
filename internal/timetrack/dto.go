package timetrack

import (
	"time"

	"github.com/maviontech/project-management/internal"
)

const maxHoursPerEntry = 24

type EntryDTO struct {
	TaskID    int64     `json:"task_id"`
	Hours     float64   `json:"hours"`
	EntryDate time.Time `json:"entry_date"`
}

func (d EntryDTO) Validate() error {
	if d.TaskID <= 0 {
		return internal.NewValidationError("task_id is required", internal.ErrCodeValidationFailed)
	}
	if d.Hours <= 0 || d.Hours > maxHoursPerEntry {
		return internal.NewValidationError("hours must be between 0 and 24", internal.ErrCodeValidationFailed)
	}
	if d.EntryDate.IsZero() {
		return internal.NewValidationError("entry_date is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type StartTimerDTO struct {
	TaskID int64 `json:"task_id"`
}

func (d StartTimerDTO) Validate() error {
	if d.TaskID <= 0 {
		return internal.NewValidationError("task_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
