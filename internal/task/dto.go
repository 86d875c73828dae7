package task

import (
	"strings"
	"time"

	"github.com/maviontech/project-management/internal"
	projectDatamodel "github.com/maviontech/project-management/internal/core/datamodel/project"
)

var validStatuses = map[string]bool{
	"todo":        true,
	"in_progress": true,
	"review":      true,
	"done":        true,
}

var validPriorities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
	"urgent": true,
}

type TaskDTO struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	SubprojectID *int64     `json:"subproject_id,omitempty"`
	AssignedTo   *int64     `json:"assigned_to,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

func (d TaskDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return internal.NewValidationError("task title is required", internal.ErrCodeValidationFailed)
	}
	if d.Status != "" && !validStatuses[d.Status] {
		return internal.NewValidationError("invalid task status", internal.ErrCodeValidationFailed)
	}
	if d.Priority != "" && !validPriorities[d.Priority] {
		return internal.NewValidationError("invalid task priority", internal.ErrCodeValidationFailed)
	}
	return nil
}

func (d TaskDTO) toModel() *projectDatamodel.Task {
	status := d.Status
	if status == "" {
		status = "todo"
	}
	priority := d.Priority
	if priority == "" {
		priority = "medium"
	}
	return &projectDatamodel.Task{
		Title:        d.Title,
		Description:  d.Description,
		Status:       status,
		Priority:     priority,
		SubprojectID: d.SubprojectID,
		AssignedTo:   d.AssignedTo,
		DueDate:      d.DueDate,
	}
}

type AssignDTO struct {
	AssignedTo *int64 `json:"assigned_to"`
}

type CommentDTO struct {
	Text string `json:"text"`
}

func (d CommentDTO) Validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return internal.NewValidationError("comment text is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// Filter narrows task listings. Zero values mean no filtering.
type Filter struct {
	Status     string
	AssignedTo int64
}
