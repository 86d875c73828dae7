package project

import (
	"strings"
	"time"

	"github.com/maviontech/project-management/internal"
	projectDatamodel "github.com/maviontech/project-management/internal/core/datamodel/project"
)

var validStatuses = map[string]bool{
	"active":    true,
	"on_hold":   true,
	"completed": true,
	"archived":  true,
}

type ProjectDTO struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      string     `json:"status"`
}

func (d ProjectDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return internal.NewValidationError("project name is required", internal.ErrCodeValidationFailed)
	}
	if d.Status != "" && !validStatuses[d.Status] {
		return internal.NewValidationError("invalid project status", internal.ErrCodeValidationFailed)
	}
	if d.StartDate != nil && d.EndDate != nil && d.EndDate.Before(*d.StartDate) {
		return internal.NewValidationError("end date cannot precede start date", internal.ErrCodeValidationFailed)
	}
	return nil
}

func (d ProjectDTO) toModel() *projectDatamodel.Project {
	status := d.Status
	if status == "" {
		status = "active"
	}
	return &projectDatamodel.Project{
		Name:        d.Name,
		Description: d.Description,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Status:      status,
	}
}

type SubprojectDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d SubprojectDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return internal.NewValidationError("subproject name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
