package project

import "time"

type Project struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	Status      string     `db:"status" json:"status"`
	CreatedBy   *int64     `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type Subproject struct {
	ID          int64     `db:"id" json:"id"`
	ProjectID   int64     `db:"project_id" json:"project_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Task struct {
	ID           int64      `db:"id" json:"id"`
	ProjectID    int64      `db:"project_id" json:"project_id"`
	SubprojectID *int64     `db:"subproject_id" json:"subproject_id,omitempty"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Status       string     `db:"status" json:"status"`
	Priority     string     `db:"priority" json:"priority"`
	AssignedTo   *int64     `db:"assigned_to" json:"assigned_to,omitempty"`
	CreatedBy    *int64     `db:"created_by" json:"created_by,omitempty"`
	DueDate      *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type Comment struct {
	ID          int64     `db:"id" json:"id"`
	TaskID      int64     `db:"task_id" json:"task_id"`
	CommenterID int64     `db:"commenter_id" json:"commenter_id"`
	CommentText string    `db:"comment_text" json:"comment_text"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
