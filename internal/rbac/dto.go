package rbac

type RoleDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d RoleDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if len(d.Name) > 100 {
		return ValidationError{Msg: "name must be at most 100 characters"}
	}
	return nil
}

type SetRolePermissionsDTO struct {
	PermissionIDs []int64 `json:"permission_ids"`
}

type AssignTenantRoleDTO struct {
	MemberID int64 `json:"member_id"`
	RoleID   int64 `json:"role_id"`
}

func (d AssignTenantRoleDTO) Validate() error {
	if d.MemberID <= 0 {
		return ValidationError{Msg: "member_id is required"}
	}
	if d.RoleID <= 0 {
		return ValidationError{Msg: "role_id is required"}
	}
	return nil
}

type AssignProjectRoleDTO struct {
	ProjectID int64 `json:"project_id"`
	MemberID  int64 `json:"member_id"`
	RoleID    int64 `json:"role_id"`
}

func (d AssignProjectRoleDTO) Validate() error {
	if d.ProjectID <= 0 {
		return ValidationError{Msg: "project_id is required"}
	}
	if d.MemberID <= 0 {
		return ValidationError{Msg: "member_id is required"}
	}
	if d.RoleID <= 0 {
		return ValidationError{Msg: "role_id is required"}
	}
	return nil
}
