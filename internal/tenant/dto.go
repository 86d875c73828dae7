package tenant

import "strings"

// CreateTenantDTO is the operator-facing payload for registering a tenant.
type CreateTenantDTO struct {
	ClientName string `json:"client_name"`
	Domain     string `json:"domain"`
	DBName     string `json:"db_name"`
	DBHost     string `json:"db_host"`
	DBPort     int    `json:"db_port"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateTenantDTO) Validate() error {
	if d.ClientName == "" {
		return ValidationError{Msg: "client_name is required"}
	}
	if d.Domain == "" {
		return ValidationError{Msg: "domain is required"}
	}
	if strings.ContainsAny(d.Domain, "@ ") {
		return ValidationError{Msg: "domain must not contain '@' or spaces"}
	}
	if d.DBName == "" {
		return ValidationError{Msg: "db_name is required"}
	}
	for _, r := range d.DBName {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ValidationError{Msg: "db_name may only contain lowercase letters, digits and underscores"}
		}
	}
	return nil
}
