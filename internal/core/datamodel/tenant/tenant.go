package tenant

import "time"

// Client is one row of the shared clients_master registry. The db_user and
// db_password columns are populated lazily by the provisioner; until then a
// login against this tenant is a configuration error.
type Client struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	ClientName    string    `gorm:"column:client_name;not null" json:"client_name"`
	DomainPostfix string    `gorm:"column:domain_postfix;uniqueIndex;not null" json:"domain_postfix"`
	DBName        string    `gorm:"column:db_name;uniqueIndex;not null" json:"db_name"`
	DBHost        string    `gorm:"column:db_host;default:'127.0.0.1'" json:"db_host"`
	DBPort        int       `gorm:"column:db_port;default:3306" json:"db_port"`
	DBEngine      string    `gorm:"column:db_engine;default:'mysql'" json:"db_engine"`
	DBUser        string    `gorm:"column:db_user" json:"-"`
	DBPassword    string    `gorm:"column:db_password" json:"-"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients_master"
}

// Config is the resolved connection config for one tenant database. It is
// what gets stored in the session after login and passed explicitly through
// every call chain; there is no ambient "current tenant" state.
type Config struct {
	Engine        string `json:"engine"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Name          string `json:"name"`
	User          string `json:"user"`
	Password      string `json:"password"`
	DomainPostfix string `json:"domain_postfix"`
}

func (c *Client) Config() Config {
	return Config{
		Engine:        c.DBEngine,
		Host:          c.DBHost,
		Port:          c.DBPort,
		Name:          c.DBName,
		User:          c.DBUser,
		Password:      c.DBPassword,
		DomainPostfix: c.DomainPostfix,
	}
}

// Complete reports whether the tenant has provisioned credentials. An
// incomplete config must never fall back to shared admin credentials.
func (c Config) Complete() bool {
	return c.User != "" && c.Password != ""
}
