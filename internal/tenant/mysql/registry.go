package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/maviontech/project-management/internal"
	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
)

// RegistryRepository implements tenant.Registry over the clients_master
// table using GORM.
type RegistryRepository struct {
	db *gorm.DB
}

func NewRegistryRepository(db *gorm.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

func (r *RegistryRepository) GetByDomainPostfix(ctx context.Context, postfix string) (*tenantDatamodel.Client, error) {
	var client tenantDatamodel.Client
	err := r.db.WithContext(ctx).Where("domain_postfix = ?", postfix).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTenantNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *RegistryRepository) GetByID(ctx context.Context, id int64) (*tenantDatamodel.Client, error) {
	var client tenantDatamodel.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTenantNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *RegistryRepository) List(ctx context.Context) ([]*tenantDatamodel.Client, error) {
	var clients []*tenantDatamodel.Client
	err := r.db.WithContext(ctx).Order("id ASC").Find(&clients).Error
	return clients, err
}

func (r *RegistryRepository) ExistsByDomainOrDBName(ctx context.Context, postfix, dbName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&tenantDatamodel.Client{}).
		Where("domain_postfix = ? OR db_name = ?", postfix, dbName).
		Count(&count).Error
	return count > 0, err
}

func (r *RegistryRepository) Create(ctx context.Context, client *tenantDatamodel.Client) error {
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	return r.db.WithContext(ctx).Create(client).Error
}

// UpdateCredentials stores the provisioned db user/password for a tenant.
// Written only by the provisioning flow.
func (r *RegistryRepository) UpdateCredentials(ctx context.Context, id int64, dbUser, dbPassword string) error {
	return r.db.WithContext(ctx).
		Model(&tenantDatamodel.Client{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"db_user":     dbUser,
			"db_password": dbPassword,
			"updated_at":  time.Now(),
		}).Error
}
