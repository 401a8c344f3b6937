package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	db *gorm.DB
}

// NewMySQLGormDB connects to MySQL through GORM
func NewMySQLGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, password, host, port, dbname)
	return openGorm(mysql.Open(dsn))
}

// NewPostgresGormDB connects to the hosted Postgres database through GORM
func NewPostgresGormDB(host, port, user, password, dbname, sslmode string) (*GormDB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
	return openGorm(postgres.Open(dsn))
}

func openGorm(dialector gorm.Dialector) (*GormDB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.Tenant{},
		&models.DeleteLog{},
	)
}

// InsertProperty creates a property row. The ID is generated when empty.
func (gdb *GormDB) InsertProperty(ctx context.Context, p *models.Property) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.ApplyDefaults()

	if err := gdb.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

// UpdatePropertyImages writes image urls and paths in a single statement
func (gdb *GormDB) UpdatePropertyImages(ctx context.Context, id string, urls, paths []string) error {
	result := gdb.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"image_urls":  models.StringList(urls),
			"image_paths": models.StringList(paths),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update property images: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProperty removes a property and its tenants
func (gdb *GormDB) DeleteProperty(ctx context.Context, id string) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.Tenant{}).Error; err != nil {
			return fmt.Errorf("failed to delete tenants: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Property{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete property: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetPropertyByID retrieves a property with its tenants
func (gdb *GormDB) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	err := gdb.db.WithContext(ctx).Preload("Tenants").Where("id = ?", id).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// ListProperties retrieves properties newest first with their tenants
func (gdb *GormDB) ListProperties(ctx context.Context, filters PropertyFilters) ([]models.Property, error) {
	query := gdb.db.WithContext(ctx).Preload("Tenants")
	if filters.OwnerID != "" {
		query = query.Where("owner_id = ?", filters.OwnerID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	properties := make([]models.Property, 0)
	err := query.Order("created_at DESC, id").Limit(filters.limit()).Find(&properties).Error
	return properties, err
}

// UpdateProperty applies a card update and returns the stored property
func (gdb *GormDB) UpdateProperty(ctx context.Context, id string, update PropertyUpdate) (*models.Property, error) {
	updates := map[string]interface{}{}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.Price != nil {
		updates["price"] = *update.Price
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}

	if len(updates) > 0 {
		result := gdb.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update property: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	return gdb.GetPropertyByID(ctx, id)
}

// ListTenants retrieves tenants with their property name, optionally for one property
func (gdb *GormDB) ListTenants(ctx context.Context, propertyID string) ([]models.Tenant, error) {
	query := gdb.db.WithContext(ctx).Model(&models.Tenant{}).
		Select("tenants.*, properties.property_name AS property_name").
		Joins("JOIN properties ON properties.id = tenants.property_id")
	if propertyID != "" {
		query = query.Where("tenants.property_id = ?", propertyID)
	}

	var tenants []models.Tenant
	err := query.Order("tenants.name ASC").Find(&tenants).Error
	return tenants, err
}

// RecordDeletion writes a delete log entry
func (gdb *GormDB) RecordDeletion(ctx context.Context, entry *models.DeleteLog) error {
	return gdb.db.WithContext(ctx).Create(entry).Error
}
