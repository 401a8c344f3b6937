package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DB talks to the hosted Postgres database with plain SQL
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname, sslmode string) (*DB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// NewDBFromConn wraps an existing connection pool
func NewDBFromConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS properties (
		id VARCHAR(36) PRIMARY KEY,
		owner_id VARCHAR(64) NOT NULL DEFAULT '',

		property_name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category VARCHAR(50) NOT NULL DEFAULT '',
		listing_type VARCHAR(20) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'vacant',
		amenities TEXT NOT NULL DEFAULT '[]',

		address_line1 VARCHAR(255) NOT NULL,
		address_line2 VARCHAR(255) NOT NULL DEFAULT '',
		city VARCHAR(100) NOT NULL DEFAULT '',
		state VARCHAR(100) NOT NULL DEFAULT '',
		pincode VARCHAR(20) NOT NULL DEFAULT '',
		country VARCHAR(100) NOT NULL DEFAULT '',

		property_type VARCHAR(50) NOT NULL DEFAULT '',
		bedrooms INTEGER,
		bathrooms INTEGER,
		area DECIMAL(10, 2),
		area_unit VARCHAR(20) NOT NULL DEFAULT '',
		year_built INTEGER,
		floors INTEGER,

		price DECIMAL(14, 2),
		currency VARCHAR(3) NOT NULL DEFAULT 'INR',

		image_urls TEXT NOT NULL DEFAULT '[]',
		image_paths TEXT NOT NULL DEFAULT '[]',

		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_properties_owner_id ON properties(owner_id);
	CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status);

	CREATE TABLE IF NOT EXISTS tenants (
		id VARCHAR(36) PRIMARY KEY,
		property_id VARCHAR(36) NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(32) NOT NULL DEFAULT '',
		lease_start TIMESTAMPTZ,
		lease_end TIMESTAMPTZ,
		rent_amount DECIMAL(14, 2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_tenants_property_id ON tenants(property_id);

	CREATE TABLE IF NOT EXISTS delete_logs (
		id SERIAL PRIMARY KEY,
		property_id VARCHAR(36) NOT NULL,
		property_name VARCHAR(255) NOT NULL DEFAULT '',
		owner_id VARCHAR(64) NOT NULL DEFAULT '',
		images_removed INTEGER NOT NULL DEFAULT 0,
		reason VARCHAR(50) NOT NULL,
		deleted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := db.conn.Exec(query)
	return err
}

const propertyColumns = `id, owner_id,
	property_name, description, category, listing_type, status, amenities,
	address_line1, address_line2, city, state, pincode, country,
	property_type, bedrooms, bathrooms, area, area_unit, year_built, floors,
	price, currency, image_urls, image_paths, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID, &p.OwnerID,
		&p.PropertyName, &p.Description, &p.Category, &p.ListingType, &p.Status, &p.Amenities,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.Pincode, &p.Country,
		&p.PropertyType, &p.Bedrooms, &p.Bathrooms, &p.Area, &p.AreaUnit, &p.YearBuilt, &p.Floors,
		&p.Price, &p.Currency, &p.ImageURLs, &p.ImagePaths, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertProperty creates a property row. The ID is generated when empty.
func (db *DB) InsertProperty(ctx context.Context, p *models.Property) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.ApplyDefaults()

	query := `
	INSERT INTO properties (
		id, owner_id,
		property_name, description, category, listing_type, status, amenities,
		address_line1, address_line2, city, state, pincode, country,
		property_type, bedrooms, bathrooms, area, area_unit, year_built, floors,
		price, currency, image_urls, image_paths
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	RETURNING created_at, updated_at
	`
	err := db.conn.QueryRowContext(ctx, query,
		p.ID, p.OwnerID,
		p.PropertyName, p.Description, p.Category, p.ListingType, string(p.Status), p.Amenities,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.Pincode, p.Country,
		p.PropertyType, p.Bedrooms, p.Bathrooms, p.Area, p.AreaUnit, p.YearBuilt, p.Floors,
		p.Price, p.Currency, p.ImageURLs, p.ImagePaths,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

// UpdatePropertyImages writes image urls and paths in a single statement
func (db *DB) UpdatePropertyImages(ctx context.Context, id string, urls, paths []string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE properties SET image_urls = $1, image_paths = $2, updated_at = $3 WHERE id = $4`,
		models.StringList(urls), models.StringList(paths), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update property images: %w", err)
	}
	return requireRow(result)
}

// DeleteProperty removes a property; tenants cascade
func (db *DB) DeleteProperty(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	return requireRow(result)
}

// GetPropertyByID retrieves a property with its tenants
func (db *DB) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tenants, err := db.tenantsFor(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Tenants = tenants[p.ID]
	return p, nil
}

// ListProperties retrieves properties newest first with their tenants
func (db *DB) ListProperties(ctx context.Context, filters PropertyFilters) ([]models.Property, error) {
	var where []string
	var args []interface{}
	if filters.OwnerID != "" {
		args = append(args, filters.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + propertyColumns + ` FROM properties`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filters.limit())
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d", len(args))
	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	properties := make([]models.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(properties) == 0 {
		return properties, nil
	}

	ids := make([]string, len(properties))
	for i := range properties {
		ids[i] = properties[i].ID
	}
	tenants, err := db.tenantsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range properties {
		properties[i].Tenants = tenants[properties[i].ID]
	}

	return properties, nil
}

// UpdateProperty applies a card update and returns the stored property
func (db *DB) UpdateProperty(ctx context.Context, id string, update PropertyUpdate) (*models.Property, error) {
	if !update.IsEmpty() {
		var sets []string
		var args []interface{}
		if update.Status != nil {
			args = append(args, string(*update.Status))
			sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
		}
		if update.Price != nil {
			args = append(args, *update.Price)
			sets = append(sets, fmt.Sprintf("price = $%d", len(args)))
		}
		if update.Description != nil {
			args = append(args, *update.Description)
			sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
		}
		args = append(args, time.Now().UTC())
		sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
		args = append(args, id)

		query := fmt.Sprintf("UPDATE properties SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		result, err := db.conn.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update property: %w", err)
		}
		if err := requireRow(result); err != nil {
			return nil, err
		}
	}

	return db.GetPropertyByID(ctx, id)
}

const tenantColumns = `t.id, t.property_id, t.name, t.email, t.phone,
	t.lease_start, t.lease_end, t.rent_amount, t.created_at, t.updated_at, p.property_name`

func scanTenant(row rowScanner) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.PropertyID, &t.Name, &t.Email, &t.Phone,
		&t.LeaseStart, &t.LeaseEnd, &t.RentAmount, &t.CreatedAt, &t.UpdatedAt, &t.PropertyName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// tenantsFor loads tenants for the given properties keyed by property ID
func (db *DB) tenantsFor(ctx context.Context, propertyIDs []string) (map[string][]models.Tenant, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants t JOIN properties p ON p.id = t.property_id
		 WHERE t.property_id = ANY($1) ORDER BY t.name ASC`,
		pq.Array(propertyIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}
	defer rows.Close()

	byProperty := make(map[string][]models.Tenant)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		byProperty[t.PropertyID] = append(byProperty[t.PropertyID], *t)
	}
	return byProperty, rows.Err()
}

// ListTenants retrieves tenants with their property name, optionally for one property
func (db *DB) ListTenants(ctx context.Context, propertyID string) ([]models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants t JOIN properties p ON p.id = t.property_id`
	var args []interface{}
	if propertyID != "" {
		query += ` WHERE t.property_id = $1`
		args = append(args, propertyID)
	}
	query += ` ORDER BY t.name ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

// RecordDeletion writes a delete log entry
func (db *DB) RecordDeletion(ctx context.Context, entry *models.DeleteLog) error {
	return db.conn.QueryRowContext(ctx,
		`INSERT INTO delete_logs (property_id, property_name, owner_id, images_removed, reason)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, deleted_at`,
		entry.PropertyID, entry.PropertyName, entry.OwnerID, entry.ImagesRemoved, entry.Reason,
	).Scan(&entry.ID, &entry.DeletedAt)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
