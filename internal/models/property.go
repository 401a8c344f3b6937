package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Property struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id" validate:"omitempty,uuid"`
	OwnerID string `gorm:"type:varchar(64);index" json:"owner_id,omitempty"`

	// Listing
	PropertyName string     `gorm:"type:varchar(255);not null" json:"property_name" validate:"required,max=255"`
	Description  string     `gorm:"type:text" json:"description,omitempty"`
	Category     string     `gorm:"type:varchar(50)" json:"category,omitempty"`
	ListingType  string     `gorm:"type:varchar(20)" json:"listing_type,omitempty" validate:"omitempty,oneof=rent sale"`
	Status       Status     `gorm:"type:varchar(20);not null;default:'vacant';index" json:"status" validate:"omitempty,oneof=vacant occupied maintenance"`
	Amenities    StringList `gorm:"type:text" json:"amenities,omitempty"`

	// Address
	AddressLine1 string `gorm:"type:varchar(255);not null" json:"address_line1" validate:"required,max=255"`
	AddressLine2 string `gorm:"type:varchar(255)" json:"address_line2,omitempty"`
	City         string `gorm:"type:varchar(100);index" json:"city,omitempty"`
	State        string `gorm:"type:varchar(100)" json:"state,omitempty"`
	Pincode      string `gorm:"type:varchar(20)" json:"pincode,omitempty"`
	Country      string `gorm:"type:varchar(100)" json:"country,omitempty"`

	// Physical attributes
	PropertyType string   `gorm:"type:varchar(50)" json:"property_type,omitempty"`
	Bedrooms     *int     `gorm:"type:int" json:"bedrooms,omitempty" validate:"omitempty,min=0"`
	Bathrooms    *int     `gorm:"type:int" json:"bathrooms,omitempty" validate:"omitempty,min=0"`
	Area         *float64 `gorm:"type:decimal(10,2)" json:"area,omitempty" validate:"omitempty,min=0"`
	AreaUnit     string   `gorm:"type:varchar(20)" json:"area_unit,omitempty"`
	YearBuilt    *int     `gorm:"type:int" json:"year_built,omitempty" validate:"omitempty,min=1800,max=2100"`
	Floors       *int     `gorm:"type:int" json:"floors,omitempty" validate:"omitempty,min=0"`

	// Price
	Price    *float64 `gorm:"type:decimal(14,2);index" json:"price,omitempty" validate:"omitempty,min=0"`
	Currency string   `gorm:"type:varchar(3)" json:"currency,omitempty"`

	// Images; urls and paths are always written together
	ImageURLs  StringList `gorm:"column:image_urls;type:text" json:"image_urls"`
	ImagePaths StringList `gorm:"column:image_paths;type:text" json:"image_paths"`

	Tenants []Tenant `gorm:"foreignKey:PropertyID;references:ID" json:"tenants,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_properties_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// Status is the occupancy status of a property
type Status string

const (
	StatusVacant      Status = "vacant"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusVacant, StatusOccupied, StatusMaintenance:
		return true
	}
	return false
}

// DefaultCurrency is applied when a property is created without one
const DefaultCurrency = "INR"

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}

// ApplyDefaults fills the fields the database would otherwise default
func (p *Property) ApplyDefaults() {
	if p.Status == "" {
		p.Status = StatusVacant
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.ImageURLs == nil {
		p.ImageURLs = StringList{}
	}
	if p.ImagePaths == nil {
		p.ImagePaths = StringList{}
	}
}

// IsOccupied reports whether the property has a tenant in residence
func (p *Property) IsOccupied() bool {
	return p.Status == StatusOccupied
}

// DisplayAddress joins the address parts shown on a property card
func (p *Property) DisplayAddress() string {
	addr := p.AddressLine1
	if p.AddressLine2 != "" {
		addr += ", " + p.AddressLine2
	}
	if p.City != "" {
		addr += ", " + p.City
	}
	if p.State != "" {
		addr += ", " + p.State
	}
	if p.Pincode != "" {
		addr += " " + p.Pincode
	}
	return addr
}

// Validate checks the listing fields supplied by the dashboard
func (p *Property) Validate() error {
	validate := validator.New()

	err := validate.Struct(p)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("validation failed: %v", messages)
		}
		return fmt.Errorf("validation error: %w", err)
	}

	return nil
}
