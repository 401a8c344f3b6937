package models

import "time"

// Tenant is a renter shown under a property. The dashboard only reads tenants.
type Tenant struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID string     `gorm:"type:varchar(36);not null;index:idx_tenants_property_id" json:"property_id"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	Email      string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone      string     `gorm:"type:varchar(32)" json:"phone,omitempty"`
	LeaseStart *time.Time `json:"lease_start,omitempty"`
	LeaseEnd   *time.Time `json:"lease_end,omitempty"`
	RentAmount *float64   `gorm:"type:decimal(14,2)" json:"rent_amount,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// Filled by listings that join the owning property
	PropertyName string `gorm:"->;-:migration" json:"property_name,omitempty"`
}

// TableName specifies the table name
func (Tenant) TableName() string {
	return "tenants"
}

// LeaseActive returns true if the lease covers the given time
func (t *Tenant) LeaseActive(at time.Time) bool {
	if t.LeaseStart != nil && at.Before(*t.LeaseStart) {
		return false
	}
	if t.LeaseEnd != nil && at.After(*t.LeaseEnd) {
		return false
	}
	return true
}
