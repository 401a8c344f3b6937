package models

import "time"

// DeleteLog represents a record of a property removed from the dashboard
type DeleteLog struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID    string    `gorm:"type:varchar(36);not null;index" json:"property_id"`
	PropertyName  string    `gorm:"type:varchar(255)" json:"property_name"`
	OwnerID       string    `gorm:"type:varchar(64)" json:"owner_id,omitempty"`
	ImagesRemoved int       `gorm:"not null;default:0" json:"images_removed"`
	Reason        string    `gorm:"type:varchar(50);not null" json:"reason"`
	DeletedAt     time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonManual = "manual_deletion"
)
