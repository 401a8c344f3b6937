package database

import (
	"errors"

	"github.com/PrassV/Propo-Staging-sub004/internal/models"
)

// ErrNotFound is returned when a property does not exist
var ErrNotFound = errors.New("record not found")

// PropertyFilters narrows property listings
type PropertyFilters struct {
	OwnerID string
	Status  string
	Limit   int
	Offset  int
}

// PropertyUpdate holds the fields a property card can change
type PropertyUpdate struct {
	Status      *models.Status
	Price       *float64
	Description *string
}

// IsEmpty reports whether the update changes nothing
func (u PropertyUpdate) IsEmpty() bool {
	return u.Status == nil && u.Price == nil && u.Description == nil
}

// DefaultListLimit caps listings when no limit is given
const DefaultListLimit = 200

func (f PropertyFilters) limit() int {
	if f.Limit <= 0 || f.Limit > DefaultListLimit {
		return DefaultListLimit
	}
	return f.Limit
}
