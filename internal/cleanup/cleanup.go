package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"go.uber.org/zap"
)

// Store is the property repository used for removals
type Store interface {
	GetPropertyByID(ctx context.Context, id string) (*models.Property, error)
	DeleteProperty(ctx context.Context, id string) error
	RecordDeletion(ctx context.Context, entry *models.DeleteLog) error
}

// ObjectStore removes stored property images
type ObjectStore interface {
	Remove(ctx context.Context, paths ...string) error
}

// SearchIndex drops removed properties from search
type SearchIndex interface {
	DeleteProperty(id string) error
}

// Service handles manual removal of properties together with their images
type Service struct {
	store   Store
	objects ObjectStore
	index   SearchIndex
	logger  *zap.SugaredLogger
}

// NewService creates a new cleanup service. index may be nil.
func NewService(store Store, objects ObjectStore, index SearchIndex, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		store:   store,
		objects: objects,
		index:   index,
		logger:  logger,
	}
}

// RemovalResult holds the result of a removal
type RemovalResult struct {
	PropertyID    string    `json:"property_id"`
	PropertyName  string    `json:"property_name"`
	ImagesRemoved int       `json:"images_removed"`
	Reason        string    `json:"reason"`
	ExecutedAt    time.Time `json:"executed_at"`
	Warnings      []string  `json:"warnings,omitempty"`
}

// RemoveProperty deletes the property's images, then its row, then records a
// delete log. A storage failure leaves the row in place.
func (s *Service) RemoveProperty(ctx context.Context, id, reason string) (*RemovalResult, error) {
	if reason == "" {
		reason = models.DeleteReasonManual
	}

	property, err := s.store.GetPropertyByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load property %s: %w", id, err)
	}

	result := &RemovalResult{
		PropertyID:   property.ID,
		PropertyName: property.PropertyName,
		Reason:       reason,
		ExecutedAt:   time.Now(),
	}

	if len(property.ImagePaths) > 0 {
		if err := s.objects.Remove(ctx, property.ImagePaths...); err != nil {
			return nil, fmt.Errorf("failed to remove images of property %s: %w", id, err)
		}
		result.ImagesRemoved = len(property.ImagePaths)
	}

	if err := s.store.DeleteProperty(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete property %s: %w", id, err)
	}

	deleteLog := &models.DeleteLog{
		PropertyID:    property.ID,
		PropertyName:  property.PropertyName,
		OwnerID:       property.OwnerID,
		ImagesRemoved: result.ImagesRemoved,
		Reason:        reason,
	}
	if err := s.store.RecordDeletion(ctx, deleteLog); err != nil {
		msg := fmt.Sprintf("failed to record deletion: %v", err)
		s.logger.Warnw("[Cleanup] "+msg, "property_id", id)
		result.Warnings = append(result.Warnings, msg)
	}

	if s.index != nil {
		if err := s.index.DeleteProperty(id); err != nil {
			msg := fmt.Sprintf("failed to remove from search: %v", err)
			s.logger.Warnw("[Cleanup] "+msg, "property_id", id)
			result.Warnings = append(result.Warnings, msg)
		}
	}

	s.logger.Infow("[Cleanup] property removed",
		"property_id", id, "name", property.PropertyName, "images_removed", result.ImagesRemoved, "reason", reason)
	return result, nil
}
