package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/PrassV/Propo-Staging-sub004/internal/cleanup"
	"github.com/PrassV/Propo-Staging-sub004/internal/database"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/PrassV/Propo-Staging-sub004/internal/search"
)

// fakeRepo keeps properties in insertion order, newest last
type fakeRepo struct {
	mu         sync.Mutex
	properties []models.Property
	tenants    []models.Tenant
	listErr    error
	listCalls  []database.PropertyFilters
}

func (r *fakeRepo) ListProperties(_ context.Context, filters database.PropertyFilters) ([]models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls = append(r.listCalls, filters)
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Property, 0)
	for i := len(r.properties) - 1; i >= 0; i-- {
		p := r.properties[i]
		if filters.OwnerID != "" && p.OwnerID != filters.OwnerID {
			continue
		}
		if filters.Status != "" && string(p.Status) != filters.Status {
			continue
		}
		out = append(out, p)
	}
	if filters.Offset >= len(out) {
		return []models.Property{}, nil
	}
	out = out[filters.Offset:]
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *fakeRepo) GetPropertyByID(_ context.Context, id string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.properties {
		if r.properties[i].ID == id {
			p := r.properties[i]
			return &p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *fakeRepo) UpdateProperty(_ context.Context, id string, update database.PropertyUpdate) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.properties {
		if r.properties[i].ID != id {
			continue
		}
		if update.Status != nil {
			r.properties[i].Status = *update.Status
		}
		if update.Price != nil {
			r.properties[i].Price = update.Price
		}
		if update.Description != nil {
			r.properties[i].Description = *update.Description
		}
		p := r.properties[i]
		return &p, nil
	}
	return nil, database.ErrNotFound
}

func (r *fakeRepo) ListTenants(_ context.Context, propertyID string) ([]models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Tenant, 0)
	for _, t := range r.tenants {
		if propertyID == "" || t.PropertyID == propertyID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeSearcher struct {
	docs     []search.Document
	err      error
	params   []search.FilterParams
	indexed  []models.Property
	batches  int
	indexErr error
}

func (s *fakeSearcher) FilterSearch(params search.FilterParams) ([]search.Document, error) {
	s.params = append(s.params, params)
	return s.docs, s.err
}

func (s *fakeSearcher) IndexProperty(p *models.Property) error {
	s.indexed = append(s.indexed, *p)
	return s.indexErr
}

func (s *fakeSearcher) IndexProperties(properties []models.Property) error {
	s.batches++
	s.indexed = append(s.indexed, properties...)
	return s.indexErr
}

type fakeRemover struct {
	removed []string
	err     error
}

func (r *fakeRemover) RemoveProperty(_ context.Context, id, reason string) (*cleanup.RemovalResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	if id == "missing" {
		return nil, fmt.Errorf("failed to load property missing: %w", database.ErrNotFound)
	}
	r.removed = append(r.removed, id)
	if reason == "" {
		reason = models.DeleteReasonManual
	}
	return &cleanup.RemovalResult{PropertyID: id, Reason: reason, ImagesRemoved: 2}, nil
}
