package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/cleanup"
	"github.com/PrassV/Propo-Staging-sub004/internal/database"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/PrassV/Propo-Staging-sub004/internal/scheduler"
	"github.com/PrassV/Propo-Staging-sub004/internal/search"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PropertyRepository is the read/update side of the property store
type PropertyRepository interface {
	ListProperties(ctx context.Context, filters database.PropertyFilters) ([]models.Property, error)
	GetPropertyByID(ctx context.Context, id string) (*models.Property, error)
	UpdateProperty(ctx context.Context, id string, update database.PropertyUpdate) (*models.Property, error)
	ListTenants(ctx context.Context, propertyID string) ([]models.Tenant, error)
}

// PropertySearcher is the search index behind the dashboard search box
type PropertySearcher interface {
	FilterSearch(params search.FilterParams) ([]search.Document, error)
	IndexProperty(property *models.Property) error
	IndexProperties(properties []models.Property) error
}

// PropertyRemover removes a property with its images
type PropertyRemover interface {
	RemoveProperty(ctx context.Context, id, reason string) (*cleanup.RemovalResult, error)
}

// Reindexer runs a full reindex, refusing overlapping runs
type Reindexer interface {
	RunNow(ctx context.Context) (int, error)
}

// PropertyHandler serves the dashboard JSON API
type PropertyHandler struct {
	repo      PropertyRepository
	searcher  PropertySearcher
	remover   PropertyRemover
	reindexer Reindexer
	logger    *zap.SugaredLogger
}

// NewPropertyHandler creates a new property handler. searcher may be nil.
func NewPropertyHandler(repo PropertyRepository, searcher PropertySearcher, remover PropertyRemover, logger *zap.SugaredLogger) *PropertyHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &PropertyHandler{
		repo:     repo,
		searcher: searcher,
		remover:  remover,
		logger:   logger,
	}
}

// WithReindexer makes manual reindexes share the scheduler's run
func (h *PropertyHandler) WithReindexer(r Reindexer) *PropertyHandler {
	h.reindexer = r
	return h
}

// filtersFromQuery reads owner_id, status and limit query parameters
func filtersFromQuery(c *gin.Context) database.PropertyFilters {
	filters := database.PropertyFilters{
		OwnerID: c.Query("owner_id"),
		Status:  c.Query("status"),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	return filters
}

// ListProperties handles GET /api/properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	filters := filtersFromQuery(c)
	if filters.Status != "" && !models.Status(filters.Status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: " + filters.Status})
		return
	}

	start := time.Now()
	properties, err := h.repo.ListProperties(c.Request.Context(), filters)
	if err != nil {
		h.logger.Errorw("[Properties] list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.logger.Debugw("[Properties] listed", "count", len(properties), "duration_ms", time.Since(start).Milliseconds())

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

// GetProperty handles GET /api/properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	property, err := h.repo.GetPropertyByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

type updatePropertyRequest struct {
	Status      *models.Status `json:"status" binding:"omitempty,oneof=vacant occupied maintenance"`
	Price       *float64       `json:"price" binding:"omitempty,min=0"`
	Description *string        `json:"description" binding:"omitempty,max=5000"`
}

// UpdateProperty handles PATCH /api/properties/:id
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := database.PropertyUpdate{
		Status:      req.Status,
		Price:       req.Price,
		Description: req.Description,
	}
	if update.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	property, err := h.repo.UpdateProperty(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.reindex(property)

	c.JSON(http.StatusOK, property)
}

// DeleteProperty handles DELETE /api/properties/:id
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	result, err := h.remover.RemoveProperty(c.Request.Context(), c.Param("id"), c.Query("reason"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTenants handles GET /api/tenants
func (h *PropertyHandler) ListTenants(c *gin.Context) {
	tenants, err := h.repo.ListTenants(c.Request.Context(), "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tenants": tenants,
		"count":   len(tenants),
	})
}

// ListPropertyTenants handles GET /api/properties/:id/tenants
func (h *PropertyHandler) ListPropertyTenants(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.repo.GetPropertyByID(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	tenants, err := h.repo.ListTenants(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"property_id": id,
		"tenants":     tenants,
		"count":       len(tenants),
	})
}

// SearchProperties handles GET /api/search. An empty query lists from the database.
func (h *PropertyHandler) SearchProperties(c *gin.Context) {
	query := c.Query("q")
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if err != nil || limit <= 0 {
		limit = 20
	}

	if query == "" || h.searcher == nil {
		filters := filtersFromQuery(c)
		filters.Limit = int(limit)
		properties, err := h.repo.ListProperties(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		docs := make([]search.Document, 0, len(properties))
		for i := range properties {
			docs = append(docs, search.NewDocument(&properties[i]))
		}
		c.JSON(http.StatusOK, gin.H{"hits": docs, "count": len(docs), "source": "database"})
		return
	}

	docs, err := h.searcher.FilterSearch(search.FilterParams{
		Query:       query,
		OwnerID:     c.Query("owner_id"),
		Status:      c.Query("status"),
		ListingType: c.Query("listing_type"),
		City:        c.Query("city"),
		Limit:       limit,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, search.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": docs, "count": len(docs), "source": "search"})
}

// ReindexProperties handles POST /api/search/reindex
func (h *PropertyHandler) ReindexProperties(c *gin.Context) {
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not enabled"})
		return
	}

	h.logger.Infow("[Reindex] starting full reindex")

	var total int
	var err error
	if h.reindexer != nil {
		total, err = h.reindexer.RunNow(c.Request.Context())
	} else {
		total, err = scheduler.Reindex(c.Request.Context(), h.repo, h.searcher, h.logger)
	}
	if err != nil {
		if errors.Is(err, scheduler.ErrReindexRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, scheduler.ErrIndex) {
			h.logger.Errorw("[Reindex] failed to index properties", "indexed", total, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "indexed": total})
			return
		}
		h.logger.Errorw("[Reindex] failed to fetch properties", "indexed", total, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties from database"})
		return
	}

	h.logger.Infow("[Reindex] reindex complete", "indexed", total)
	c.JSON(http.StatusOK, gin.H{
		"message": "Reindex complete",
		"indexed": total,
	})
}

// Maintenance handles GET /api/maintenance; requests are not implemented yet
func (h *PropertyHandler) Maintenance(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"requests": []interface{}{},
		"message":  "Maintenance requests are coming soon",
	})
}

func (h *PropertyHandler) reindex(property *models.Property) {
	if h.searcher == nil {
		return
	}
	if err := h.searcher.IndexProperty(property); err != nil {
		h.logger.Warnw("[Search] failed to index property", "property_id", property.ID, "error", err)
	}
}

func (h *PropertyHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	h.logger.Errorw("[Properties] request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
