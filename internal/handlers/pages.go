package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/PrassV/Propo-Staging-sub004/internal/database"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageHandler renders the dashboard pages
type PageHandler struct {
	repo     PropertyRepository
	searcher PropertySearcher
	title    string
	logger   *zap.SugaredLogger
}

// NewPageHandler creates a new page handler. searcher may be nil.
func NewPageHandler(repo PropertyRepository, searcher PropertySearcher, title string, logger *zap.SugaredLogger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &PageHandler{
		repo:     repo,
		searcher: searcher,
		title:    title,
		logger:   logger,
	}
}

func (h *PageHandler) page(active, heading string) gin.H {
	return gin.H{
		"Title":   h.title,
		"Heading": heading,
		"Active":  active,
	}
}

// PropertiesPage handles GET /properties
func (h *PageHandler) PropertiesPage(c *gin.Context) {
	data := h.page("properties", "Properties")

	properties, err := h.repo.ListProperties(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		h.logger.Errorw("[Pages] failed to list properties", "error", err)
		data["Error"] = "Could not load properties"
		data["Properties"] = []models.Property{}
		c.HTML(http.StatusInternalServerError, "properties.html", data)
		return
	}

	data["Properties"] = properties
	c.HTML(http.StatusOK, "properties.html", data)
}

// UpdatePropertyForm handles POST /properties/:id from a property card
func (h *PageHandler) UpdatePropertyForm(c *gin.Context) {
	id := c.Param("id")

	var update database.PropertyUpdate
	if s := strings.TrimSpace(c.PostForm("status")); s != "" {
		status := models.Status(s)
		if !status.Valid() {
			c.String(http.StatusBadRequest, "invalid status: %s", s)
			return
		}
		update.Status = &status
	}
	if p := strings.TrimSpace(c.PostForm("price")); p != "" {
		price, err := strconv.ParseFloat(p, 64)
		if err != nil || price < 0 {
			c.String(http.StatusBadRequest, "invalid price: %s", p)
			return
		}
		update.Price = &price
	}

	if !update.IsEmpty() {
		property, err := h.repo.UpdateProperty(c.Request.Context(), id, update)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				c.String(http.StatusNotFound, "Property not found")
				return
			}
			h.logger.Errorw("[Pages] failed to update property", "property_id", id, "error", err)
			c.String(http.StatusInternalServerError, "Could not update property")
			return
		}
		if h.searcher != nil {
			if err := h.searcher.IndexProperty(property); err != nil {
				h.logger.Warnw("[Search] failed to index property", "property_id", id, "error", err)
			}
		}
		h.logger.Infow("[Pages] property updated", "property_id", id)
	}

	c.Redirect(http.StatusSeeOther, "/properties")
}

// TenantsPage handles GET /tenants
func (h *PageHandler) TenantsPage(c *gin.Context) {
	data := h.page("tenants", "Tenants")

	tenants, err := h.repo.ListTenants(c.Request.Context(), "")
	if err != nil {
		h.logger.Errorw("[Pages] failed to list tenants", "error", err)
		c.HTML(http.StatusInternalServerError, "tenants.html", data)
		return
	}

	data["Tenants"] = tenants
	c.HTML(http.StatusOK, "tenants.html", data)
}

// MaintenancePage handles GET /maintenance
func (h *PageHandler) MaintenancePage(c *gin.Context) {
	c.HTML(http.StatusOK, "maintenance.html", h.page("maintenance", "Maintenance"))
}
