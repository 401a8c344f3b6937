package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/cleanup"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db           *gorm.DB
	statsService *cleanup.StatsService
	logger       *zap.SugaredLogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, logger *zap.SugaredLogger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AdminHandler{
		db:           db,
		statsService: cleanup.NewStatsService(db),
		logger:       logger,
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})
	db := h.db.WithContext(c.Request.Context())

	// Property counts by status
	var statusCounts []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Property{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byStatus := map[string]int64{
		string(models.StatusVacant):      0,
		string(models.StatusOccupied):    0,
		string(models.StatusMaintenance): 0,
	}
	var total int64
	for _, sc := range statusCounts {
		byStatus[sc.Status] = sc.Count
		total += sc.Count
	}
	byStatus["total"] = total
	stats["properties"] = byStatus

	var tenantCount int64
	if err := db.Model(&models.Tenant{}).Count(&tenantCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stats["tenants"] = map[string]interface{}{
		"total": tenantCount,
	}

	// Recent activity (last 7 days)
	last7days := time.Now().AddDate(0, 0, -7)
	var recentlyCreated int64
	if err := db.Model(&models.Property{}).Where("created_at >= ?", last7days).Count(&recentlyCreated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stats["recent_activity"] = map[string]interface{}{
		"created_last_7_days": recentlyCreated,
	}

	deleteStats, err := h.statsService.GetDeleteStats()
	if err != nil {
		h.logger.Warnw("[Admin] failed to get delete stats", "error", err)
	} else {
		stats["deletions"] = deleteStats
	}

	c.JSON(http.StatusOK, stats)
}

// PriceRange is one band of the price distribution
type PriceRange struct {
	RangeLabel string  `json:"range_label"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
	Count      int64   `json:"count"`
}

// DefaultPriceRanges are monthly rent bands in INR
func DefaultPriceRanges() []PriceRange {
	return []PriceRange{
		{RangeLabel: "Under 10k", MinPrice: 0, MaxPrice: 10000},
		{RangeLabel: "10k-25k", MinPrice: 10000, MaxPrice: 25000},
		{RangeLabel: "25k-50k", MinPrice: 25000, MaxPrice: 50000},
		{RangeLabel: "50k-1L", MinPrice: 50000, MaxPrice: 100000},
		{RangeLabel: "1L+", MinPrice: 100000, MaxPrice: 1e12},
	}
}

// GetPriceDistribution returns the price distribution of listed properties
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	ranges := DefaultPriceRanges()

	for i := range ranges {
		var count int64
		if err := db.Model(&models.Property{}).
			Where("price >= ? AND price < ?", ranges[i].MinPrice, ranges[i].MaxPrice).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ranges[i].Count = count
	}

	var unpriced int64
	if err := db.Model(&models.Property{}).Where("price IS NULL").Count(&unpriced).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"price_distribution": ranges,
		"unpriced":           unpriced,
	})
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.statsService.GetRecentDeleteLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
