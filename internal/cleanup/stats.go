package cleanup

import (
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"gorm.io/gorm"
)

// StatsService reports on recorded deletions
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a new stats service
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// GetDeleteStats returns statistics about deleted properties
func (s *StatsService) GetDeleteStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalDeleted int64
	if err := s.db.Model(&models.DeleteLog{}).Count(&totalDeleted).Error; err != nil {
		return nil, err
	}
	stats["total_deleted"] = totalDeleted

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := s.db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}

	reasonMap := make(map[string]int64)
	for _, rc := range reasonCounts {
		reasonMap[rc.Reason] = rc.Count
	}
	stats["by_reason"] = reasonMap

	var imagesRemoved int64
	if err := s.db.Model(&models.DeleteLog{}).
		Select("COALESCE(SUM(images_removed), 0)").
		Scan(&imagesRemoved).Error; err != nil {
		return nil, err
	}
	stats["images_removed"] = imagesRemoved

	// Recent deletions (last 30 days)
	var recentDeleted int64
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", thirtyDaysAgo).
		Count(&recentDeleted).Error; err != nil {
		return nil, err
	}
	stats["deleted_last_30_days"] = recentDeleted

	return stats, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *StatsService) GetRecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.DeleteLog
	err := s.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
