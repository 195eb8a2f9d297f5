package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// defaultRevenueBaseline is the fallback reference value for the growth
// comparison when REVENUE_BASELINE is not configured.
const defaultRevenueBaseline = 5000

// QuickStats is the lightweight dashboard aggregate.
type QuickStats struct {
	CompletionRate          float64 `json:"completion_rate"`
	RevenuePerClient        float64 `json:"revenue_per_client"`
	AverageRevenuePerClient float64 `json:"average_revenue_per_client"`
	RevenueGrowthRate       float64 `json:"revenue_growth_rate"`
	ActiveProjects          int64   `json:"active_projects"`
	PendingInvoices         int64   `json:"pending_invoices"`
	UrgentTasks             int64   `json:"urgent_tasks"`
}

// DashboardQuickStatsService computes the quick-stats aggregate. Its
// completion rate is project based, unlike the step-task rate in the
// global statistics aggregate.
type DashboardQuickStatsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardQuickStatsService constructs a DashboardQuickStatsService.
func NewDashboardQuickStatsService(db *gorm.DB) *DashboardQuickStatsService {
	if db == nil {
		db = config.DB
	}
	return &DashboardQuickStatsService{db: db, now: time.Now}
}

// GetQuickStats assembles the quick-stats aggregate for one user.
func (s *DashboardQuickStatsService) GetQuickStats(userID uint) (*QuickStats, error) {
	stats, err := s.collect(userID)
	if err != nil {
		log.Printf("dashboard quick stats failed: %v", err)
		return nil, ErrLoadingData
	}
	return stats, nil
}

func (s *DashboardQuickStatsService) collect(userID uint) (*QuickStats, error) {
	now := s.now()
	stats := &QuickStats{AverageRevenuePerClient: revenueBaseline()}

	completionRate, err := s.projectCompletionRate(userID)
	if err != nil {
		return nil, err
	}
	stats.CompletionRate = completionRate

	revenuePerClient, err := s.revenuePerClient(userID)
	if err != nil {
		return nil, err
	}
	stats.RevenuePerClient = revenuePerClient

	if stats.AverageRevenuePerClient != 0 {
		stats.RevenueGrowthRate = (revenuePerClient - stats.AverageRevenuePerClient) / stats.AverageRevenuePerClient * 100
	}

	if err := projectsForUser(s.db, userID).
		Where("projects.status = ?", models.ProjectStatusActive).
		Count(&stats.ActiveProjects).Error; err != nil {
		return nil, err
	}

	if err := eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.payment_status = ?", models.PaymentStatusPending).
		Count(&stats.PendingInvoices).Error; err != nil {
		return nil, err
	}

	if err := eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeStep).
		Where("events.status = ?", models.EventStatusTodo).
		Where("events.execution_date <= ?", now).
		Count(&stats.UrgentTasks).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// projectCompletionRate is the completed share of active+completed projects.
func (s *DashboardQuickStatsService) projectCompletionRate(userID uint) (float64, error) {
	var total int64
	err := projectsForUser(s.db, userID).
		Where("projects.status IN ?", []string{models.ProjectStatusActive, models.ProjectStatusCompleted}).
		Count(&total).Error
	if err != nil || total == 0 {
		return 0, err
	}

	var completed int64
	err = projectsForUser(s.db, userID).
		Where("projects.status = ?", models.ProjectStatusCompleted).
		Count(&completed).Error
	if err != nil {
		return 0, err
	}

	return float64(completed) / float64(total) * 100, nil
}

// revenuePerClient divides all paid billing amounts by the number of
// distinct clients carrying at least one project.
func (s *DashboardQuickStatsService) revenuePerClient(userID uint) (float64, error) {
	revenue, err := sumAmount(eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.payment_status = ?", models.PaymentStatusPaid))
	if err != nil {
		return 0, err
	}

	var clients int64
	err = projectsForUser(s.db, userID).
		Distinct("projects.client_id").
		Count(&clients).Error
	if err != nil || clients == 0 {
		return 0, err
	}

	return revenue / float64(clients), nil
}

func revenueBaseline() float64 {
	raw := os.Getenv("REVENUE_BASELINE")
	if raw == "" {
		return defaultRevenueBaseline
	}
	baseline, err := strconv.ParseFloat(raw, 64)
	if err != nil || baseline < 0 {
		return defaultRevenueBaseline
	}
	return baseline
}
