package services

import (
	"log"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// DashboardStatistics is the global dashboard aggregate.
type DashboardStatistics struct {
	TotalClients               int64   `json:"total_clients"`
	ActiveProjects             int64   `json:"active_projects"`
	CompletedProjects          int64   `json:"completed_projects"`
	OnHoldProjects             int64   `json:"on_hold_projects"`
	CancelledProjects          int64   `json:"cancelled_projects"`
	PendingTasks               int64   `json:"pending_tasks"`
	UnpaidInvoices             int64   `json:"unpaid_invoices"`
	MonthlyRevenue             float64 `json:"monthly_revenue"`
	OverduePaymentsAmount      float64 `json:"overdue_payments_amount"`
	CompletionRate             float64 `json:"completion_rate"`
	ProjectsCompletedThisWeek  int64   `json:"projects_completed_this_week"`
	ProjectsCompletedThisMonth int64   `json:"projects_completed_this_month"`
	OnHoldRate                 float64 `json:"on_hold_rate"`
	TotalBilled                float64 `json:"total_billed"`
	TotalPaid                  float64 `json:"total_paid"`
	TotalPending               float64 `json:"total_pending"`
	TotalUpcomingPayment       float64 `json:"total_upcoming_payment"`
	TotalOverduePayment        float64 `json:"total_overdue_payment"`
	RevenueGrowth              float64 `json:"revenue_growth"`
	ClientGrowthRate           float64 `json:"client_growth_rate"`
	ClientsThisMonth           int64   `json:"clients_this_month"`
}

// DashboardStatisticsService computes the global dashboard aggregate.
type DashboardStatisticsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardStatisticsService constructs a DashboardStatisticsService.
func NewDashboardStatisticsService(db *gorm.DB) *DashboardStatisticsService {
	if db == nil {
		db = config.DB
	}
	return &DashboardStatisticsService{db: db, now: time.Now}
}

// GetStatistics assembles the whole aggregate for one user. The batch is
// atomic: the first query failure aborts the call.
func (s *DashboardStatisticsService) GetStatistics(userID uint) (*DashboardStatistics, error) {
	stats, err := s.collect(userID)
	if err != nil {
		log.Printf("dashboard statistics failed: %v", err)
		return nil, ErrLoadingData
	}
	return stats, nil
}

func (s *DashboardStatisticsService) collect(userID uint) (*DashboardStatistics, error) {
	now := s.now()
	monthStart := startOfMonth(now)
	nextMonthStart := monthStart.AddDate(0, 1, 0)
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	stats := &DashboardStatistics{}

	if err := clientsForUser(s.db, userID).Count(&stats.TotalClients).Error; err != nil {
		return nil, err
	}

	byStatus, err := s.projectCountsByStatus(userID)
	if err != nil {
		return nil, err
	}
	stats.ActiveProjects = byStatus[models.ProjectStatusActive]
	stats.CompletedProjects = byStatus[models.ProjectStatusCompleted]
	stats.OnHoldProjects = byStatus[models.ProjectStatusOnHold]
	stats.CancelledProjects = byStatus[models.ProjectStatusCancelled]

	if err := eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeStep).
		Where("events.status = ?", models.EventStatusTodo).
		Count(&stats.PendingTasks).Error; err != nil {
		return nil, err
	}

	if err := eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.status = ?", models.EventStatusSent).
		Where("events.payment_status = ?", models.PaymentStatusPending).
		Count(&stats.UnpaidInvoices).Error; err != nil {
		return nil, err
	}

	currentRevenue, err := s.paidRevenueBetween(userID, monthStart, nextMonthStart)
	if err != nil {
		return nil, err
	}
	stats.MonthlyRevenue = currentRevenue

	lastRevenue, err := s.paidRevenueBetween(userID, lastMonthStart, monthStart)
	if err != nil {
		return nil, err
	}
	stats.RevenueGrowth = growthRate(currentRevenue, lastRevenue)

	overdue, err := sumAmount(scopeSentPaymentOverdue(eventsForUser(s.db, userID), now))
	if err != nil {
		return nil, err
	}
	stats.OverduePaymentsAmount = overdue
	stats.TotalOverduePayment = overdue

	completionRate, err := s.taskCompletionRate(userID)
	if err != nil {
		return nil, err
	}
	stats.CompletionRate = completionRate

	if err := s.completedProjectsBetween(userID, weekStart, weekEnd, &stats.ProjectsCompletedThisWeek); err != nil {
		return nil, err
	}
	if err := s.completedProjectsBetween(userID, monthStart, nextMonthStart, &stats.ProjectsCompletedThisMonth); err != nil {
		return nil, err
	}

	if total := stats.ActiveProjects + stats.OnHoldProjects; total > 0 {
		stats.OnHoldRate = roundTo(float64(stats.OnHoldProjects)/float64(total)*100, 1)
	}

	if stats.TotalBilled, err = sumAmount(scopeBilled(eventsForUser(s.db, userID))); err != nil {
		return nil, err
	}
	if stats.TotalPaid, err = sumAmount(scopeSentPaid(eventsForUser(s.db, userID))); err != nil {
		return nil, err
	}
	if stats.TotalPending, err = sumAmount(scopeSentPending(eventsForUser(s.db, userID))); err != nil {
		return nil, err
	}
	if stats.TotalUpcomingPayment, err = sumAmount(scopeUpcomingPayment(eventsForUser(s.db, userID), now)); err != nil {
		return nil, err
	}

	currentClients, err := s.clientsCreatedBetween(userID, monthStart, nextMonthStart)
	if err != nil {
		return nil, err
	}
	stats.ClientsThisMonth = currentClients

	lastClients, err := s.clientsCreatedBetween(userID, lastMonthStart, monthStart)
	if err != nil {
		return nil, err
	}
	stats.ClientGrowthRate = growthRate(float64(currentClients), float64(lastClients))

	return stats, nil
}

func (s *DashboardStatisticsService) projectCountsByStatus(userID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := projectsForUser(s.db, userID).
		Select("projects.status AS status, COUNT(*) AS count").
		Group("projects.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// taskCompletionRate is the done share of the user's todo+done step events.
func (s *DashboardStatisticsService) taskCompletionRate(userID uint) (float64, error) {
	var total int64
	err := eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeStep).
		Where("events.status IN ?", []string{models.EventStatusTodo, models.EventStatusDone}).
		Count(&total).Error
	if err != nil || total == 0 {
		return 0, err
	}

	var done int64
	err = eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeStep).
		Where("events.status = ?", models.EventStatusDone).
		Count(&done).Error
	if err != nil {
		return 0, err
	}

	return roundTo(float64(done)/float64(total)*100, 1), nil
}

func (s *DashboardStatisticsService) paidRevenueBetween(userID uint, from, to time.Time) (float64, error) {
	return sumAmount(eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.payment_status = ?", models.PaymentStatusPaid).
		Where("events.paid_at >= ? AND events.paid_at < ?", from, to))
}

func (s *DashboardStatisticsService) completedProjectsBetween(userID uint, from, to time.Time, out *int64) error {
	return projectsForUser(s.db, userID).
		Where("projects.status = ?", models.ProjectStatusCompleted).
		Where("projects.updated_at >= ? AND projects.updated_at < ?", from, to).
		Count(out).Error
}

func (s *DashboardStatisticsService) clientsCreatedBetween(userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := clientsForUser(s.db, userID).
		Where("clients.created_at >= ? AND clients.created_at < ?", from, to).
		Count(&count).Error
	return count, err
}
