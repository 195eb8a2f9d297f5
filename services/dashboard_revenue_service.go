package services

import (
	"log"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// Chart granularities.
const (
	GranularityDay   = "day"
	GranularityWeek  = "week"
	GranularityMonth = "month"
)

// RevenueDataset is one chart series.
type RevenueDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// RevenueChart is the chart payload: a label per bucket and two parallel
// series, actual revenue (paid) and invoiced (sent).
type RevenueChart struct {
	Labels      []string         `json:"labels"`
	Datasets    []RevenueDataset `json:"datasets"`
	Granularity string           `json:"granularity"`
	Period      string           `json:"period"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
}

// MonthlyRevenueStats compares the running month against the previous one.
type MonthlyRevenueStats struct {
	CurrentMonth     float64 `json:"current_month"`
	LastMonth        float64 `json:"last_month"`
	GrowthPercentage float64 `json:"growth_percentage"`
	IsPositive       bool    `json:"is_positive"`
}

// YearlyRevenueSummary aggregates the running calendar year.
type YearlyRevenueSummary struct {
	TotalRevenue   float64 `json:"total_revenue"`
	TotalInvoiced  float64 `json:"total_invoiced"`
	TotalPending   float64 `json:"total_pending"`
	AverageMonthly float64 `json:"average_monthly"`
}

// revenuePoint is one billing event reduced to its bucketing timestamp.
type revenuePoint struct {
	At     time.Time
	Amount float64
}

// DashboardRevenueService builds the time-bucketed revenue series.
type DashboardRevenueService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardRevenueService constructs a DashboardRevenueService.
func NewDashboardRevenueService(db *gorm.DB) *DashboardRevenueService {
	if db == nil {
		db = config.DB
	}
	return &DashboardRevenueService{db: db, now: time.Now}
}

// RevenueChart resolves the period keyword into a date range and a
// granularity, then buckets two range scans into the chart series.
func (s *DashboardRevenueService) RevenueChart(userID uint, period string) (*RevenueChart, error) {
	now := s.now()
	end := startOfDay(now)

	var firstBilling *time.Time
	if period == "all" {
		first, err := s.firstBillingDate(userID)
		if err != nil {
			log.Printf("revenue chart failed: %v", err)
			return nil, ErrLoadingData
		}
		firstBilling = first
	}

	start, granularity := resolvePeriod(period, now, firstBilling)
	buckets := bucketStarts(start, end, granularity)

	// The first week/month bucket can open before the requested start, so
	// the scans cover the bucket range, not the requested range.
	scanFrom := buckets[0]
	scanTo := end.AddDate(0, 0, 1)

	paid, err := s.paidPoints(userID, scanFrom, scanTo)
	if err != nil {
		log.Printf("revenue chart failed: %v", err)
		return nil, ErrLoadingData
	}
	invoiced, err := s.invoicedPoints(userID, scanFrom, scanTo)
	if err != nil {
		log.Printf("revenue chart failed: %v", err)
		return nil, ErrLoadingData
	}

	return &RevenueChart{
		Labels: bucketLabels(buckets, granularity),
		Datasets: []RevenueDataset{
			{Label: "Revenus réels", Data: bucketTotals(paid, buckets, end)},
			{Label: "Facturé", Data: bucketTotals(invoiced, buckets, end)},
		},
		Granularity: granularity,
		Period:      period,
		StartDate:   dateOf(start),
		EndDate:     dateOf(end),
	}, nil
}

// GetMonthlyRevenueStats compares paid revenue of the running month with
// the full previous month.
func (s *DashboardRevenueService) GetMonthlyRevenueStats(userID uint) (*MonthlyRevenueStats, error) {
	now := s.now()
	monthStart := startOfMonth(now)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	current, err := s.paidBetween(userID, monthStart, now)
	if err != nil {
		log.Printf("monthly revenue stats failed: %v", err)
		return nil, ErrLoadingData
	}
	last, err := s.paidBetween(userID, lastMonthStart, monthStart)
	if err != nil {
		log.Printf("monthly revenue stats failed: %v", err)
		return nil, ErrLoadingData
	}

	var growth float64
	if last > 0 {
		growth = roundTo((current-last)/last*100, 1)
	}

	return &MonthlyRevenueStats{
		CurrentMonth:     current,
		LastMonth:        last,
		GrowthPercentage: growth,
		IsPositive:       growth >= 0,
	}, nil
}

// GetYearlyRevenueSummary aggregates the running calendar year.
func (s *DashboardRevenueService) GetYearlyRevenueSummary(userID uint) (*YearlyRevenueSummary, error) {
	now := s.now()
	yearStart := startOfYear(now)

	revenue, err := s.paidBetween(userID, yearStart, now)
	if err != nil {
		log.Printf("yearly revenue summary failed: %v", err)
		return nil, ErrLoadingData
	}
	invoiced, err := s.invoicedBetween(userID, yearStart, now)
	if err != nil {
		log.Printf("yearly revenue summary failed: %v", err)
		return nil, ErrLoadingData
	}
	pending, err := sumAmount(eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.payment_status = ?", models.PaymentStatusPending).
		Where("events.send_date >= ? AND events.send_date <= ?", yearStart, now))
	if err != nil {
		log.Printf("yearly revenue summary failed: %v", err)
		return nil, ErrLoadingData
	}

	months := int(now.Month())
	return &YearlyRevenueSummary{
		TotalRevenue:   revenue,
		TotalInvoiced:  invoiced,
		TotalPending:   pending,
		AverageMonthly: roundTo(revenue/float64(months), 2),
	}, nil
}

// resolvePeriod maps a period keyword to a range start and a granularity.
// The range always ends today. Unknown keywords fall back to six months.
func resolvePeriod(period string, now time.Time, firstBilling *time.Time) (time.Time, string) {
	today := startOfDay(now)

	switch period {
	case "current_month":
		return startOfMonth(now), GranularityDay
	case "7days":
		return today.AddDate(0, 0, -6), GranularityDay
	case "30days":
		return today.AddDate(0, 0, -29), GranularityDay
	case "3months":
		return today.AddDate(0, -3, 1), GranularityWeek
	case "12months":
		return today.AddDate(0, -12, 1), GranularityMonth
	case "all":
		start := today.AddDate(-1, 0, 0)
		if firstBilling != nil {
			start = startOfDay(*firstBilling)
		}
		switch months := monthsBetween(start, now); {
		case months >= 6:
			return start, GranularityMonth
		case months >= 3:
			return start, GranularityWeek
		default:
			return start, GranularityDay
		}
	default:
		return today.AddDate(0, -6, 1), GranularityMonth
	}
}

// bucketStarts lays out the bucket opening dates covering [start, end].
// Week and month buckets snap to the enclosing week or month start.
func bucketStarts(start, end time.Time, granularity string) []time.Time {
	var cursor time.Time
	switch granularity {
	case GranularityWeek:
		cursor = startOfWeek(start)
	case GranularityMonth:
		cursor = startOfMonth(start)
	default:
		cursor = startOfDay(start)
	}

	buckets := make([]time.Time, 0)
	for !cursor.After(end) {
		buckets = append(buckets, cursor)
		switch granularity {
		case GranularityWeek:
			cursor = cursor.AddDate(0, 0, 7)
		case GranularityMonth:
			cursor = cursor.AddDate(0, 1, 0)
		default:
			cursor = cursor.AddDate(0, 0, 1)
		}
	}
	return buckets
}

// bucketTotals sums points into their buckets. The final bucket is clipped
// to the end date, so nothing past it is counted.
func bucketTotals(points []revenuePoint, buckets []time.Time, end time.Time) []float64 {
	limit := startOfDay(end).AddDate(0, 0, 1)

	totals := make([]float64, len(buckets))
	for _, point := range points {
		if point.At.Before(buckets[0]) || !point.At.Before(limit) {
			continue
		}
		idx := len(buckets) - 1
		for idx > 0 && point.At.Before(buckets[idx]) {
			idx--
		}
		totals[idx] += point.Amount
	}

	for i := range totals {
		totals[i] = roundTo(totals[i], 2)
	}
	return totals
}

// bucketLabels renders one label per bucket. Month buckets are all
// labelled; day and week buckets only at the range edges.
func bucketLabels(buckets []time.Time, granularity string) []string {
	labels := make([]string, len(buckets))
	for i, bucket := range buckets {
		if granularity == GranularityMonth {
			labels[i] = bucket.Format("Jan 06")
			continue
		}
		if i == 0 || i == len(buckets)-1 {
			labels[i] = bucket.Format("02/01")
		}
	}
	return labels
}

// firstBillingDate finds the created_date of the user's oldest billing
// event, nil when none exists.
func (s *DashboardRevenueService) firstBillingDate(userID uint) (*time.Time, error) {
	var event models.Event
	err := eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Select("events.*").
		Order("events.created_date ASC").
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event.CreatedDate, nil
}

func (s *DashboardRevenueService) paidPoints(userID uint, from, to time.Time) ([]revenuePoint, error) {
	var events []models.Event
	err := eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.payment_status = ?", models.PaymentStatusPaid).
		Where("events.paid_at >= ? AND events.paid_at < ?", from, to).
		Select("events.*").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	points := make([]revenuePoint, 0, len(events))
	for i := range events {
		if events[i].PaidAt == nil {
			continue
		}
		points = append(points, revenuePoint{At: *events[i].PaidAt, Amount: events[i].AmountValue()})
	}
	return points, nil
}

func (s *DashboardRevenueService) invoicedPoints(userID uint, from, to time.Time) ([]revenuePoint, error) {
	var events []models.Event
	err := eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.status = ?", models.EventStatusSent).
		Where("events.send_date >= ? AND events.send_date < ?", from, to).
		Select("events.*").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	points := make([]revenuePoint, 0, len(events))
	for i := range events {
		if events[i].SendDate == nil {
			continue
		}
		points = append(points, revenuePoint{At: *events[i].SendDate, Amount: events[i].AmountValue()})
	}
	return points, nil
}

func (s *DashboardRevenueService) paidBetween(userID uint, from, to time.Time) (float64, error) {
	return sumAmount(eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.payment_status = ?", models.PaymentStatusPaid).
		Where("events.paid_at >= ? AND events.paid_at <= ?", from, to))
}

func (s *DashboardRevenueService) invoicedBetween(userID uint, from, to time.Time) (float64, error) {
	return sumAmount(eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.status = ?", models.EventStatusSent).
		Where("events.send_date >= ? AND events.send_date <= ?", from, to))
}
