package models

import "time"

// Project represents the projects table
type Project struct {
	ID          uint       `gorm:"primaryKey;column:id" json:"id"`
	ClientID    uint       `gorm:"column:client_id" json:"client_id"`
	Name        string     `gorm:"column:name" json:"name"`
	Description *string    `gorm:"column:description" json:"description"`
	Status      string     `gorm:"column:status" json:"status"`
	StartDate   *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate     *time.Time `gorm:"column:end_date" json:"end_date"`
	Budget      *float64   `gorm:"column:budget" json:"budget"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Client Client  `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	Events []Event `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectTotals carries the billing aggregates derived from a project's
// events. All sums cover billing events only.
type ProjectTotals struct {
	TotalBilled          float64 `json:"total_billed"`
	TotalPendingBilled   float64 `json:"total_pending_billed"`
	TotalProjected       float64 `json:"total_projected"`
	TotalSent            float64 `json:"total_sent"`
	TotalPaid            float64 `json:"total_paid"`
	TotalUnpaid          float64 `json:"total_unpaid"`
	TotalOverduePayment  float64 `json:"total_overdue_payment"`
	TotalUpcomingPayment float64 `json:"total_upcoming_payment"`
}

// ComputeProjectTotals derives billing aggregates from the given events.
// Events belonging to other projects must not be passed in; the function
// does not filter on ProjectID. Missing amounts count as 0.
func ComputeProjectTotals(events []Event, now time.Time) ProjectTotals {
	var t ProjectTotals
	for i := range events {
		e := &events[i]
		if !e.IsBilling() {
			continue
		}
		amount := e.AmountValue()

		if e.Status != EventStatusCancelled {
			t.TotalBilled += amount
		}
		if e.Status != EventStatusSent && e.Status != EventStatusCancelled {
			t.TotalPendingBilled += amount
		}
		if e.Status == EventStatusSent {
			t.TotalSent += amount
			if e.PaymentStatus != nil {
				switch *e.PaymentStatus {
				case PaymentStatusPaid:
					t.TotalPaid += amount
				case PaymentStatusPending:
					t.TotalUnpaid += amount
					if e.PaymentDueDate != nil && e.PaymentDueDate.Before(now) {
						t.TotalOverduePayment += amount
					} else {
						t.TotalUpcomingPayment += amount
					}
				}
			}
		}
	}
	t.TotalProjected = t.TotalBilled + t.TotalPendingBilled
	return t
}

// BudgetProgress returns the percentage of the budget consumed by
// totalBilled, capped at 100. Projects without a budget report 0.
func (p *Project) BudgetProgress(totalBilled float64) float64 {
	if p.Budget == nil || *p.Budget == 0 {
		return 0
	}
	progress := totalBilled / *p.Budget * 100
	if progress > 100 {
		return 100
	}
	return progress
}

// BudgetExceeded reports whether totalBilled exceeds the budget. Projects
// without a budget never exceed it.
func (p *Project) BudgetExceeded(totalBilled float64) bool {
	if p.Budget == nil || *p.Budget == 0 {
		return false
	}
	return totalBilled > *p.Budget
}

// OverdueEventsCount counts step events still todo past their execution date.
func OverdueEventsCount(events []Event, now time.Time) int {
	count := 0
	for i := range events {
		if events[i].IsOverdue(now) {
			count++
		}
	}
	return count
}

// PaymentOverdueCount counts sent billing events still pending past their due date.
func PaymentOverdueCount(events []Event, now time.Time) int {
	count := 0
	for i := range events {
		if events[i].IsPaymentOverdue(now) {
			count++
		}
	}
	return count
}

// HasOverdueEvents reports whether any event is overdue.
func HasOverdueEvents(events []Event, now time.Time) bool {
	return OverdueEventsCount(events, now) > 0
}

// HasPaymentOverdue reports whether any payment is overdue.
func HasPaymentOverdue(events []Event, now time.Time) bool {
	return PaymentOverdueCount(events, now) > 0
}

// IsOverdue reports whether an active project ran past its end date.
func (p *Project) IsOverdue(now time.Time) bool {
	if p.Status != ProjectStatusActive || p.EndDate == nil {
		return false
	}
	end := time.Date(p.EndDate.Year(), p.EndDate.Month(), p.EndDate.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return end.Before(today)
}

// StatusLabel returns the display label for the project status.
func (p *Project) StatusLabel() string {
	if label, ok := ProjectStatusLabels[p.Status]; ok {
		return label
	}
	return p.Status
}
