package services

import (
	"log"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// BillingCards is the dashboard billing aggregate.
type BillingCards struct {
	TotalBilled          float64 `json:"total_billed"`
	TotalToSend          float64 `json:"total_to_send"`
	TotalSent            float64 `json:"total_sent"`
	TotalPaid            float64 `json:"total_paid"`
	TotalOverduePayment  float64 `json:"total_overdue_payment"`
	TotalUpcomingPayment float64 `json:"total_upcoming_payment"`
	PaymentRate          float64 `json:"payment_rate"`
	InvoicesToSendCount  int64   `json:"invoices_to_send_count"`
	UnpaidInvoicesCount  int64   `json:"unpaid_invoices_count"`
	OverdueInvoicesCount int64   `json:"overdue_invoices_count"`
}

// DashboardBillingService computes the billing cards aggregate.
type DashboardBillingService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardBillingService constructs a DashboardBillingService.
func NewDashboardBillingService(db *gorm.DB) *DashboardBillingService {
	if db == nil {
		db = config.DB
	}
	return &DashboardBillingService{db: db, now: time.Now}
}

// GetBillingCards assembles the billing aggregate for one user.
func (s *DashboardBillingService) GetBillingCards(userID uint) (*BillingCards, error) {
	cards, err := s.collect(userID)
	if err != nil {
		log.Printf("dashboard billing cards failed: %v", err)
		return nil, ErrLoadingData
	}
	return cards, nil
}

func (s *DashboardBillingService) collect(userID uint) (*BillingCards, error) {
	now := s.now()
	cards := &BillingCards{}
	var err error

	if cards.TotalBilled, err = sumAmount(scopeBilled(eventsForUser(s.db, userID))); err != nil {
		return nil, err
	}
	if cards.TotalToSend, err = sumAmount(s.billingByStatus(userID, models.EventStatusToSend)); err != nil {
		return nil, err
	}
	if cards.TotalSent, err = sumAmount(s.billingByStatus(userID, models.EventStatusSent)); err != nil {
		return nil, err
	}
	if cards.TotalPaid, err = sumAmount(scopeSentPaid(eventsForUser(s.db, userID))); err != nil {
		return nil, err
	}
	if cards.TotalOverduePayment, err = sumAmount(scopeSentPaymentOverdue(eventsForUser(s.db, userID), now)); err != nil {
		return nil, err
	}
	if cards.TotalUpcomingPayment, err = sumAmount(scopeUpcomingPayment(eventsForUser(s.db, userID), now)); err != nil {
		return nil, err
	}

	if cards.TotalBilled > 0 {
		cards.PaymentRate = roundTo(cards.TotalPaid/cards.TotalBilled*100, 1)
	}

	if err = s.billingByStatus(userID, models.EventStatusToSend).Count(&cards.InvoicesToSendCount).Error; err != nil {
		return nil, err
	}
	if err = scopeSentPending(eventsForUser(s.db, userID)).Count(&cards.UnpaidInvoicesCount).Error; err != nil {
		return nil, err
	}
	if err = scopeSentPaymentOverdue(eventsForUser(s.db, userID), now).Count(&cards.OverdueInvoicesCount).Error; err != nil {
		return nil, err
	}

	return cards, nil
}

func (s *DashboardBillingService) billingByStatus(userID uint, status string) *gorm.DB {
	return eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.status = ?", status)
}
