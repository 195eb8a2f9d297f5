package services

import (
	"errors"
	"strings"
	"time"

	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// Every listing and aggregation query must stay inside the authenticated
// user's data. Events and projects reach the owning user through the
// clients table, so the scoped builders below are the only entry points the
// services use.

func eventsForUser(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.Event{}).
		Joins("JOIN projects ON projects.id = events.project_id").
		Joins("JOIN clients ON clients.id = projects.client_id").
		Where("clients.user_id = ?", userID)
}

func projectsForUser(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.Project{}).
		Joins("JOIN clients ON clients.id = projects.client_id").
		Where("clients.user_id = ?", userID)
}

func clientsForUser(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.Client{}).Where("clients.user_id = ?", userID)
}

// PageMeta describes one page of a listing result.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

func buildPageMeta(page, perPage int, total int64) PageMeta {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return PageMeta{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}
	return page, perPage
}

// normalizeDirection whitelists the sort direction so it can be spliced
// into raw ORDER BY expressions.
func normalizeDirection(direction string) string {
	if strings.EqualFold(direction, "asc") {
		return "ASC"
	}
	return "DESC"
}

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// sumAmount runs a scoped event query as a SUM over amount. Empty result
// sets resolve to 0.
func sumAmount(query *gorm.DB) (float64, error) {
	var total float64
	err := query.Select("COALESCE(SUM(events.amount), 0)").Scan(&total).Error
	return total, err
}

// Billing sum scopes shared by the dashboard aggregates.

func scopeBilled(query *gorm.DB) *gorm.DB {
	return query.
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.status <> ?", models.EventStatusCancelled)
}

func scopeSentPaid(query *gorm.DB) *gorm.DB {
	return query.
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.status = ?", models.EventStatusSent).
		Where("events.payment_status = ?", models.PaymentStatusPaid)
}

func scopeSentPending(query *gorm.DB) *gorm.DB {
	return query.
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.status = ?", models.EventStatusSent).
		Where("events.payment_status = ?", models.PaymentStatusPending)
}

// scopeSentPaymentOverdue restricts to sent invoices still pending past
// their due date. Overdue compares dates while upcoming compares the raw
// timestamp, so an invoice due earlier today matches neither scope.
func scopeSentPaymentOverdue(query *gorm.DB, now time.Time) *gorm.DB {
	return scopeSentPending(query).
		Where("DATE(events.payment_due_date) < ?", dateOf(now))
}

// scopeUpcomingPayment restricts to sent invoices still pending whose due
// date has not passed or is unset.
func scopeUpcomingPayment(query *gorm.DB, now time.Time) *gorm.DB {
	return scopeSentPending(query).
		Where("(events.payment_due_date >= ? OR events.payment_due_date IS NULL)", now)
}

// ErrLoadingData is the single user-facing failure for composite listing
// and dashboard payloads; the underlying cause goes to the log, not the
// caller.
var ErrLoadingData = errors.New("Erreurs lors du chargement des données.")
