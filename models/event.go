package models

import "time"

// Event represents the events table. An event is either a scheduled work
// step or a billing item (invoice/quote/deposit), discriminated by EventType.
// EventType is immutable after creation and decides which of the optional
// columns are meaningful: execution_date for steps; amount, payment_status,
// send_date and payment_due_date for billing events.
type Event struct {
	ID             uint       `gorm:"primaryKey;column:id" json:"id"`
	ProjectID      uint       `gorm:"column:project_id" json:"project_id"`
	Name           string     `gorm:"column:name" json:"name"`
	Description    *string    `gorm:"column:description" json:"description"`
	Type           string     `gorm:"column:type" json:"type"`
	EventType      string     `gorm:"column:event_type" json:"event_type"`
	Status         string     `gorm:"column:status" json:"status"`
	Amount         *float64   `gorm:"column:amount" json:"amount"`
	PaymentStatus  *string    `gorm:"column:payment_status" json:"payment_status"`
	CreatedDate    time.Time  `gorm:"column:created_date" json:"created_date"`
	ExecutionDate  *time.Time `gorm:"column:execution_date" json:"execution_date"`
	SendDate       *time.Time `gorm:"column:send_date" json:"send_date"`
	PaymentDueDate *time.Time `gorm:"column:payment_due_date" json:"payment_due_date"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at"`
	PaidAt         *time.Time `gorm:"column:paid_at" json:"paid_at"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Project Project `gorm:"foreignKey:ProjectID;references:ID" json:"project,omitempty"`
}

// TableName overrides the table name for Event
func (Event) TableName() string {
	return "events"
}

// IsStep reports whether the event is a scheduled work step.
func (e *Event) IsStep() bool {
	return e.EventType == EventTypeStep
}

// IsBilling reports whether the event is a billing item.
func (e *Event) IsBilling() bool {
	return e.EventType == EventTypeBilling
}

// IsClosed reports whether the event reached a terminal status.
func (e *Event) IsClosed() bool {
	switch e.Status {
	case EventStatusDone, EventStatusSent, EventStatusCancelled:
		return true
	}
	return false
}

// AmountValue returns the billing amount, 0 when unset.
func (e *Event) AmountValue() float64 {
	if e.Amount == nil {
		return 0
	}
	return *e.Amount
}

// DueDate returns the single applicable due-ish date regardless of event
// type: execution_date for steps, send_date for billing events.
func (e *Event) DueDate() *time.Time {
	if e.ExecutionDate != nil {
		return e.ExecutionDate
	}
	return e.SendDate
}

// IsOverdue reports whether a step event is still todo past its execution
// date. Billing events and events without an execution date are never
// overdue.
func (e *Event) IsOverdue(now time.Time) bool {
	if e.EventType != EventTypeStep || e.Status != EventStatusTodo {
		return false
	}
	if e.ExecutionDate == nil {
		return false
	}
	return e.ExecutionDate.Before(now)
}

// IsPaymentOverdue reports whether a sent billing event is still pending
// past its payment due date. False whenever status is not "sent" or the
// payment is not pending, regardless of the date.
func (e *Event) IsPaymentOverdue(now time.Time) bool {
	if e.EventType != EventTypeBilling || e.Status != EventStatusSent {
		return false
	}
	if e.PaymentStatus == nil || *e.PaymentStatus != PaymentStatusPending {
		return false
	}
	if e.PaymentDueDate == nil {
		return false
	}
	return e.PaymentDueDate.Before(now)
}

// StatusLabel returns the display label for the event status.
func (e *Event) StatusLabel() string {
	if label, ok := EventStatusLabels[e.Status]; ok {
		return label
	}
	return e.Status
}

// EventTypeLabel returns the display label for the event type.
func (e *Event) EventTypeLabel() string {
	if label, ok := EventTypeLabels[e.EventType]; ok {
		return label
	}
	return e.EventType
}

// PaymentStatusLabel returns the display label for the payment status,
// empty when the event carries none.
func (e *Event) PaymentStatusLabel() string {
	if e.PaymentStatus == nil {
		return ""
	}
	if label, ok := PaymentStatusLabels[*e.PaymentStatus]; ok {
		return label
	}
	return *e.PaymentStatus
}
