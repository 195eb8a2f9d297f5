package models

import (
	"testing"
	"time"
)

func strPtr(s string) *string        { return &s }
func floatPtr(f float64) *float64    { return &f }
func timePtr(t time.Time) *time.Time { return &t }

func TestEventIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	cases := []struct {
		name  string
		event Event
		want  bool
	}{
		{
			name:  "todo step past execution date",
			event: Event{EventType: EventTypeStep, Status: EventStatusTodo, ExecutionDate: timePtr(yesterday)},
			want:  true,
		},
		{
			name:  "todo step before execution date",
			event: Event{EventType: EventTypeStep, Status: EventStatusTodo, ExecutionDate: timePtr(tomorrow)},
			want:  false,
		},
		{
			name:  "done step past execution date",
			event: Event{EventType: EventTypeStep, Status: EventStatusDone, ExecutionDate: timePtr(yesterday)},
			want:  false,
		},
		{
			name:  "todo step without execution date",
			event: Event{EventType: EventTypeStep, Status: EventStatusTodo},
			want:  false,
		},
		{
			name:  "billing event never overdue",
			event: Event{EventType: EventTypeBilling, Status: EventStatusTodo, ExecutionDate: timePtr(yesterday)},
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.event.IsOverdue(now); got != tc.want {
				t.Fatalf("IsOverdue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEventIsPaymentOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	cases := []struct {
		name  string
		event Event
		want  bool
	}{
		{
			name: "sent pending past due",
			event: Event{
				EventType: EventTypeBilling, Status: EventStatusSent,
				PaymentStatus: strPtr(PaymentStatusPending), PaymentDueDate: timePtr(yesterday),
			},
			want: true,
		},
		{
			name: "sent pending before due",
			event: Event{
				EventType: EventTypeBilling, Status: EventStatusSent,
				PaymentStatus: strPtr(PaymentStatusPending), PaymentDueDate: timePtr(tomorrow),
			},
			want: false,
		},
		{
			name: "paid past due",
			event: Event{
				EventType: EventTypeBilling, Status: EventStatusSent,
				PaymentStatus: strPtr(PaymentStatusPaid), PaymentDueDate: timePtr(yesterday),
			},
			want: false,
		},
		{
			name: "to_send pending past due",
			event: Event{
				EventType: EventTypeBilling, Status: EventStatusToSend,
				PaymentStatus: strPtr(PaymentStatusPending), PaymentDueDate: timePtr(yesterday),
			},
			want: false,
		},
		{
			name: "sent without payment status",
			event: Event{
				EventType: EventTypeBilling, Status: EventStatusSent,
				PaymentDueDate: timePtr(yesterday),
			},
			want: false,
		},
		{
			name: "sent pending without due date",
			event: Event{
				EventType: EventTypeBilling, Status: EventStatusSent,
				PaymentStatus: strPtr(PaymentStatusPending),
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.event.IsPaymentOverdue(now); got != tc.want {
				t.Fatalf("IsPaymentOverdue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEventDueDate(t *testing.T) {
	execution := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	send := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	step := Event{EventType: EventTypeStep, ExecutionDate: timePtr(execution)}
	if got := step.DueDate(); got == nil || !got.Equal(execution) {
		t.Fatalf("step DueDate = %v, want %v", got, execution)
	}

	billing := Event{EventType: EventTypeBilling, SendDate: timePtr(send)}
	if got := billing.DueDate(); got == nil || !got.Equal(send) {
		t.Fatalf("billing DueDate = %v, want %v", got, send)
	}

	var empty Event
	if got := empty.DueDate(); got != nil {
		t.Fatalf("empty DueDate = %v, want nil", got)
	}
}

func TestEventLabels(t *testing.T) {
	event := Event{
		EventType:     EventTypeBilling,
		Status:        EventStatusSent,
		PaymentStatus: strPtr(PaymentStatusPaid),
	}

	if got := event.EventTypeLabel(); got != "Facturation" {
		t.Fatalf("EventTypeLabel = %q", got)
	}
	if got := event.StatusLabel(); got != "Envoyée" {
		t.Fatalf("StatusLabel = %q", got)
	}
	if got := event.PaymentStatusLabel(); got != "Payée" {
		t.Fatalf("PaymentStatusLabel = %q", got)
	}

	step := Event{EventType: EventTypeStep, Status: EventStatusTodo}
	if got := step.PaymentStatusLabel(); got != "" {
		t.Fatalf("step PaymentStatusLabel = %q, want empty", got)
	}
	unknown := Event{Status: "archived"}
	if got := unknown.StatusLabel(); got != "archived" {
		t.Fatalf("unknown StatusLabel = %q", got)
	}
}

func TestEventAmountValue(t *testing.T) {
	if got := (&Event{}).AmountValue(); got != 0 {
		t.Fatalf("AmountValue without amount = %v", got)
	}
	if got := (&Event{Amount: floatPtr(1200.50)}).AmountValue(); got != 1200.50 {
		t.Fatalf("AmountValue = %v", got)
	}
}
