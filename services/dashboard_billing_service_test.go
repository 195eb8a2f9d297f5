package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"
)

func TestGetBillingCards(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	amountSum := regexp.MustCompile(`(?i)SELECT COALESCE\(SUM\(events\.amount\), 0\) FROM .events.`)
	eventCount := regexp.MustCompile(`(?i)SELECT count\(\*\) FROM .events.`)

	steps := []*queryStep{
		{
			pattern: amountSum,
			args:    []driver.Value{int64(1), "billing", "cancelled"},
			columns: []string{"total"},
			rows:    [][]driver.Value{{4000.0}},
		},
		{
			pattern: amountSum,
			args:    []driver.Value{int64(1), "billing", "to_send"},
			columns: []string{"total"},
			rows:    [][]driver.Value{{500.0}},
		},
		{
			pattern: amountSum,
			args:    []driver.Value{int64(1), "billing", "sent"},
			columns: []string{"total"},
			rows:    [][]driver.Value{{3500.0}},
		},
		{
			pattern: amountSum,
			args:    []driver.Value{int64(1), "billing", "sent", "paid"},
			columns: []string{"total"},
			rows:    [][]driver.Value{{2000.0}},
		},
		{
			pattern: amountSum,
			args:    []driver.Value{int64(1), "billing", "sent", "pending", "2025-06-15"},
			columns: []string{"total"},
			rows:    [][]driver.Value{{600.0}},
		},
		{
			pattern: amountSum,
			columns: []string{"total"},
			rows:    [][]driver.Value{{900.0}},
		},
		{
			pattern: eventCount,
			args:    []driver.Value{int64(1), "billing", "to_send"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		{
			pattern: eventCount,
			args:    []driver.Value{int64(1), "billing", "sent", "pending"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(3)}},
		},
		{
			pattern: eventCount,
			args:    []driver.Value{int64(1), "billing", "sent", "pending", "2025-06-15"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(2)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewDashboardBillingService(db)
	svc.now = func() time.Time { return now }

	cards, err := svc.GetBillingCards(1)
	if err != nil {
		t.Fatalf("GetBillingCards returned error: %v", err)
	}

	if cards.TotalBilled != 4000 || cards.TotalToSend != 500 || cards.TotalSent != 3500 {
		t.Fatalf("billed sums = %+v", cards)
	}
	if cards.TotalPaid != 2000 || cards.TotalOverduePayment != 600 || cards.TotalUpcomingPayment != 900 {
		t.Fatalf("payment sums = %+v", cards)
	}
	if cards.PaymentRate != 50 {
		t.Fatalf("PaymentRate = %v, want 50", cards.PaymentRate)
	}
	if cards.InvoicesToSendCount != 1 || cards.UnpaidInvoicesCount != 3 || cards.OverdueInvoicesCount != 2 {
		t.Fatalf("counts = %+v", cards)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestGetBillingCardsWithoutBilling(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	amountSum := regexp.MustCompile(`(?i)SELECT COALESCE\(SUM\(events\.amount\), 0\) FROM .events.`)
	eventCount := regexp.MustCompile(`(?i)SELECT count\(\*\) FROM .events.`)

	zeroSum := func() *queryStep {
		return &queryStep{pattern: amountSum, columns: []string{"total"}, rows: [][]driver.Value{{0.0}}}
	}
	zeroCount := func() *queryStep {
		return &queryStep{pattern: eventCount, columns: []string{"count"}, rows: [][]driver.Value{{int64(0)}}}
	}

	steps := []*queryStep{
		zeroSum(), zeroSum(), zeroSum(), zeroSum(), zeroSum(), zeroSum(),
		zeroCount(), zeroCount(), zeroCount(),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewDashboardBillingService(db)
	svc.now = func() time.Time { return now }

	cards, err := svc.GetBillingCards(1)
	if err != nil {
		t.Fatalf("GetBillingCards returned error: %v", err)
	}

	// No division by a zero billed total.
	if cards.PaymentRate != 0 {
		t.Fatalf("PaymentRate = %v, want 0", cards.PaymentRate)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}
