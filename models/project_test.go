package models

import (
	"testing"
	"time"
)

func TestComputeProjectTotals(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	nextWeek := now.AddDate(0, 0, 7)

	events := []Event{
		// Invoice sent and paid.
		{EventType: EventTypeBilling, Status: EventStatusSent, Amount: floatPtr(1000), PaymentStatus: strPtr(PaymentStatusPaid)},
		// Invoice sent, pending, past due.
		{EventType: EventTypeBilling, Status: EventStatusSent, Amount: floatPtr(500), PaymentStatus: strPtr(PaymentStatusPending), PaymentDueDate: timePtr(yesterday)},
		// Invoice sent, pending, due next week.
		{EventType: EventTypeBilling, Status: EventStatusSent, Amount: floatPtr(300), PaymentStatus: strPtr(PaymentStatusPending), PaymentDueDate: timePtr(nextWeek)},
		// Invoice still to send.
		{EventType: EventTypeBilling, Status: EventStatusToSend, Amount: floatPtr(200)},
		// Cancelled invoice, excluded everywhere.
		{EventType: EventTypeBilling, Status: EventStatusCancelled, Amount: floatPtr(9999)},
		// Step events never contribute.
		{EventType: EventTypeStep, Status: EventStatusTodo},
	}

	totals := ComputeProjectTotals(events, now)

	if totals.TotalBilled != 2000 {
		t.Fatalf("TotalBilled = %v, want 2000", totals.TotalBilled)
	}
	if totals.TotalPendingBilled != 200 {
		t.Fatalf("TotalPendingBilled = %v, want 200", totals.TotalPendingBilled)
	}
	if totals.TotalSent != 1800 {
		t.Fatalf("TotalSent = %v, want 1800", totals.TotalSent)
	}
	if totals.TotalPaid != 1000 {
		t.Fatalf("TotalPaid = %v, want 1000", totals.TotalPaid)
	}
	if totals.TotalUnpaid != 800 {
		t.Fatalf("TotalUnpaid = %v, want 800", totals.TotalUnpaid)
	}
	if totals.TotalOverduePayment != 500 {
		t.Fatalf("TotalOverduePayment = %v, want 500", totals.TotalOverduePayment)
	}
	if totals.TotalUpcomingPayment != 300 {
		t.Fatalf("TotalUpcomingPayment = %v, want 300", totals.TotalUpcomingPayment)
	}

	// Billed always splits into the sent subset plus what remains to send.
	if totals.TotalBilled != totals.TotalSent+totals.TotalPendingBilled {
		t.Fatalf("TotalBilled %v != TotalSent %v + TotalPendingBilled %v",
			totals.TotalBilled, totals.TotalSent, totals.TotalPendingBilled)
	}
}

func TestComputeProjectTotalsUpcomingWithoutDueDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{EventType: EventTypeBilling, Status: EventStatusSent, Amount: floatPtr(400), PaymentStatus: strPtr(PaymentStatusPending)},
	}

	totals := ComputeProjectTotals(events, now)
	if totals.TotalUpcomingPayment != 400 {
		t.Fatalf("TotalUpcomingPayment = %v, want 400", totals.TotalUpcomingPayment)
	}
	if totals.TotalOverduePayment != 0 {
		t.Fatalf("TotalOverduePayment = %v, want 0", totals.TotalOverduePayment)
	}
}

func TestComputeProjectTotalsEmpty(t *testing.T) {
	totals := ComputeProjectTotals(nil, time.Now())
	if totals != (ProjectTotals{}) {
		t.Fatalf("totals for no events = %+v, want zero", totals)
	}
}

func TestBudgetProgress(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Budget exceeded: progress caps at 100.
	project := Project{Budget: floatPtr(1000)}
	events := []Event{
		{EventType: EventTypeBilling, Status: EventStatusSent, Amount: floatPtr(1500)},
	}
	totals := ComputeProjectTotals(events, now)

	if totals.TotalBilled != 1500 {
		t.Fatalf("TotalBilled = %v, want 1500", totals.TotalBilled)
	}
	if got := project.BudgetProgress(totals.TotalBilled); got != 100 {
		t.Fatalf("BudgetProgress = %v, want 100", got)
	}
	if !project.BudgetExceeded(totals.TotalBilled) {
		t.Fatal("BudgetExceeded = false, want true")
	}

	// Partial consumption.
	if got := project.BudgetProgress(250); got != 25 {
		t.Fatalf("BudgetProgress = %v, want 25", got)
	}

	// No budget resolves to 0/false, never an error.
	var unbudgeted Project
	if got := unbudgeted.BudgetProgress(1500); got != 0 {
		t.Fatalf("BudgetProgress without budget = %v, want 0", got)
	}
	if unbudgeted.BudgetExceeded(1500) {
		t.Fatal("BudgetExceeded without budget = true, want false")
	}

	zero := Project{Budget: floatPtr(0)}
	if got := zero.BudgetProgress(1500); got != 0 {
		t.Fatalf("BudgetProgress with zero budget = %v, want 0", got)
	}
}

func TestOverdueCounts(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	events := []Event{
		{EventType: EventTypeStep, Status: EventStatusTodo, ExecutionDate: timePtr(yesterday)},
		{EventType: EventTypeStep, Status: EventStatusDone, ExecutionDate: timePtr(yesterday)},
		{EventType: EventTypeBilling, Status: EventStatusSent, PaymentStatus: strPtr(PaymentStatusPending), PaymentDueDate: timePtr(yesterday)},
	}

	if got := OverdueEventsCount(events, now); got != 1 {
		t.Fatalf("OverdueEventsCount = %d, want 1", got)
	}
	if got := PaymentOverdueCount(events, now); got != 1 {
		t.Fatalf("PaymentOverdueCount = %d, want 1", got)
	}
	if !HasOverdueEvents(events, now) || !HasPaymentOverdue(events, now) {
		t.Fatal("expected both overdue flags set")
	}
	if HasOverdueEvents(nil, now) {
		t.Fatal("no events should not be overdue")
	}
}

func TestProjectIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	lastWeek := now.AddDate(0, 0, -7)
	tomorrow := now.AddDate(0, 0, 1)

	active := Project{Status: ProjectStatusActive, EndDate: timePtr(lastWeek)}
	if !active.IsOverdue(now) {
		t.Fatal("active project past end date should be overdue")
	}

	completed := Project{Status: ProjectStatusCompleted, EndDate: timePtr(lastWeek)}
	if completed.IsOverdue(now) {
		t.Fatal("completed project is never overdue")
	}

	running := Project{Status: ProjectStatusActive, EndDate: timePtr(tomorrow)}
	if running.IsOverdue(now) {
		t.Fatal("project ending tomorrow is not overdue")
	}

	openEnded := Project{Status: ProjectStatusActive}
	if openEnded.IsOverdue(now) {
		t.Fatal("project without end date is never overdue")
	}
}
