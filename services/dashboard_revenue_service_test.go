package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		period          string
		wantStart       time.Time
		wantGranularity string
	}{
		{"current_month", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), GranularityDay},
		{"7days", time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), GranularityDay},
		{"30days", time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC), GranularityDay},
		{"3months", time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), GranularityWeek},
		{"6months", time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC), GranularityMonth},
		{"12months", time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), GranularityMonth},
		{"anything else", time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC), GranularityMonth},
	}

	for _, tc := range cases {
		t.Run(tc.period, func(t *testing.T) {
			start, granularity := resolvePeriod(tc.period, now, nil)
			if !start.Equal(tc.wantStart) {
				t.Fatalf("start = %v, want %v", start, tc.wantStart)
			}
			if granularity != tc.wantGranularity {
				t.Fatalf("granularity = %s, want %s", granularity, tc.wantGranularity)
			}
		})
	}
}

func TestResolvePeriodAll(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	// Without any billing event the range covers one year at month buckets.
	start, granularity := resolvePeriod("all", now, nil)
	if !start.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if granularity != GranularityMonth {
		t.Fatalf("granularity = %s, want month", granularity)
	}

	// A short history drops to day buckets.
	first := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	start, granularity = resolvePeriod("all", now, &first)
	if !start.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if granularity != GranularityDay {
		t.Fatalf("granularity = %s, want day", granularity)
	}

	// A few months of history buckets by week.
	first = time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
	if _, granularity = resolvePeriod("all", now, &first); granularity != GranularityWeek {
		t.Fatalf("granularity = %s, want week", granularity)
	}
}

func TestBucketStarts(t *testing.T) {
	start := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	days := bucketStarts(start, end, GranularityDay)
	if len(days) != 7 {
		t.Fatalf("day buckets = %d, want 7", len(days))
	}
	if !days[0].Equal(start) || !days[6].Equal(end) {
		t.Fatalf("day bucket edges = %v .. %v", days[0], days[6])
	}

	// Week buckets snap back to the enclosing Monday.
	weeks := bucketStarts(time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), end, GranularityWeek)
	if len(weeks) != 2 {
		t.Fatalf("week buckets = %d, want 2", len(weeks))
	}
	if !weeks[0].Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first week bucket = %v", weeks[0])
	}

	months := bucketStarts(time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC), end, GranularityMonth)
	if len(months) != 7 {
		t.Fatalf("month buckets = %d, want 7", len(months))
	}
	if !months[0].Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first month bucket = %v", months[0])
	}
}

func TestBucketLabels(t *testing.T) {
	start := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	days := bucketLabels(bucketStarts(start, end, GranularityDay), GranularityDay)
	if len(days) != 7 {
		t.Fatalf("day labels = %d, want 7", len(days))
	}
	if days[0] != "09/06" || days[6] != "15/06" {
		t.Fatalf("day label edges = %q .. %q", days[0], days[6])
	}
	for i := 1; i < 6; i++ {
		if days[i] != "" {
			t.Fatalf("day label %d = %q, want empty", i, days[i])
		}
	}

	months := bucketLabels(bucketStarts(time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC), end, GranularityMonth), GranularityMonth)
	if months[0] != "Dec 24" || months[len(months)-1] != "Jun 25" {
		t.Fatalf("month label edges = %q .. %q", months[0], months[len(months)-1])
	}
	for i, label := range months {
		if label == "" {
			t.Fatalf("month label %d is empty", i)
		}
	}
}

func TestBucketTotalsClipsToEndDate(t *testing.T) {
	end := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	buckets := []time.Time{
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
	}

	points := []revenuePoint{
		{At: time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC), Amount: 100},
		{At: time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC), Amount: 250},
		// Past the end date even though the week bucket runs further.
		{At: time.Date(2025, 6, 16, 1, 0, 0, 0, time.UTC), Amount: 999},
		// Before the first bucket.
		{At: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), Amount: 999},
	}

	totals := bucketTotals(points, buckets, end)
	if totals[0] != 100 {
		t.Fatalf("first bucket = %v, want 100", totals[0])
	}
	if totals[1] != 250 {
		t.Fatalf("second bucket = %v, want 250", totals[1])
	}
}

func TestRevenueChartSevenDays(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			pattern: regexp.MustCompile(`(?i)SELECT events\..* FROM .events.*paid_at`),
			columns: []string{"id", "project_id", "name", "event_type", "status", "amount", "payment_status", "paid_at"},
			rows: [][]driver.Value{
				{int64(1), int64(7), "Acompte", "billing", "sent", 500.0, "paid", time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)},
			},
		},
		{
			pattern: regexp.MustCompile(`(?i)SELECT events\..* FROM .events.*send_date`),
			columns: []string{"id", "project_id", "name", "event_type", "status", "amount", "send_date"},
			rows: [][]driver.Value{
				{int64(2), int64(7), "Facture finale", "billing", "sent", 300.0, time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewDashboardRevenueService(db)
	svc.now = func() time.Time { return now }

	chart, err := svc.RevenueChart(1, "7days")
	if err != nil {
		t.Fatalf("RevenueChart returned error: %v", err)
	}

	if chart.StartDate != "2025-06-09" || chart.EndDate != "2025-06-15" {
		t.Fatalf("range = %s .. %s", chart.StartDate, chart.EndDate)
	}
	if chart.Granularity != GranularityDay || chart.Period != "7days" {
		t.Fatalf("granularity/period = %s/%s", chart.Granularity, chart.Period)
	}
	if len(chart.Labels) != 7 {
		t.Fatalf("labels = %d, want 7", len(chart.Labels))
	}
	if len(chart.Datasets) != 2 {
		t.Fatalf("datasets = %d, want 2", len(chart.Datasets))
	}
	for _, dataset := range chart.Datasets {
		if len(dataset.Data) != 7 {
			t.Fatalf("dataset %q has %d points, want 7", dataset.Label, len(dataset.Data))
		}
	}

	if chart.Datasets[0].Label != "Revenus réels" || chart.Datasets[1].Label != "Facturé" {
		t.Fatalf("dataset labels = %q, %q", chart.Datasets[0].Label, chart.Datasets[1].Label)
	}
	// June 10th is the second bucket, June 12th the fourth.
	if chart.Datasets[0].Data[1] != 500 {
		t.Fatalf("paid bucket = %v, want 500", chart.Datasets[0].Data[1])
	}
	if chart.Datasets[1].Data[3] != 300 {
		t.Fatalf("invoiced bucket = %v, want 300", chart.Datasets[1].Data[3])
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}
