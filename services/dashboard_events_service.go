package services

import (
	"fmt"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// DashboardEventsService lists the open tasks shown on the dashboard.
type DashboardEventsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardEventsService constructs a DashboardEventsService.
func NewDashboardEventsService(db *gorm.DB) *DashboardEventsService {
	if db == nil {
		db = config.DB
	}
	return &DashboardEventsService{db: db, now: time.Now}
}

// UpcomingTasks returns the user's open tasks: todo steps and to_send
// invoices, merged into one list ordered ascending by the applicable date
// of each row. Urgent mode keeps only rows already past that date.
func (s *DashboardEventsService) UpcomingTasks(userID uint, urgentOnly bool, limit int) ([]EventView, error) {
	if limit < 1 {
		limit = 100
	}
	now := s.now()

	query := eventsForUser(s.db, userID)
	if urgentOnly {
		query = query.Where(
			s.db.Where(
				"events.event_type = ? AND events.status = ? AND DATE(events.execution_date) < ?",
				models.EventTypeStep, models.EventStatusTodo, dateOf(now),
			).Or(
				"events.event_type = ? AND events.status = ? AND DATE(events.send_date) < ?",
				models.EventTypeBilling, models.EventStatusToSend, dateOf(now),
			),
		)
	} else {
		query = query.Where(
			s.db.Where(
				"events.event_type = ? AND events.status = ?",
				models.EventTypeStep, models.EventStatusTodo,
			).Or(
				"events.event_type = ? AND events.status = ?",
				models.EventTypeBilling, models.EventStatusToSend,
			),
		)
	}

	var events []models.Event
	err := query.
		Select("events.*").
		Preload("Project").
		Preload("Project.Client").
		Order(applicableDateOrder()).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	views := make([]EventView, 0, len(events))
	for i := range events {
		views = append(views, NewEventView(&events[i], now))
	}
	return views, nil
}

// UrgentTasks is the urgent-only shortcut.
func (s *DashboardEventsService) UrgentTasks(userID uint, limit int) ([]EventView, error) {
	return s.UpcomingTasks(userID, true, limit)
}

// applicableDateOrder sorts step rows by execution_date and billing rows by
// send_date in one merged ascending ordering. The spliced values are
// package constants, never caller input.
func applicableDateOrder() string {
	return fmt.Sprintf(
		"CASE WHEN events.event_type = '%s' THEN events.execution_date ELSE events.send_date END ASC",
		models.EventTypeStep,
	)
}
