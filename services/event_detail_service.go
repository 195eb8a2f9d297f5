package services

import (
	"errors"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// EventDetailPayload wraps a detail lookup; a missing or foreign event
// yields an empty payload with an error message instead of a failure.
type EventDetailPayload struct {
	Event  *EventView        `json:"event"`
	Errors map[string]string `json:"errors"`
}

// EventDetailService resolves a single event with its project and client.
type EventDetailService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewEventDetailService constructs an EventDetailService.
func NewEventDetailService(db *gorm.DB) *EventDetailService {
	if db == nil {
		db = config.DB
	}
	return &EventDetailService{db: db, now: time.Now}
}

// GetEventDetails loads an event owned by the user with its relations.
func (s *EventDetailService) GetEventDetails(userID, eventID uint) (*EventDetailPayload, error) {
	var event models.Event
	err := eventsForUser(s.db, userID).
		Where("events.id = ?", eventID).
		Select("events.*").
		Preload("Project").
		Preload("Project.Client").
		First(&event).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &EventDetailPayload{
			Errors: map[string]string{"event": "Evenement introuvable"},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	view := NewEventView(&event, s.now())
	return &EventDetailPayload{
		Event:  &view,
		Errors: map[string]string{},
	}, nil
}
