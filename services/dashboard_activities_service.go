package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	activitySourceLimit  = 10
	defaultActivityLimit = 15
)

// ActivityRef points an activity entry at its parent project or client.
type ActivityRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	ID            string       `json:"id"`
	Type          string       `json:"type"`
	EntityType    string       `json:"entity_type"`
	Name          string       `json:"name"`
	Company       *string      `json:"company"`
	Status        string       `json:"status"`
	Timestamp     time.Time    `json:"timestamp"`
	Link          string       `json:"link"`
	ParentProject *ActivityRef `json:"parent_project"`
	ParentClient  *ActivityRef `json:"parent_client"`
	Amount        *float64     `json:"amount"`
}

// DashboardActivitiesService builds the recent-activity timeline out of
// five bounded sources: clients created, projects created, events created,
// events completed and invoices paid.
type DashboardActivitiesService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardActivitiesService constructs a DashboardActivitiesService.
func NewDashboardActivitiesService(db *gorm.DB) *DashboardActivitiesService {
	if db == nil {
		db = config.DB
	}
	return &DashboardActivitiesService{db: db, now: time.Now}
}

// RecentActivities fetches the five sources concurrently and merges them
// into one descending timeline truncated to limit.
func (s *DashboardActivitiesService) RecentActivities(userID uint, limit int) ([]Activity, error) {
	if limit < 1 {
		limit = defaultActivityLimit
	}

	var created, completed, paid, clients, projects []Activity

	g := new(errgroup.Group)
	g.Go(func() (err error) {
		clients, err = s.recentClients(userID)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.recentProjects(userID)
		return err
	})
	g.Go(func() (err error) {
		created, err = s.recentEventsCreated(userID)
		return err
	})
	g.Go(func() (err error) {
		completed, err = s.recentEventsCompleted(userID)
		return err
	})
	g.Go(func() (err error) {
		paid, err = s.recentEventsPaid(userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("recent activities failed: %v", err)
		return nil, ErrLoadingData
	}

	return mergeActivities(s.now(), limit, clients, projects, created, completed, paid), nil
}

// mergeActivities concatenates the source slices, drops entries stamped in
// the future, sorts descending by timestamp and truncates to limit.
func mergeActivities(now time.Time, limit int, sources ...[]Activity) []Activity {
	merged := make([]Activity, 0)
	for _, source := range sources {
		for _, activity := range source {
			if activity.Timestamp.After(now) {
				continue
			}
			merged = append(merged, activity)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func (s *DashboardActivitiesService) recentClients(userID uint) ([]Activity, error) {
	var clients []models.Client
	err := clientsForUser(s.db, userID).
		Order("clients.created_at DESC").
		Limit(activitySourceLimit).
		Find(&clients).Error
	if err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(clients))
	for i := range clients {
		client := &clients[i]
		activities = append(activities, Activity{
			ID:         fmt.Sprintf("client_%d", client.ID),
			Type:       "client",
			EntityType: "Client",
			Name:       client.Name,
			Company:    client.Company,
			Status:     "created",
			Timestamp:  client.CreatedAt,
			Link:       fmt.Sprintf("/clients/%d", client.ID),
		})
	}
	return activities, nil
}

func (s *DashboardActivitiesService) recentProjects(userID uint) ([]Activity, error) {
	var projects []models.Project
	err := projectsForUser(s.db, userID).
		Select("projects.*").
		Preload("Client").
		Order("projects.created_at DESC").
		Limit(activitySourceLimit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(projects))
	for i := range projects {
		project := &projects[i]
		activities = append(activities, Activity{
			ID:           fmt.Sprintf("project_%d", project.ID),
			Type:         "project",
			EntityType:   "Projet",
			Name:         project.Name,
			Status:       "created",
			Timestamp:    project.CreatedAt,
			Link:         fmt.Sprintf("/projects/%d", project.ID),
			ParentClient: &ActivityRef{ID: project.Client.ID, Name: project.Client.Name},
		})
	}
	return activities, nil
}

func (s *DashboardActivitiesService) recentEventsCreated(userID uint) ([]Activity, error) {
	var events []models.Event
	err := eventsForUser(s.db, userID).
		Select("events.*").
		Preload("Project").
		Preload("Project.Client").
		Order("events.created_at DESC").
		Limit(activitySourceLimit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(events))
	for i := range events {
		activities = append(activities, eventActivity(&events[i], "event_created_", "created", events[i].CreatedAt))
	}
	return activities, nil
}

func (s *DashboardActivitiesService) recentEventsCompleted(userID uint) ([]Activity, error) {
	var events []models.Event
	err := eventsForUser(s.db, userID).
		Where(
			s.db.Where(
				"events.event_type = ? AND events.status = ?",
				models.EventTypeStep, models.EventStatusDone,
			).Or(
				"events.event_type = ? AND events.status = ?",
				models.EventTypeBilling, models.EventStatusSent,
			),
		).
		Where("events.completed_at IS NOT NULL").
		Select("events.*").
		Preload("Project").
		Preload("Project.Client").
		Order("events.completed_at DESC").
		Limit(activitySourceLimit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(events))
	for i := range events {
		event := &events[i]
		status := models.EventStatusDone
		if event.IsBilling() {
			status = models.EventStatusSent
		}
		activities = append(activities, eventActivity(event, "event_completed_", status, *event.CompletedAt))
	}
	return activities, nil
}

func (s *DashboardActivitiesService) recentEventsPaid(userID uint) ([]Activity, error) {
	var events []models.Event
	err := eventsForUser(s.db, userID).
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.payment_status = ?", models.PaymentStatusPaid).
		Where("events.paid_at IS NOT NULL").
		Select("events.*").
		Preload("Project").
		Preload("Project.Client").
		Order("events.paid_at DESC").
		Limit(activitySourceLimit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(events))
	for i := range events {
		event := &events[i]
		activity := eventActivity(event, "event_paid_", "paid", *event.PaidAt)
		activity.Amount = event.Amount
		activities = append(activities, activity)
	}
	return activities, nil
}

func eventActivity(event *models.Event, idPrefix, status string, timestamp time.Time) Activity {
	activity := Activity{
		ID:         fmt.Sprintf("%s%d", idPrefix, event.ID),
		Type:       "step",
		EntityType: "Étape",
		Name:       event.Name,
		Status:     status,
		Timestamp:  timestamp,
		Link:       fmt.Sprintf("/events/%d", event.ID),
		ParentProject: &ActivityRef{
			ID:   event.Project.ID,
			Name: event.Project.Name,
		},
		ParentClient: &ActivityRef{
			ID:   event.Project.Client.ID,
			Name: event.Project.Client.Name,
		},
	}
	if event.IsBilling() {
		activity.Type = "billing"
		activity.EntityType = "Facturation"
		activity.Amount = event.Amount
	}
	return activity
}
