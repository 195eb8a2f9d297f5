package services

import (
	"log"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// EventFilters carries the recognized event listing filters. Anything the
// HTTP layer does not bind here is silently ignored.
type EventFilters struct {
	EventType      string `form:"event_type"`
	Status         string `form:"status"`
	PaymentStatus  string `form:"payment_status"`
	ProjectID      uint   `form:"project_id"`
	ClientID       uint   `form:"client_id"`
	Search         string `form:"search"`
	PaymentOverdue bool   `form:"payment_overdue"`
	Sort           string `form:"sort"`
	Direction      string `form:"direction"`
}

// EventView is the listing/detail shape of an event with its derived facts.
type EventView struct {
	ID                 uint       `json:"id"`
	ProjectID          uint       `json:"project_id"`
	Name               string     `json:"name"`
	Description        *string    `json:"description"`
	Type               string     `json:"type"`
	EventType          string     `json:"event_type"`
	EventTypeLabel     string     `json:"event_type_label"`
	Status             string     `json:"status"`
	StatusLabel        string     `json:"status_label"`
	Amount             *float64   `json:"amount"`
	PaymentStatus      *string    `json:"payment_status"`
	PaymentStatusLabel string     `json:"payment_status_label"`
	CreatedDate        time.Time  `json:"created_date"`
	ExecutionDate      *time.Time `json:"execution_date"`
	SendDate           *time.Time `json:"send_date"`
	PaymentDueDate     *time.Time `json:"payment_due_date"`
	CompletedAt        *time.Time `json:"completed_at"`
	PaidAt             *time.Time `json:"paid_at"`
	IsOverdue          bool       `json:"is_overdue"`
	IsPaymentOverdue   bool       `json:"is_payment_overdue"`
	Project            *struct {
		ID     uint   `json:"id"`
		Name   string `json:"name"`
		Client *struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"client,omitempty"`
	} `json:"project,omitempty"`
}

// NewEventView shapes an event record for the UI.
func NewEventView(e *models.Event, now time.Time) EventView {
	view := EventView{
		ID:                 e.ID,
		ProjectID:          e.ProjectID,
		Name:               e.Name,
		Description:        e.Description,
		Type:               e.Type,
		EventType:          e.EventType,
		EventTypeLabel:     e.EventTypeLabel(),
		Status:             e.Status,
		StatusLabel:        e.StatusLabel(),
		Amount:             e.Amount,
		PaymentStatus:      e.PaymentStatus,
		PaymentStatusLabel: e.PaymentStatusLabel(),
		CreatedDate:        e.CreatedDate,
		ExecutionDate:      e.ExecutionDate,
		SendDate:           e.SendDate,
		PaymentDueDate:     e.PaymentDueDate,
		CompletedAt:        e.CompletedAt,
		PaidAt:             e.PaidAt,
		IsOverdue:          e.IsOverdue(now),
		IsPaymentOverdue:   e.IsPaymentOverdue(now),
	}

	if e.Project.ID != 0 {
		project := &struct {
			ID     uint   `json:"id"`
			Name   string `json:"name"`
			Client *struct {
				ID   uint   `json:"id"`
				Name string `json:"name"`
			} `json:"client,omitempty"`
		}{ID: e.Project.ID, Name: e.Project.Name}

		if e.Project.Client.ID != 0 {
			project.Client = &struct {
				ID   uint   `json:"id"`
				Name string `json:"name"`
			}{ID: e.Project.Client.ID, Name: e.Project.Client.Name}
		}
		view.Project = project
	}

	return view
}

// PaginatedEvents is one page of shaped events plus its meta block.
type PaginatedEvents struct {
	Data []EventView `json:"data"`
	Meta PageMeta    `json:"meta"`
}

// EventStatistics are the listing header counters.
type EventStatistics struct {
	Total   int64 `json:"total"`
	Todo    int64 `json:"todo"`
	Done    int64 `json:"done"`
	Overdue int64 `json:"overdue"`
}

// ClientOption is a dropdown entry for filter selects.
type ClientOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ProjectOption is a dropdown entry for filter selects.
type ProjectOption struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ClientID uint   `json:"client_id"`
}

// EventListData is the complete listing payload consumed by the events page.
type EventListData struct {
	Events   PaginatedEvents `json:"events"`
	Stats    EventStatistics `json:"stats"`
	Projects []ProjectOption `json:"projects"`
	Clients  []ClientOption  `json:"clients"`
	Filters  EventFilters    `json:"filters"`
}

// EventListService builds filtered, sorted, paginated event listings and
// their aggregate counters, scoped to one user.
type EventListService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewEventListService constructs an EventListService.
func NewEventListService(db *gorm.DB) *EventListService {
	if db == nil {
		db = config.DB
	}
	return &EventListService{db: db, now: time.Now}
}

// Paginate returns one page of events matching the filters.
func (s *EventListService) Paginate(userID uint, filters EventFilters, page, perPage int) (*PaginatedEvents, error) {
	page, perPage = normalizePage(page, perPage)
	now := s.now()

	query := s.applyFilters(eventsForUser(s.db, userID), filters, now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var events []models.Event
	err := s.applySorting(query, filters.Sort, filters.Direction).
		Select("events.*").
		Preload("Project").
		Preload("Project.Client").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	views := make([]EventView, 0, len(events))
	for i := range events {
		views = append(views, NewEventView(&events[i], now))
	}

	return &PaginatedEvents{
		Data: views,
		Meta: buildPageMeta(page, perPage, total),
	}, nil
}

// Statistics returns the listing counters: total, todo (todo + to_send),
// done (done + sent) and overdue.
func (s *EventListService) Statistics(userID uint) (*EventStatistics, error) {
	now := s.now()
	stats := &EventStatistics{}

	if err := eventsForUser(s.db, userID).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	if err := eventsForUser(s.db, userID).
		Where("events.status IN ?", []string{models.EventStatusTodo, models.EventStatusToSend}).
		Count(&stats.Todo).Error; err != nil {
		return nil, err
	}

	if err := eventsForUser(s.db, userID).
		Where("events.status IN ?", []string{models.EventStatusDone, models.EventStatusSent}).
		Count(&stats.Done).Error; err != nil {
		return nil, err
	}

	if err := scopeOverdueSteps(eventsForUser(s.db, userID), now).
		Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// AvailableClients lists the user's clients for the filter dropdown,
// company appended in parentheses when present.
func (s *EventListService) AvailableClients(userID uint) ([]ClientOption, error) {
	var clients []models.Client
	err := clientsForUser(s.db, userID).
		Select("id", "name", "company").
		Order("name").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}

	options := make([]ClientOption, 0, len(clients))
	for i := range clients {
		options = append(options, ClientOption{ID: clients[i].ID, Name: clients[i].DisplayName()})
	}
	return options, nil
}

// AvailableProjects lists the user's projects for the filter dropdown.
func (s *EventListService) AvailableProjects(userID uint) ([]ProjectOption, error) {
	var projects []models.Project
	err := projectsForUser(s.db, userID).
		Select("projects.id", "projects.name", "projects.client_id").
		Order("projects.name").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	options := make([]ProjectOption, 0, len(projects))
	for i := range projects {
		options = append(options, ProjectOption{
			ID:       projects[i].ID,
			Name:     projects[i].Name,
			ClientID: projects[i].ClientID,
		})
	}
	return options, nil
}

// GetCompleteData assembles the full listing payload. The batch is atomic:
// any failure surfaces as a single loading error.
func (s *EventListService) GetCompleteData(userID uint, filters EventFilters, page, perPage int) (*EventListData, error) {
	events, err := s.Paginate(userID, filters, page, perPage)
	if err != nil {
		log.Printf("event listing failed: %v", err)
		return nil, ErrLoadingData
	}

	stats, err := s.Statistics(userID)
	if err != nil {
		log.Printf("event statistics failed: %v", err)
		return nil, ErrLoadingData
	}

	projects, err := s.AvailableProjects(userID)
	if err != nil {
		log.Printf("event project options failed: %v", err)
		return nil, ErrLoadingData
	}

	clients, err := s.AvailableClients(userID)
	if err != nil {
		log.Printf("event client options failed: %v", err)
		return nil, ErrLoadingData
	}

	return &EventListData{
		Events:   *events,
		Stats:    *stats,
		Projects: projects,
		Clients:  clients,
		Filters:  filters,
	}, nil
}

func (s *EventListService) applyFilters(query *gorm.DB, filters EventFilters, now time.Time) *gorm.DB {
	if filters.EventType != "" {
		query = query.Where("events.event_type = ?", filters.EventType)
	}

	switch filters.Status {
	case "":
	case "todo":
		// "À faire" covers todo + to_send, consistent with the counters.
		query = query.Where("events.status IN ?", []string{models.EventStatusTodo, models.EventStatusToSend})
	case "done":
		// "Terminé" covers done + sent.
		query = query.Where("events.status IN ?", []string{models.EventStatusDone, models.EventStatusSent})
	case "overdue":
		query = scopeOverdueSteps(query, now)
	default:
		query = query.Where("events.status = ?", filters.Status)
	}

	switch filters.PaymentStatus {
	case "":
	case "overdue":
		query = scopePaymentOverdue(query, now)
	default:
		query = query.Where("events.payment_status = ?", filters.PaymentStatus)
	}

	if filters.ProjectID != 0 {
		query = query.Where("events.project_id = ?", filters.ProjectID)
	}

	if filters.ClientID != 0 {
		query = query.Where("projects.client_id = ?", filters.ClientID)
	}

	if filters.Search != "" {
		term := "%" + filters.Search + "%"
		query = query.Where(
			"(events.name LIKE ? OR events.description LIKE ? OR events.type LIKE ? OR projects.name LIKE ? OR clients.name LIKE ? OR clients.company LIKE ?)",
			term, term, term, term, term, term,
		)
	}

	if filters.PaymentOverdue {
		query = scopePaymentOverdue(query, now)
	}

	return query
}

func (s *EventListService) applySorting(query *gorm.DB, sortBy, direction string) *gorm.DB {
	dir := normalizeDirection(direction)

	switch sortBy {
	case "due_date", "execution_date", "send_date":
		// Single due-ish date regardless of event type.
		return query.Order("COALESCE(events.execution_date, events.send_date) " + dir)
	case "name":
		return query.Order("events.name " + dir)
	case "amount":
		// Step events carry no amount and sort last either way.
		return query.Order("events.amount IS NULL, events.amount " + dir)
	default:
		return query.Order("events.created_date " + dir)
	}
}

// scopeOverdueSteps restricts a scoped event query to step events still
// todo past their execution date.
func scopeOverdueSteps(query *gorm.DB, now time.Time) *gorm.DB {
	return query.
		Where("events.event_type = ?", models.EventTypeStep).
		Where("events.status = ?", models.EventStatusTodo).
		Where("DATE(events.execution_date) < ?", dateOf(now))
}

// scopePaymentOverdue restricts a scoped event query to pending billing
// events past their payment due date.
func scopePaymentOverdue(query *gorm.DB, now time.Time) *gorm.DB {
	return query.
		Where("events.event_type = ?", models.EventTypeBilling).
		Where("events.payment_status = ?", models.PaymentStatusPending).
		Where("DATE(events.payment_due_date) < ?", dateOf(now))
}
