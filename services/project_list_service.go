package services

import (
	"log"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// ProjectFilters carries the recognized project listing filters.
type ProjectFilters struct {
	Search            string `form:"search"`
	Status            string `form:"status"`
	ClientID          uint   `form:"client_id"`
	HasOverdueTasks   bool   `form:"has_overdue_tasks"`
	HasPaymentOverdue bool   `form:"has_payment_overdue"`
	SortBy            string `form:"sort_by"`
	SortOrder         string `form:"sort_order"`
}

// ProjectView is the listing shape of a project with its derived facts.
type ProjectView struct {
	ID             uint                 `json:"id"`
	ClientID       uint                 `json:"client_id"`
	Name           string               `json:"name"`
	Description    *string              `json:"description"`
	Status         string               `json:"status"`
	StatusLabel    string               `json:"status_label"`
	StartDate      *time.Time           `json:"start_date"`
	EndDate        *time.Time           `json:"end_date"`
	Budget         *float64             `json:"budget"`
	CreatedAt      time.Time            `json:"created_at"`
	Totals         models.ProjectTotals `json:"totals"`
	BudgetProgress float64              `json:"budget_progress"`
	BudgetExceeded bool                 `json:"budget_exceeded"`

	EventsCount         int  `json:"events_count"`
	OverdueEventsCount  int  `json:"overdue_events_count"`
	PaymentOverdueCount int  `json:"payment_overdue_count"`
	HasOverdueEvents    bool `json:"has_overdue_events"`
	HasPaymentOverdue   bool `json:"has_payment_overdue"`

	Client *struct {
		ID      uint    `json:"id"`
		Name    string  `json:"name"`
		Company *string `json:"company"`
	} `json:"client,omitempty"`
}

// NewProjectView shapes a project record plus its loaded events for the UI.
func NewProjectView(p *models.Project, now time.Time) ProjectView {
	totals := models.ComputeProjectTotals(p.Events, now)
	overdueCount := models.OverdueEventsCount(p.Events, now)
	paymentOverdueCount := models.PaymentOverdueCount(p.Events, now)

	view := ProjectView{
		ID:             p.ID,
		ClientID:       p.ClientID,
		Name:           p.Name,
		Description:    p.Description,
		Status:         p.Status,
		StatusLabel:    p.StatusLabel(),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Budget:         p.Budget,
		CreatedAt:      p.CreatedAt,
		Totals:         totals,
		BudgetProgress: p.BudgetProgress(totals.TotalBilled),
		BudgetExceeded: p.BudgetExceeded(totals.TotalBilled),

		EventsCount:         len(p.Events),
		OverdueEventsCount:  overdueCount,
		PaymentOverdueCount: paymentOverdueCount,
		HasOverdueEvents:    overdueCount > 0,
		HasPaymentOverdue:   paymentOverdueCount > 0,
	}

	if p.Client.ID != 0 {
		view.Client = &struct {
			ID      uint    `json:"id"`
			Name    string  `json:"name"`
			Company *string `json:"company"`
		}{ID: p.Client.ID, Name: p.Client.Name, Company: p.Client.Company}
	}

	return view
}

// PaginatedProjects is one page of shaped projects plus its meta block.
type PaginatedProjects struct {
	Data []ProjectView `json:"data"`
	Meta PageMeta      `json:"meta"`
}

// ProjectStatistics are the per-status listing counters.
type ProjectStatistics struct {
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	OnHold    int64 `json:"on_hold"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// ProjectListData is the complete listing payload consumed by the projects page.
type ProjectListData struct {
	Projects   PaginatedProjects `json:"projects"`
	Statistics ProjectStatistics `json:"statistics"`
	Clients    []ClientOption    `json:"clients"`
}

// ProjectListService builds filtered, sorted, paginated project listings
// and their per-status counters, scoped to one user.
type ProjectListService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewProjectListService constructs a ProjectListService.
func NewProjectListService(db *gorm.DB) *ProjectListService {
	if db == nil {
		db = config.DB
	}
	return &ProjectListService{db: db, now: time.Now}
}

// Paginate returns one page of projects matching the filters.
func (s *ProjectListService) Paginate(userID uint, filters ProjectFilters, page, perPage int) (*PaginatedProjects, error) {
	page, perPage = normalizePage(page, perPage)
	now := s.now()

	query := s.applyFilters(projectsForUser(s.db, userID), filters, now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var projects []models.Project
	err := s.applySorting(query, filters.SortBy, filters.SortOrder).
		Select("projects.*").
		Preload("Client").
		Preload("Events").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	views := make([]ProjectView, 0, len(projects))
	for i := range projects {
		views = append(views, NewProjectView(&projects[i], now))
	}

	return &PaginatedProjects{
		Data: views,
		Meta: buildPageMeta(page, perPage, total),
	}, nil
}

// Statistics counts the user's projects per status with one grouped query.
func (s *ProjectListService) Statistics(userID uint) (*ProjectStatistics, error) {
	var rows []struct {
		Status string
		Count  int64
	}

	err := projectsForUser(s.db, userID).
		Select("projects.status AS status, COUNT(*) AS count").
		Group("projects.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &ProjectStatistics{}
	for _, row := range rows {
		switch row.Status {
		case models.ProjectStatusActive:
			stats.Active = row.Count
		case models.ProjectStatusCompleted:
			stats.Completed = row.Count
		case models.ProjectStatusOnHold:
			stats.OnHold = row.Count
		case models.ProjectStatusCancelled:
			stats.Cancelled = row.Count
		}
		stats.Total += row.Count
	}
	return stats, nil
}

// AvailableClients lists the user's clients for the filter dropdown.
func (s *ProjectListService) AvailableClients(userID uint) ([]ClientOption, error) {
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

// GetCompleteData assembles the full listing payload as one atomic batch.
func (s *ProjectListService) GetCompleteData(userID uint, filters ProjectFilters, page, perPage int) (*ProjectListData, error) {
	projects, err := s.Paginate(userID, filters, page, perPage)
	if err != nil {
		log.Printf("project listing failed: %v", err)
		return nil, ErrLoadingData
	}

	stats, err := s.Statistics(userID)
	if err != nil {
		log.Printf("project statistics failed: %v", err)
		return nil, ErrLoadingData
	}

	clients, err := s.AvailableClients(userID)
	if err != nil {
		log.Printf("project client options failed: %v", err)
		return nil, ErrLoadingData
	}

	return &ProjectListData{
		Projects:   *projects,
		Statistics: *stats,
		Clients:    clients,
	}, nil
}

func (s *ProjectListService) applyFilters(query *gorm.DB, filters ProjectFilters, now time.Time) *gorm.DB {
	if filters.Search != "" {
		term := "%" + filters.Search + "%"
		query = query.Where(
			"(projects.name LIKE ? OR projects.description LIKE ? OR clients.name LIKE ? OR clients.company LIKE ?)",
			term, term, term, term,
		)
	}

	if filters.Status != "" {
		query = query.Where("projects.status = ?", filters.Status)
	}

	if filters.ClientID != 0 {
		query = query.Where("projects.client_id = ?", filters.ClientID)
	}

	if filters.HasOverdueTasks {
		query = query.Where(
			"EXISTS (SELECT 1 FROM events WHERE events.project_id = projects.id AND events.event_type = ? AND events.status = ? AND DATE(events.execution_date) < ?)",
			models.EventTypeStep, models.EventStatusTodo, dateOf(now),
		)
	}

	if filters.HasPaymentOverdue {
		query = query.Where(
			"EXISTS (SELECT 1 FROM events WHERE events.project_id = projects.id AND events.event_type = ? AND events.payment_status = ? AND DATE(events.payment_due_date) < ?)",
			models.EventTypeBilling, models.PaymentStatusPending, dateOf(now),
		)
	}

	return query
}

func (s *ProjectListService) applySorting(query *gorm.DB, sortBy, sortOrder string) *gorm.DB {
	dir := normalizeDirection(sortOrder)

	switch sortBy {
	case "name":
		return query.Order("projects.name " + dir)
	case "status":
		return query.Order("projects.status " + dir)
	case "start_date":
		return query.Order("projects.start_date " + dir)
	case "end_date":
		return query.Order("projects.end_date " + dir)
	case "budget":
		return query.Order("projects.budget " + dir)
	default:
		return query.Order("projects.created_at " + dir)
	}
}
