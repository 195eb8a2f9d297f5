package services

import (
	"errors"
	"time"

	"freelance-crm-api/config"
	"freelance-crm-api/models"

	"gorm.io/gorm"
)

// ProjectDetailData is the detail shape of a project.
type ProjectDetailData struct {
	ID             uint                 `json:"id"`
	ClientID       uint                 `json:"client_id"`
	Name           string               `json:"name"`
	Description    *string              `json:"description"`
	Status         string               `json:"status"`
	StatusLabel    string               `json:"status_label"`
	Budget         *float64             `json:"budget"`
	StartDate      *time.Time           `json:"start_date"`
	EndDate        *time.Time           `json:"end_date"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      *time.Time           `json:"updated_at"`
	IsOverdue      bool                 `json:"is_overdue"`
	Totals         models.ProjectTotals `json:"totals"`
	BudgetProgress float64              `json:"budget_progress"`
	BudgetExceeded bool                 `json:"budget_exceeded"`

	Client *struct {
		ID      uint    `json:"id"`
		Name    string  `json:"name"`
		Company *string `json:"company"`
		Email   *string `json:"email"`
	} `json:"client,omitempty"`
}

// ProjectDetailPayload wraps a detail lookup; a missing or foreign project
// yields an empty payload with an error message instead of a failure.
type ProjectDetailPayload struct {
	Project *ProjectDetailData `json:"project"`
	Events  []EventView        `json:"events"`
	Errors  map[string]string  `json:"errors"`
}

// ProjectDetailService resolves a single project with its events.
type ProjectDetailService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewProjectDetailService constructs a ProjectDetailService.
func NewProjectDetailService(db *gorm.DB) *ProjectDetailService {
	if db == nil {
		db = config.DB
	}
	return &ProjectDetailService{db: db, now: time.Now}
}

// GetProjectDetails loads a project owned by the user, its client and its
// events. Unknown ids resolve to the not-found envelope, not an error.
func (s *ProjectDetailService) GetProjectDetails(userID, projectID uint) (*ProjectDetailPayload, error) {
	var project models.Project
	err := projectsForUser(s.db, userID).
		Where("projects.id = ?", projectID).
		Select("projects.*").
		Preload("Client").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("events.created_at DESC")
		}).
		First(&project).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ProjectDetailPayload{
			Events: []EventView{},
			Errors: map[string]string{"project": "Projet introuvable"},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	totals := models.ComputeProjectTotals(project.Events, now)

	detail := &ProjectDetailData{
		ID:             project.ID,
		ClientID:       project.ClientID,
		Name:           project.Name,
		Description:    project.Description,
		Status:         project.Status,
		StatusLabel:    project.StatusLabel(),
		Budget:         project.Budget,
		StartDate:      project.StartDate,
		EndDate:        project.EndDate,
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
		IsOverdue:      project.IsOverdue(now),
		Totals:         totals,
		BudgetProgress: project.BudgetProgress(totals.TotalBilled),
		BudgetExceeded: project.BudgetExceeded(totals.TotalBilled),
	}

	if project.Client.ID != 0 {
		detail.Client = &struct {
			ID      uint    `json:"id"`
			Name    string  `json:"name"`
			Company *string `json:"company"`
			Email   *string `json:"email"`
		}{
			ID:      project.Client.ID,
			Name:    project.Client.Name,
			Company: project.Client.Company,
			Email:   project.Client.Email,
		}
	}

	events := make([]EventView, 0, len(project.Events))
	for i := range project.Events {
		events = append(events, NewEventView(&project.Events[i], now))
	}

	return &ProjectDetailPayload{
		Project: detail,
		Events:  events,
		Errors:  map[string]string{},
	}, nil
}
