package models

// Project statuses.
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCancelled = "cancelled"
)

// Event types.
const (
	EventTypeStep    = "step"
	EventTypeBilling = "billing"
)

// Event statuses. Steps move through todo/done, billing events through
// to_send/sent; both can be cancelled.
const (
	EventStatusTodo      = "todo"
	EventStatusDone      = "done"
	EventStatusToSend    = "to_send"
	EventStatusSent      = "sent"
	EventStatusCancelled = "cancelled"
)

// Payment statuses, meaningful only on sent billing events.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Display labels.
var ProjectStatusLabels = map[string]string{
	ProjectStatusActive:    "Actif",
	ProjectStatusCompleted: "Terminé",
	ProjectStatusOnHold:    "En pause",
	ProjectStatusCancelled: "Annulé",
}

var EventTypeLabels = map[string]string{
	EventTypeStep:    "Étape",
	EventTypeBilling: "Facturation",
}

var EventStatusLabels = map[string]string{
	EventStatusTodo:      "À faire",
	EventStatusDone:      "Fait",
	EventStatusToSend:    "À envoyer",
	EventStatusSent:      "Envoyée",
	EventStatusCancelled: "Annulé",
}

var PaymentStatusLabels = map[string]string{
	PaymentStatusPending: "En attente",
	PaymentStatusPaid:    "Payée",
}

var statusesByEventType = map[string][]string{
	EventTypeStep:    {EventStatusTodo, EventStatusDone, EventStatusCancelled},
	EventTypeBilling: {EventStatusToSend, EventStatusSent, EventStatusCancelled},
}

var categoriesByEventType = map[string][]string{
	EventTypeStep:    {"meeting", "development", "design", "testing"},
	EventTypeBilling: {"invoice", "quote", "deposit"},
}

// StatusesForEventType returns the statuses an event of the given type may
// carry, nil for an unknown type.
func StatusesForEventType(eventType string) []string {
	return statusesByEventType[eventType]
}

// CategoriesForEventType returns the categories applicable to the given
// event type, nil for an unknown type.
func CategoriesForEventType(eventType string) []string {
	return categoriesByEventType[eventType]
}

func IsValidProjectStatus(status string) bool {
	_, ok := ProjectStatusLabels[status]
	return ok
}

// IsValidStatusForEventType reports whether status belongs to the given
// event type's status set.
func IsValidStatusForEventType(eventType, status string) bool {
	for _, s := range statusesByEventType[eventType] {
		if s == status {
			return true
		}
	}
	return false
}
