package models

import "time"

// Client represents the clients table
type Client struct {
	ID        uint       `gorm:"primaryKey;column:id" json:"id"`
	UserID    uint       `gorm:"column:user_id" json:"user_id"`
	Name      string     `gorm:"column:name" json:"name"`
	Email     *string    `gorm:"column:email" json:"email"`
	Phone     *string    `gorm:"column:phone" json:"phone"`
	Company   *string    `gorm:"column:company" json:"company"`
	Address   *string    `gorm:"column:address" json:"address"`
	Notes     *string    `gorm:"column:notes" json:"notes"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Projects []Project `gorm:"foreignKey:ClientID;references:ID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
}

// TableName overrides the table name for Client
func (Client) TableName() string {
	return "clients"
}

// DisplayName returns the client name with the company appended in
// parentheses when one is set. Used for filter dropdowns.
func (c *Client) DisplayName() string {
	if c.Company != nil && *c.Company != "" {
		return c.Name + " (" + *c.Company + ")"
	}
	return c.Name
}
