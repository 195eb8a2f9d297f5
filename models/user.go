package models

import "time"

// User represents the users table
type User struct {
	ID        uint       `gorm:"primaryKey;column:id" json:"id"`
	Name      string     `gorm:"column:name" json:"name"`
	Email     string     `gorm:"column:email" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Clients []Client `gorm:"foreignKey:UserID;references:ID" json:"clients,omitempty"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
