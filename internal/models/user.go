package models

import "time"

// User is an account allowed into the admin area.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	Email     string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Name      string    `gorm:"size:120" json:"name,omitempty"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
