package domain

import "time"

// User is a dashboard account. Leads reference users only through the
// denormalized assignee snapshot, never by foreign key.
type User struct {
	ID           string    `json:"id"        gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name"      gorm:"type:varchar(255);not null"`
	Email        string    `json:"email"     gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"         gorm:"type:varchar(255);not null"`
	Role         string    `json:"role"      gorm:"type:varchar(32);not null;default:'agent'"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
