// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// RoleApplicant is a job seeker, can apply to job posts and withdraw applications
	RoleApplicant = "applicant"
	// RoleEmployer owns a company and its job posts, reviews incoming applications
	RoleEmployer = "employer"
	// RoleAdmin is a platform admin, moderates job posts
	RoleAdmin = "admin"
)

// User is gorm model for store user account data in DB
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username string    `gorm:"uniqueIndex;not null" json:"username"`
	Password string    `json:"-"`
	Email    string    `gorm:"index" json:"email"`
	GoogleID string    `json:"-"`
	Role     string    `gorm:"not null" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Company is owned by exactly one employer user and owns job posts
type Company struct {
	ID     uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	LogoPath    string `json:"logo_path"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
