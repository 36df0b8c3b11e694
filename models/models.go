package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
	RoleParent  = "parent"
)

// User represents any account in the system: students, teachers,
// parents and back-office administrators share one table with a role tag.
type User struct {
	gorm.Model
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `json:"-"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Role        string    `gorm:"index;default:'student'" json:"role"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	IsVerified  bool      `gorm:"default:false" json:"is_verified"`
	GoogleID    string    `gorm:"default:null" json:"google_id,omitempty"`
	ParentID    *uint     `json:"parent_id,omitempty"`
	Parent      *User     `json:"-" gorm:"foreignKey:ParentID"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// FullName returns the display name, falling back to the username.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
