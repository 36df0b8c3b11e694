package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead statuses
const (
	LeadStatusNew           = "new"
	LeadStatusContacted     = "contacted"
	LeadStatusInterested    = "interested"
	LeadStatusDemoScheduled = "demo_scheduled"
	LeadStatusDemoCompleted = "demo_completed"
	LeadStatusProposalSent  = "proposal_sent"
	LeadStatusNegotiation   = "negotiation"
	LeadStatusConverted     = "converted"
	LeadStatusLost          = "lost"
)

// Lead sources
const (
	LeadSourceWebsite       = "website"
	LeadSourceSocialMedia   = "social_media"
	LeadSourceReferral      = "referral"
	LeadSourceAdvertisement = "advertisement"
	LeadSourceEvent         = "event"
	LeadSourceOther         = "other"
)

// Lead is a prospective student captured from the website or a campaign
type Lead struct {
	gorm.Model
	FirstName          string     `gorm:"not null" json:"first_name"`
	LastName           string     `gorm:"not null" json:"last_name"`
	Email              string     `gorm:"index" json:"email"`
	Phone              string     `gorm:"index" json:"phone"`
	Age                *int       `json:"age,omitempty"`
	InterestedCourseID *uint      `json:"interested_course_id,omitempty"`
	InterestedCourse   *Course    `json:"interested_course,omitempty" gorm:"foreignKey:InterestedCourseID"`
	Status             string     `gorm:"index;default:'new'" json:"status"`
	Source             string     `gorm:"index;default:'website'" json:"source"`
	Notes              string     `json:"notes"`
	AssignedToID       *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo         *User      `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
	ConvertedAt        *time.Time `json:"converted_at,omitempty"`
}

// FullName returns the lead's display name.
func (l *Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}

// Customer is a converted lead, optionally linked to a system user
type Customer struct {
	gorm.Model
	UserID        *uint      `gorm:"uniqueIndex" json:"user_id,omitempty"`
	User          *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	LeadID        *uint      `gorm:"uniqueIndex" json:"lead_id,omitempty"`
	Lead          *Lead      `json:"lead,omitempty" gorm:"foreignKey:LeadID"`
	Company       string     `json:"company"`
	Position      string     `json:"position"`
	AssignedToID  *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo    *User      `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
	LastContacted *time.Time `json:"last_contacted,omitempty"`
}

// Deal statuses
const (
	DealStatusNew         = "new"
	DealStatusQualified   = "qualified"
	DealStatusProposal    = "proposal"
	DealStatusNegotiation = "negotiation"
	DealStatusWon         = "won"
	DealStatusLost        = "lost"
	DealStatusCancelled   = "cancelled"
)

// Deal tracks a sale in progress for a customer
type Deal struct {
	gorm.Model
	Title             string     `gorm:"not null" json:"title"`
	CustomerID        uint       `gorm:"index" json:"customer_id"`
	Customer          Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	LeadID            *uint      `gorm:"index" json:"lead_id,omitempty"`
	Value             float64    `json:"value"`
	Currency          string     `gorm:"default:'RUB'" json:"currency"`
	Status            string     `gorm:"index;default:'new'" json:"status"`
	Probability       int        `gorm:"default:0" json:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	AssignedToID      *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo        *User      `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
	CreatedByID       uint       `json:"created_by_id"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
}

// IsClosed reports whether the deal has reached a terminal status.
func (d *Deal) IsClosed() bool {
	return d.Status == DealStatusWon || d.Status == DealStatusLost || d.Status == DealStatusCancelled
}

// Activity types and statuses
const (
	ActivityTypeCall    = "call"
	ActivityTypeMeeting = "meeting"
	ActivityTypeEmail   = "email"
	ActivityTypeNote    = "note"

	ActivityStatusPlanned   = "planned"
	ActivityStatusCompleted = "completed"
	ActivityStatusCancelled = "cancelled"
)

// Activity is a planned or completed interaction with a lead or customer
type Activity struct {
	gorm.Model
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	ActivityType string     `gorm:"index" json:"activity_type"`
	Status       string     `gorm:"index;default:'planned'" json:"status"`
	CustomerID   *uint      `gorm:"index" json:"customer_id,omitempty"`
	LeadID       *uint      `gorm:"index" json:"lead_id,omitempty"`
	DealID       *uint      `gorm:"index" json:"deal_id,omitempty"`
	AssignedToID uint       `gorm:"index" json:"assigned_to_id"`
	AssignedTo   User       `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
	DueDate      time.Time  `gorm:"index" json:"due_date"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedByID  uint       `json:"created_by_id"`
}

// Task priorities and statuses
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"

	TaskStatusNew        = "new"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Task is internal back-office work assigned to a manager
type Task struct {
	gorm.Model
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	Priority     string     `gorm:"default:'medium'" json:"priority"`
	Status       string     `gorm:"index;default:'new'" json:"status"`
	AssignedToID uint       `gorm:"index" json:"assigned_to_id"`
	AssignedTo   User       `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
	DueDate      time.Time  `gorm:"index" json:"due_date"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedByID  uint       `json:"created_by_id"`
}

// Note is free-form text attached to a lead, customer or deal
type Note struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Content     string `json:"content"`
	CustomerID  *uint  `gorm:"index" json:"customer_id,omitempty"`
	LeadID      *uint  `gorm:"index" json:"lead_id,omitempty"`
	DealID      *uint  `gorm:"index" json:"deal_id,omitempty"`
	IsPrivate   bool   `gorm:"default:false" json:"is_private"`
	CreatedByID uint   `gorm:"index" json:"created_by_id"`
	CreatedBy   User   `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}
