package models

import "gorm.io/gorm"

// Support ticket statuses and priorities
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"

	TicketPriorityLow    = "low"
	TicketPriorityMedium = "medium"
	TicketPriorityHigh   = "high"
)

// SupportTicket is a help request raised by a student or parent
type SupportTicket struct {
	gorm.Model
	Title        string          `gorm:"not null" json:"title"`
	Description  string          `json:"description"`
	Status       string          `gorm:"index;default:'open'" json:"status"`
	Priority     string          `gorm:"default:'medium'" json:"priority"`
	UserID       uint            `gorm:"index" json:"user_id"`
	User         User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	AssignedToID *uint           `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User           `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
	Messages     []TicketMessage `json:"messages,omitempty" gorm:"foreignKey:TicketID"`
}

// TicketMessage is one message in a ticket's thread
type TicketMessage struct {
	gorm.Model
	TicketID uint   `gorm:"index" json:"ticket_id"`
	SenderID uint   `json:"sender_id"`
	Sender   User   `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Content  string `gorm:"not null" json:"content"`
}
