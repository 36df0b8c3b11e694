package models

import (
	"time"
)

// Admin action types
const (
	AdminActionCreate     = "create"
	AdminActionUpdate     = "update"
	AdminActionDelete     = "delete"
	AdminActionBulkAction = "bulk_action"
	AdminActionExport     = "export"
	AdminActionLogin      = "login"
)

// AdminActionLog records what administrators did and from where
type AdminActionLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AdminUserID uint      `gorm:"index" json:"admin_user_id"`
	AdminUser   User      `json:"admin_user,omitempty" gorm:"foreignKey:AdminUserID"`
	ActionType  string    `gorm:"index" json:"action_type"`
	ModelName   string    `gorm:"index" json:"model_name"`
	ObjectID    *uint     `json:"object_id,omitempty"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// Setting value types
const (
	SettingTypeBoolean = "boolean"
	SettingTypeInteger = "integer"
	SettingTypeFloat   = "float"
	SettingTypeString  = "string"
	SettingTypeJSON    = "json"
)

// SystemSetting is a typed key/value pair editable from the admin panel
type SystemSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"uniqueIndex;not null" json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SettingType string    `gorm:"default:'string'" json:"setting_type"`
	Value       string    `json:"value"`
	IsPublic    bool      `gorm:"default:false" json:"is_public"`
	Category    string    `gorm:"index" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
