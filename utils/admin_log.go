package utils

import (
	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/gin-gonic/gin"
)

// LogAdminAction records an administrator action in the audit log.
// Auditing must never break the action it describes, so failures are
// only logged.
func LogAdminAction(c *gin.Context, actionType, modelName string, objectID *uint, description string) {
	userVal, exists := c.Get("user")
	if !exists {
		return
	}
	admin, ok := userVal.(models.User)
	if !ok || !admin.IsAdmin() {
		return
	}

	entry := models.AdminActionLog{
		AdminUserID: admin.ID,
		ActionType:  actionType,
		ModelName:   modelName,
		ObjectID:    objectID,
		Description: description,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		LogError("Failed to record admin action: %v", err)
	}
}
