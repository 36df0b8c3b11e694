package controllers

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/settings
//
// Public settings only; the admin listing below returns everything.
func ListPublicSettings(c *gin.Context) {
	var settings []models.SystemSetting
	if err := config.DB.Where("is_public = ?", true).Order("category, key").Find(&settings).Error; err != nil {
		utils.LogError("Failed to fetch public settings: %v", err)
		utils.InternalServerError(c, "Failed to fetch settings", err.Error())
		return
	}

	utils.Success(c, "Settings retrieved successfully", gin.H{"settings": settings})
}

// Admin: list all settings
func AdminListSettings(c *gin.Context) {
	utils.LogInfo("AdminListSettings called")

	query := config.DB.Model(&models.SystemSetting{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var settings []models.SystemSetting
	if err := query.Order("category, key").Find(&settings).Error; err != nil {
		utils.LogError("Failed to fetch settings: %v", err)
		utils.InternalServerError(c, "Failed to fetch settings", err.Error())
		return
	}

	utils.Success(c, "Settings retrieved successfully", gin.H{"settings": settings})
}

// Admin: update a setting's value, validated against its declared type
func AdminUpdateSetting(c *gin.Context) {
	utils.LogInfo("AdminUpdateSetting called")

	key := c.Param("key")
	var setting models.SystemSetting
	if err := config.DB.Where("key = ?", key).First(&setting).Error; err != nil {
		utils.LogError("Setting not found for key: %s", key)
		utils.NotFound(c, "Setting not found")
		return
	}

	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. value is required", err.Error())
		return
	}

	switch setting.SettingType {
	case models.SettingTypeBoolean:
		if req.Value != "true" && req.Value != "false" {
			utils.BadRequest(c, "Value must be true or false", nil)
			return
		}
	case models.SettingTypeInteger:
		if _, err := strconv.Atoi(req.Value); err != nil {
			utils.BadRequest(c, "Value must be an integer", nil)
			return
		}
	case models.SettingTypeFloat:
		if _, err := strconv.ParseFloat(req.Value, 64); err != nil {
			utils.BadRequest(c, "Value must be a number", nil)
			return
		}
	case models.SettingTypeJSON:
		if !json.Valid([]byte(req.Value)) {
			utils.BadRequest(c, "Value must be valid JSON", nil)
			return
		}
	}

	if err := config.DB.Model(&setting).Update("value", req.Value).Error; err != nil {
		utils.LogError("Failed to update setting %s: %v", key, err)
		utils.InternalServerError(c, "Failed to update setting", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionUpdate, "SystemSetting", &setting.ID,
		fmt.Sprintf("Setting %s changed to %q", key, req.Value))
	utils.LogInfo("Setting %s updated", key)
	utils.Success(c, "Setting updated successfully", gin.H{"setting": setting})
}

// Admin: browse the action log
func AdminListActionLog(c *gin.Context) {
	utils.LogInfo("AdminListActionLog called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.AdminActionLog{})

	if actionType := c.Query("action_type"); actionType != "" {
		query = query.Where("action_type = ?", actionType)
	}
	if modelName := c.Query("model"); modelName != "" {
		query = query.Where("model_name = ?", modelName)
	}
	if adminID := c.Query("admin_id"); adminID != "" {
		query = query.Where("admin_user_id = ?", adminID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count action log entries: %v", err)
		utils.InternalServerError(c, "Failed to fetch action log", err.Error())
		return
	}
	pagination.SetTotal(total)

	var entries []models.AdminActionLog
	if err := query.Preload("AdminUser").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&entries).Error; err != nil {
		utils.LogError("Failed to fetch action log: %v", err)
		utils.InternalServerError(c, "Failed to fetch action log", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"actions": entries}, pagination)
}
