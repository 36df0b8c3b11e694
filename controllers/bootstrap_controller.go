package controllers

import (
	"os"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
)

// EnsureDefaultAdmin creates the first admin account when the users
// table is empty of admins. Credentials come from the environment so a
// fresh deployment is reachable.
func EnsureDefaultAdmin() error {
	var count int64
	if err := config.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@fluencyclub.fun"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
		utils.LogInfo("ADMIN_PASSWORD not set, using the default; change it immediately")
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:   "admin",
		Email:      email,
		Password:   hashed,
		FirstName:  "System",
		LastName:   "Administrator",
		Role:       models.RoleAdmin,
		IsActive:   true,
		IsVerified: true,
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		return err
	}
	utils.LogInfo("Created default admin account ID: %d", admin.ID)
	return nil
}

// EnsureDefaultSettings seeds the system settings the admin panel
// expects to exist. Existing keys are left untouched.
func EnsureDefaultSettings() error {
	defaults := []models.SystemSetting{
		{Key: "school_name", Name: "School name", SettingType: models.SettingTypeString, Value: "Fluency Club", IsPublic: true, Category: "general"},
		{Key: "support_email", Name: "Support email", SettingType: models.SettingTypeString, Value: "support@fluencyclub.fun", IsPublic: true, Category: "general"},
		{Key: "trial_lesson_enabled", Name: "Trial lessons enabled", SettingType: models.SettingTypeBoolean, Value: "true", IsPublic: true, Category: "lessons"},
		{Key: "default_lesson_duration", Name: "Default lesson duration (minutes)", SettingType: models.SettingTypeInteger, Value: "60", IsPublic: false, Category: "lessons"},
		{Key: "payment_reminder_days", Name: "Days before payment reminder", SettingType: models.SettingTypeInteger, Value: "3", IsPublic: false, Category: "payments"},
	}

	for _, setting := range defaults {
		var existing models.SystemSetting
		if err := config.DB.Where("key = ?", setting.Key).First(&existing).Error; err == nil {
			continue
		}
		if err := config.DB.Create(&setting).Error; err != nil {
			return err
		}
	}
	return nil
}
