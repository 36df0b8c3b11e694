package controllers

import (
	"strings"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/users/me
func GetProfile(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	utils.Success(c, "Profile retrieved successfully", gin.H{
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"email":         user.Email,
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"phone":         user.Phone,
			"role":          user.Role,
			"is_verified":   user.IsVerified,
			"last_login_at": user.LastLoginAt,
		},
	})
}

// PUT /v1/users/me
func UpdateProfile(c *gin.Context) {
	utils.LogInfo("UpdateProfile called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if req.Phone != "" && !utils.ValidatePhone(req.Phone) {
		utils.ValidationError(c, "Validation failed", []utils.FieldValidationError{
			{Field: "phone", Message: "Invalid phone number format"},
		})
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		updates["last_name"] = strings.TrimSpace(req.LastName)
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update profile for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update profile", err.Error())
		return
	}

	utils.LogInfo("Profile updated for user ID: %d", user.ID)
	utils.Success(c, "Profile updated successfully", nil)
}

// PUT /v1/users/me/password
func ChangePassword(c *gin.Context) {
	utils.LogInfo("ChangePassword called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if !utils.CheckPassword(req.CurrentPassword, user.Password) {
		utils.LogError("Wrong current password for user ID: %d", user.ID)
		utils.Unauthorized(c, "Current password is incorrect")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		utils.BadRequest(c, "Passwords do not match", nil)
		return
	}
	if msgs := utils.ValidatePassword(req.NewPassword); len(msgs) > 0 {
		utils.ValidationError(c, "Password is too weak", msgs)
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.LogError("Failed to hash new password for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to change password", nil)
		return
	}

	if err := config.DB.Model(&user).Update("password", hashed).Error; err != nil {
		utils.LogError("Failed to update password for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to change password", err.Error())
		return
	}

	utils.LogInfo("Password changed for user ID: %d", user.ID)
	utils.Success(c, "Password changed successfully", nil)
}
