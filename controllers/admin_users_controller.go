package controllers

import (
	"fmt"
	"strconv"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// Admin: list users with search and role filter
func AdminListUsers(c *gin.Context) {
	utils.LogInfo("AdminListUsers called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count users: %v", err)
		utils.InternalServerError(c, "Failed to fetch users", err.Error())
		return
	}
	pagination.SetTotal(total)

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&users).Error; err != nil {
		utils.LogError("Failed to fetch users: %v", err)
		utils.InternalServerError(c, "Failed to fetch users", err.Error())
		return
	}

	utils.LogInfo("Retrieved %d users for admin listing", len(users))
	utils.SendPaginatedResponse(c, gin.H{"users": users}, pagination)
}

// Admin: deactivate or reactivate an account
func AdminToggleUserActive(c *gin.Context) {
	utils.LogInfo("AdminToggleUserActive called")

	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid user ID", nil)
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		utils.LogError("User not found for ID: %d", userID)
		utils.NotFound(c, "User not found")
		return
	}

	newState := !user.IsActive
	if err := config.DB.Model(&user).Update("is_active", newState).Error; err != nil {
		utils.LogError("Failed to update user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update user", err.Error())
		return
	}

	action := "deactivated"
	if newState {
		action = "reactivated"
	}
	utils.LogAdminAction(c, models.AdminActionUpdate, "User", &user.ID,
		fmt.Sprintf("Account %s for user %s", action, user.Username))
	utils.LogInfo("User ID: %d %s", user.ID, action)

	utils.Success(c, "User "+action, gin.H{
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"is_active": newState,
		},
	})
}

// Admin: change a user's role
func AdminUpdateUserRole(c *gin.Context) {
	utils.LogInfo("AdminUpdateUserRole called")

	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid user ID", nil)
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. role is required", err.Error())
		return
	}

	switch req.Role {
	case models.RoleStudent, models.RoleTeacher, models.RoleAdmin, models.RoleParent:
	default:
		utils.BadRequest(c, "Invalid role", gin.H{"allowed": []string{
			models.RoleStudent, models.RoleTeacher, models.RoleAdmin, models.RoleParent,
		}})
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		utils.LogError("User not found for ID: %d", userID)
		utils.NotFound(c, "User not found")
		return
	}

	if err := config.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		utils.LogError("Failed to update role for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to update user", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionUpdate, "User", &user.ID,
		fmt.Sprintf("Role changed to %s for user %s", req.Role, user.Username))
	utils.LogInfo("Role changed to %s for user ID: %d", req.Role, user.ID)

	utils.Success(c, "Role updated successfully", gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     req.Role,
		},
	})
}
