package controllers

import (
	"strings"
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// RegisterRequest represents the signup payload
type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
}

// POST /v1/auth/register
func Register(c *gin.Context) {
	utils.LogInfo("Register called")

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid registration request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var validationErrors []utils.FieldValidationError
	if !utils.ValidateUsername(req.Username) {
		validationErrors = append(validationErrors, utils.FieldValidationError{
			Field: "username", Message: "Username must be 3-20 characters and contain only letters, numbers and underscores",
		})
	}
	if !utils.ValidateEmail(req.Email) {
		validationErrors = append(validationErrors, utils.FieldValidationError{
			Field: "email", Message: "Invalid email format",
		})
	}
	if req.Phone != "" && !utils.ValidatePhone(req.Phone) {
		validationErrors = append(validationErrors, utils.FieldValidationError{
			Field: "phone", Message: "Invalid phone number format",
		})
	}
	for _, msg := range utils.ValidatePassword(req.Password) {
		validationErrors = append(validationErrors, utils.FieldValidationError{
			Field: "password", Message: msg,
		})
	}
	if req.Password != req.ConfirmPassword {
		validationErrors = append(validationErrors, utils.FieldValidationError{
			Field: "confirm_password", Message: "Passwords do not match",
		})
	}
	if len(validationErrors) > 0 {
		utils.LogError("Registration validation failed for username: %s", req.Username)
		utils.ValidationError(c, "Validation failed", validationErrors)
		return
	}

	var existing models.User
	if err := config.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error; err == nil {
		utils.LogError("Registration conflict for username: %s, email: %s", req.Username, req.Email)
		utils.Conflict(c, "Username or email already in use", nil)
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      models.RoleStudent,
		IsActive:  true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		utils.LogError("Failed to create user %s: %v", req.Username, err)
		utils.InternalServerError(c, "Failed to create account", err.Error())
		return
	}
	utils.LogInfo("Created user ID: %d, username: %s", user.ID, user.Username)

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate token for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	utils.Created(c, "Account created successfully", gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// POST /v1/auth/login
func Login(c *gin.Context) {
	utils.LogInfo("Login called")

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid login request: %v", err)
		utils.BadRequest(c, "Invalid request. email and password are required", err.Error())
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.LogError("Login failed, no user for email: %s", req.Email)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.LogError("Login failed, wrong password for user ID: %d", user.ID)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if !user.IsActive {
		utils.LogError("Login rejected for deactivated user ID: %d", user.ID)
		utils.Forbidden(c, "Account is deactivated")
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate token for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	config.DB.Model(&user).Update("last_login_at", time.Now())
	utils.LogInfo("User ID: %d logged in", user.ID)

	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
		},
	})
}
