package config

import (
	"fmt"

	"github.com/fluencyclub/schoolcrm/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB initializes the database connection
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	if err := Migrate(DB); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
}

// Migrate auto-migrates the schema for all models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Group{},
		&models.Lesson{},
		&models.Attendance{},
		&models.Payment{},
		&models.Invoice{},
		&models.Refund{},
		&models.OutboxEvent{},
		&models.Lead{},
		&models.Customer{},
		&models.Deal{},
		&models.Activity{},
		&models.Task{},
		&models.Note{},
		&models.SupportTicket{},
		&models.TicketMessage{},
		&models.AdminActionLog{},
		&models.SystemSetting{},
	)
}
