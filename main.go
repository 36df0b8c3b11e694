package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/controllers"
	"github.com/fluencyclub/schoolcrm/gateway"
	"github.com/fluencyclub/schoolcrm/routes"
	"github.com/fluencyclub/schoolcrm/services"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/fluencyclub/schoolcrm/workers"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}
	if err := cfg.Validate(); err != nil {
		utils.LogError("Invalid config: %v", err)
		log.Fatal("Invalid config:", err)
	}

	// Initialize database
	config.InitDB()

	// Seed the default admin account and system settings
	if err := controllers.EnsureDefaultAdmin(); err != nil {
		utils.LogError("Failed to create default admin: %v", err)
		log.Fatal("Failed to create default admin:", err)
	}
	if err := controllers.EnsureDefaultSettings(); err != nil {
		utils.LogError("Failed to seed settings: %v", err)
		log.Fatal("Failed to seed settings:", err)
	}

	// Initialize Google OAuth
	config.InitGoogleOAuth()

	// Payment gateway: real client when credentials are present,
	// otherwise the service falls back to test payments (or rejects,
	// in strict mode).
	var gw gateway.Client
	if cfg.GatewayConfigured() {
		gw = gateway.NewRazorpayClient(cfg.RazorpayKey, cfg.RazorpaySecret)
		utils.LogInfo("Payment gateway configured: %s", gw.Method())
	} else {
		utils.LogInfo("Payment gateway not configured")
	}
	paymentService := services.NewPaymentService(config.DB, gw, cfg)
	controllers.InitPaymentController(paymentService)

	// Background workers stop on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outboxWorker := workers.NewOutboxWorker(paymentService.Outbox(), time.Minute)
	go outboxWorker.Run(ctx)

	reconciliation := workers.NewReconciliationWorker(config.DB, paymentService, 5*time.Minute, 30*time.Minute)
	go reconciliation.Run(ctx)

	// Set up router
	router := routes.SetupRouter()

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	utils.LogInfo("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
