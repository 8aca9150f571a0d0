package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"reachout-backend/config"
	"reachout-backend/middlewares"
	"reachout-backend/models"
	"reachout-backend/router"
	"reachout-backend/services"
	"reachout-backend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	sender := services.NewSMSGateway(
		os.Getenv("SMS_USERNAME"),
		os.Getenv("SMS_API_KEY"),
		os.Getenv("SMS_BASE_URL"),
	)

	r := router.SetupRouter(db, sender)

	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	// The sweep ticker is deployment policy; without SWEEP_INTERVAL the
	// check-unmatched-requests endpoint is the only trigger.
	if interval := os.Getenv("SWEEP_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			utils.ErrorLogger.Fatalf("Invalid SWEEP_INTERVAL %q: %v", interval, err)
		}
		dispatch := services.NewDispatchService(db, sender)
		sweep := services.NewSweepService(db, dispatch)
		sweep.Interval = d
		sweep.Start()
		defer sweep.Stop()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Hospital{},
		&models.Donor{},
		&models.BloodRequest{},
		&models.DonorMatch{},
		&models.Notification{},
		&models.DonationRecord{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
