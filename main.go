package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/config"
	"github.com/huyphamdev/laundry-pos/middlewares"
	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/router"
	"github.com/huyphamdev/laundry-pos/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	utils.InitLogger()
}

func main() {
	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Single node runs on the in-memory attempt store; set REDIS_URL to
	// share login-attempt counters across nodes.
	var attemptStore middlewares.AttemptStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			utils.ErrorLogger.Fatalf("Invalid REDIS_URL: %v", err)
		}
		attemptStore = middlewares.NewRedisAttemptStore(redis.NewClient(opts))
		utils.InfoLogger.Println("Login attempt counters backed by Redis")
	} else {
		memStore := middlewares.NewMemoryAttemptStore()
		memStore.StartCleanup(5 * time.Minute)
		attemptStore = memStore
	}

	loginWindow := time.Duration(cfg.LoginAttemptWindow) * time.Second
	r := router.SetupRouter(db, attemptStore, int64(cfg.LoginAttemptLimit), loginWindow)

	rateLimiter := middlewares.NewRateLimiter(50, 100)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	utils.InfoLogger.Printf("Listening on port %s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Customer{},
		&models.Product{},
		&models.Promotion{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Attendance{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	seedRootAccount(db)
}

// seedRootAccount makes sure the vendor login exists on a fresh install.
func seedRootAccount(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleRoot).Count(&count).Error; err != nil {
		utils.ErrorLogger.Printf("Root account check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	email := os.Getenv("ROOT_EMAIL")
	password := os.Getenv("ROOT_PASSWORD")
	if email == "" || password == "" {
		utils.InfoLogger.Println("No root account and ROOT_EMAIL/ROOT_PASSWORD not set, skipping seed")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorLogger.Printf("Root account seed failed: %v", err)
		return
	}
	root := models.User{
		Name:     "Root",
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleRoot,
		Status:   "active",
	}
	if err := db.Create(&root).Error; err != nil {
		utils.ErrorLogger.Printf("Root account seed failed: %v", err)
		return
	}
	utils.InfoLogger.Printf("Seeded root account %s", email)
}
