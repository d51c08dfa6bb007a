package utils

import (
	"fmt"
	"log"
	"time"

	"courseportal/backend/config"
	"courseportal/backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the postgres connection with a short retry loop (the database
// container can come up a few seconds after the app).
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	var db *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			return db, nil
		}
		log.Printf("Database connection attempt %d failed, retrying... (%v)", i+1, err)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("could not connect to database after retries: %w", err)
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.ScheduleItem{},
		&models.CourseNews{},
		&models.LearningOutcome{},
		&models.Assessment{},
		&models.Resource{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.Enrollment{},
		&models.LessonProgress{},
		&models.Notification{},
		&models.NotificationRecipient{},
	)
}

// Seed creates the initial admin account when ADMIN_EMAIL/ADMIN_PASSWORD are
// configured and the user does not exist yet.
func Seed(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        cfg.AdminEmail,
		PasswordHash: string(hashed),
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
	}
	return db.Create(&admin).Error
}
