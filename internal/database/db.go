package database

import (
	"fmt"
	"log"
	"time"

	"fleetcar/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init connects to the database, runs migrations and seeds the default
// admin account. TranslateError is on so unique-constraint violations
// surface as gorm.ErrDuplicatedKey regardless of driver.
func Init(driver, dsn string) error {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Printf("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(open(driver, dsn), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err == nil {
			log.Println("connected to DB successfully")
			break
		}

		log.Printf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
	}

	if err := DB.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

func open(driver, dsn string) gorm.Dialector {
	if driver == "sqlite" {
		return sqlite.Open(dsn)
	}
	return postgres.Open(dsn)
}

// SeedAdmin creates the admin account if no admin exists yet. Registration
// only ever hands out the User role, so this is the sole source of admins.
func SeedAdmin(username, password string) {
	if password == "" {
		return
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Printf("failed to check admin user: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("failed to create admin user: %v", err)
		return
	}

	log.Printf("created default admin user: %s", username)
}
