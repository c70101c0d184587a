package services

import (
	"log"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"survey_app_go/models"
)

// SeedAdminFromEnv creates an admin user from environment variables.
// Only runs if ADMIN_EMAIL and ADMIN_PASSWORD are set and no admin
// user exists yet.
func SeedAdminFromEnv(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")

	// Skip if env vars not set
	if email == "" || password == "" {
		return nil
	}

	if name == "" {
		name = "Admin"
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("[SEED] Admin user already exists, skipping seed")
		return nil
	}

	var existingUser models.User
	if err := db.Where("email = ?", email).First(&existingUser).Error; err == nil {
		log.Printf("[SEED] User with email %s already exists, skipping admin seed", email)
		return nil
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := db.Create(user).Error; err != nil {
		return err
	}

	log.Printf("[SEED] Created admin user: %s", email)
	return nil
}

// SeedDefaultTemplate creates the standard all-visible survey template
// on first boot so instances can be provisioned immediately.
func SeedDefaultTemplate(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.SurveyTemplate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	template := &models.SurveyTemplate{
		Name:        "Standard Broker Survey",
		Description: "All categories and questions visible",
	}
	if err := CreateTemplate(db, template, nil); err != nil {
		return err
	}

	log.Printf("[SEED] Created default survey template: %s", template.Name)
	return nil
}
