package services

import (
	"errors"
	"fmt"
	"time"

	"fleetcar/internal/auth"
	"fleetcar/internal/config"
	"fleetcar/internal/database"
	"fleetcar/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenBundle is the response body for both register and login.
type TokenBundle struct {
	Token      string          `json:"token"`
	Expiration time.Time       `json:"expiration"`
	Username   string          `json:"username"`
	Role       models.UserRole `json:"role"`
}

type AuthService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// Register stores a new account with role User and returns a token bundle.
// A taken username yields a ConflictError whether the pre-check or the
// unique index catches it.
func (s *AuthService) Register(username, password, fullName string) (*TokenBundle, error) {
	var count int64
	if err := database.DB.Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, &ConflictError{Message: "username already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         models.RoleUser,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: "username already exists"}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	database.CreateAuditLog(user.ID, user.Username, "user", user.ID, "register", "registered user "+user.Username)

	return s.bundle(&user)
}

// Login verifies the password against the stored hash and returns a token
// bundle, or ErrInvalidCredentials.
func (s *AuthService) Login(username, password string) (*TokenBundle, error) {
	var user models.User
	if err := database.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.bundle(&user)
}

func (s *AuthService) bundle(user *models.User) (*TokenBundle, error) {
	token, expiresAt, err := auth.Generate(s.cfg, user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &TokenBundle{
		Token:      token,
		Expiration: expiresAt,
		Username:   user.Username,
		Role:       user.Role,
	}, nil
}
