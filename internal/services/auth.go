package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskly/backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrFederatedOnly      = errors.New("account uses federated login")
	ErrAccountNotFound    = errors.New("account not found")
)

type AuthService interface {
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
}

type AuthServiceImpl struct{}

func NewAuthService() *AuthServiceImpl {
	return &AuthServiceImpl{}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if user.AuthMethod == models.AuthMethodFirebase {
		return nil, ErrFederatedOnly
	}

	if user.PasswordHash == "" || !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	// Login still succeeds if the timestamp write fails.
	now := time.Now()
	user.LastLoginAt = &now
	_ = db.Model(&user).Update("last_login_at", now).Error

	return &user, nil
}
