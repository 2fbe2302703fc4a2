package services

import (
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskly/backend/internal/models"
)

var ErrMissingEmail = errors.New("federated token has no email claim")

type FederatedService interface {
	// UpsertFederatedUser creates or refreshes the local record for a
	// federated identity, keyed by email.
	UpsertFederatedUser(db *gorm.DB, firebaseUID, email string) (*models.User, error)
}

type FederatedServiceImpl struct{}

func NewFederatedService() *FederatedServiceImpl {
	return &FederatedServiceImpl{}
}

func (s *FederatedServiceImpl) UpsertFederatedUser(db *gorm.DB, firebaseUID, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrMissingEmail
	}

	now := time.Now()

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		user.AuthMethod = models.AuthMethodFirebase
		user.FirebaseUID = &firebaseUID
		user.LastLoginAt = &now
		if err := db.Save(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ID:          uuid.Must(uuid.NewV4()),
			Email:       email,
			AuthMethod:  models.AuthMethodFirebase,
			FirebaseUID: &firebaseUID,
			LastLoginAt: &now,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	default:
		return nil, err
	}
}
