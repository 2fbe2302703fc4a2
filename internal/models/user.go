package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type AuthMethod string

const (
	AuthMethodLocal    AuthMethod = "local"
	AuthMethodFirebase AuthMethod = "firebase"
)

// User is an authenticated account. Username and FirebaseUID are pointers so
// the unique indexes behave like sparse indexes: federated users carry no
// username, local users carry no firebase uid.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	AuthMethod   AuthMethod `json:"authMethod" gorm:"not null"`
	Username     *string    `json:"username,omitempty" gorm:"uniqueIndex"`
	PasswordHash string     `json:"-"`
	FirebaseUID  *string    `json:"firebaseUid,omitempty" gorm:"uniqueIndex"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// PrincipalID is the stable identifier attached to tasks owned by this user.
func (u *User) PrincipalID() string {
	return u.ID.String()
}
