package models

import (
	"strings"
	"time"
)

// User represents an account in the Friend Manager system.
type User struct {
	ID           string    `bson:"_id" gorm:"primaryKey;size:36" json:"id"`
	Email        string    `bson:"email" gorm:"size:254;uniqueIndex;not null" json:"email"`
	Name         string    `bson:"name" gorm:"size:100;not null" json:"name"`
	PasswordHash string    `bson:"password_hash" gorm:"size:255" json:"-"`
	IsActive     bool      `bson:"is_active" gorm:"not null" json:"is_active"`
	IsStaff      bool      `bson:"is_staff" gorm:"not null" json:"is_staff"`
	IsSuperuser  bool      `bson:"is_superuser" gorm:"not null" json:"-"`
	CreatedAt    time.Time `bson:"created_at" gorm:"not null" json:"created_at"`
}

// PublicUser is the shape of a user exposed to other users.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public strips everything but the identity fields.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// NormalizeEmail trims and lower-cases an address so that uniqueness and
// lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
