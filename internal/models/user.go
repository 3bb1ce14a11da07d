package models

import (
	"time"

	"qrmenu/internal/access"
)

// User is an admin or superadmin account.
type User struct {
	Base
	Email             string      `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Name              string      `json:"name" gorm:"type:varchar(100)"`
	Password          string      `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Role              access.Role `json:"role" gorm:"type:varchar(20);index;not null"`
	LoginAttempts     int         `json:"-" gorm:"not null;default:0"`
	LockUntil         *time.Time  `json:"-"`
	LastLogin         *time.Time  `json:"last_login,omitempty"`
	PasswordChangedAt *time.Time  `json:"password_changed_at,omitempty"`
}

// IsLocked reports whether the lockout window is still open at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}
