package repositories

import (
	"context"
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/models"
)

// UserRepository is the credential store. Default reads omit the password
// hash; the *WithSecret variants select it explicitly.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDWithSecret(ctx context.Context, id string) (*models.User, error)
	GetByEmailWithSecret(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	CountByRole(ctx context.Context, role access.Role) (int64, error)
	ListByRole(ctx context.Context, role access.Role) ([]models.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) error
	UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error

	// Login state. Counter changes are atomic in the database.
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error
	IncrementLoginAttempts(ctx context.Context, id string) (int, error)
	RestartLoginAttempts(ctx context.Context, id string) (int, error)
	LockUntil(ctx context.Context, id string, until time.Time) error
	ResetLoginAttempts(ctx context.Context, id string) error
}
