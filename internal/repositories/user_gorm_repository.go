package repositories

import (
	"context"
	"strings"
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// NormalizeEmail lowercases and trims an address; emails compare case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	return translate(r.db.WithContext(ctx).Create(user).Error, "user")
}

// GetByID loads a user without the password hash.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Omit("password").First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// GetByIDWithSecret loads a user including the password hash.
func (r *GORMUserRepository) GetByIDWithSecret(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// GetByEmailWithSecret loads a user by case-insensitive email, including the hash.
func (r *GORMUserRepository) GetByEmailWithSecret(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "LOWER(email) = ?", NormalizeEmail(email)).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// EmailTaken reports whether another user already uses email.
func (r *GORMUserRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = ?", NormalizeEmail(email))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err, "user")
	}
	return n > 0, nil
}

// CountByRole counts users holding role.
func (r *GORMUserRepository) CountByRole(ctx context.Context, role access.Role) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error
	return n, translate(err, "user")
}

// ListByRole lists users holding role, newest first, without password hashes.
func (r *GORMUserRepository) ListByRole(ctx context.Context, role access.Role) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Omit("password").Where("role = ?", role).Order("created_at desc").Find(&users).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return users, nil
}

func (r *GORMUserRepository) update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

// UpdateProfile changes the display name and email.
func (r *GORMUserRepository) UpdateProfile(ctx context.Context, id, name, email string) error {
	return r.update(ctx, id, map[string]any{"name": name, "email": NormalizeEmail(email)})
}

// UpdatePassword stores a new hash and stamps the change time.
func (r *GORMUserRepository) UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	return r.update(ctx, id, map[string]any{"password": hash, "password_changed_at": changedAt})
}

// RecordLoginSuccess clears lockout state and stamps the login time.
func (r *GORMUserRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, map[string]any{"login_attempts": 0, "lock_until": nil, "last_login": at})
}

// IncrementLoginAttempts adds one failed attempt and returns the new count.
// The increment is a single UPDATE so concurrent failures never lower it.
func (r *GORMUserRepository) IncrementLoginAttempts(ctx context.Context, id string) (int, error) {
	var attempts []int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).
			UpdateColumn("login_attempts", gorm.Expr("login_attempts + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.User{}).Where("id = ?", id).Pluck("login_attempts", &attempts).Error
	})
	if err != nil {
		return 0, translate(err, "user")
	}
	if len(attempts) == 0 {
		return 0, apperrors.NotFound("user")
	}
	return attempts[0], nil
}

// RestartLoginAttempts begins a new failure window after an expired lock:
// the counter becomes 1 and the lock is cleared.
func (r *GORMUserRepository) RestartLoginAttempts(ctx context.Context, id string) (int, error) {
	if err := r.update(ctx, id, map[string]any{"login_attempts": 1, "lock_until": nil}); err != nil {
		return 0, err
	}
	return 1, nil
}

// LockUntil sets the lockout expiry.
func (r *GORMUserRepository) LockUntil(ctx context.Context, id string, until time.Time) error {
	return r.update(ctx, id, map[string]any{"lock_until": until})
}

// ResetLoginAttempts clears the counter and any lock.
func (r *GORMUserRepository) ResetLoginAttempts(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]any{"login_attempts": 0, "lock_until": nil})
}
