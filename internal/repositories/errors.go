package repositories

import (
	"context"
	"errors"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"

	"gorm.io/gorm"
)

// translate maps a GORM error onto the application taxonomy.
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case isAppError(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.KindConflict, resource+"_exists", resource+" already exists", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Upstream("database_timeout", err)
	default:
		return apperrors.Upstream("database_unavailable", err)
	}
}

func isAppError(err error) bool {
	_, ok := apperrors.As(err)
	return ok
}

// scoped restricts a query to the tenant of scope. A scope that was never
// resolved is rejected before any query runs.
func scoped(db *gorm.DB, scope access.Scope) (*gorm.DB, error) {
	if scope.IsUnrestricted() {
		return db, nil
	}
	storeID, ok := scope.StoreID()
	if !ok {
		return nil, apperrors.Forbidden("tenant_unresolved")
	}
	return db.Where("store_id = ?", storeID), nil
}

// stampStore binds a new row to the scope's store. Unrestricted callers keep
// whatever store reference the row already carries.
func stampStore(scope access.Scope, storeRef **string) error {
	if scope.IsUnrestricted() {
		return nil
	}
	storeID, ok := scope.StoreID()
	if !ok {
		return apperrors.Forbidden("tenant_unresolved")
	}
	*storeRef = &storeID
	return nil
}
