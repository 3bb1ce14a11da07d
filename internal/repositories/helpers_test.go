package repositories_test

import (
	"context"
	"testing"

	"qrmenu/internal/access"
	"qrmenu/internal/models"
	"qrmenu/internal/repositories"
	"qrmenu/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testContext returns a context canceled when the test finishes, matching
// testing.T.Context from newer Go releases.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// newTestDB opens a private in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn}, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedAdmin(t *testing.T, db *gorm.DB, email, slug string) (*models.User, *models.Store) {
	t.Helper()
	user := &models.User{Email: email, Name: "Admin", Password: "hash", Role: access.RoleAdmin}
	store := &models.Store{Name: "Store " + slug, Slug: slug, PublicID: uuid.NewString(), IsActive: true, Settings: models.DefaultStoreSettings()}
	repo := repositories.NewGORMAccountRepository(db)
	require.NoError(t, repo.CreateAdminWithStore(testContext(t), user, store))
	return user, store
}
