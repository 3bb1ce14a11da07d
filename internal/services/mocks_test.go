package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/models"
	"qrmenu/internal/repositories"
	"qrmenu/pkg/storage"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByIDWithSecret(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByEmailWithSecret(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role access.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role access.Role) ([]models.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id, name, email string) error {
	return m.Called(ctx, id, name, email).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	return m.Called(ctx, id, hash, changedAt).Error(0)
}

func (m *MockUserRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) IncrementLoginAttempts(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) RestartLoginAttempts(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) LockUntil(ctx context.Context, id string, until time.Time) error {
	return m.Called(ctx, id, until).Error(0)
}

func (m *MockUserRepository) ResetLoginAttempts(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, scope access.Scope, category *models.Category) error {
	return m.Called(ctx, scope, category).Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, scope access.Scope) ([]models.Category, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListByStore(ctx context.Context, storeID string) ([]models.Category, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) NameTaken(ctx context.Context, storeID *string, name, excludeID string) (bool, error) {
	args := m.Called(ctx, storeID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, scope access.Scope, category *models.Category) error {
	return m.Called(ctx, scope, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, scope access.Scope, id string) error {
	return m.Called(ctx, scope, id).Error(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, scope access.Scope, product *models.Product) error {
	return m.Called(ctx, scope, product).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, scope access.Scope, filter repositories.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) ListAvailableByStore(ctx context.Context, storeID string) ([]models.Product, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, scope access.Scope, product *models.Product) error {
	return m.Called(ctx, scope, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, scope access.Scope, id string) error {
	return m.Called(ctx, scope, id).Error(0)
}

// MockWallpaperRepository is a mock implementation of repositories.WallpaperRepository
type MockWallpaperRepository struct {
	mock.Mock
}

func (m *MockWallpaperRepository) List(ctx context.Context) ([]models.Wallpaper, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Wallpaper), args.Error(1)
}

func (m *MockWallpaperRepository) GetByID(ctx context.Context, id string) (*models.Wallpaper, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallpaper), args.Error(1)
}

func (m *MockWallpaperRepository) CountByUploader(ctx context.Context, uploaderID string) (int64, error) {
	args := m.Called(ctx, uploaderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWallpaperRepository) CreateWithinQuota(ctx context.Context, w *models.Wallpaper, limit int) error {
	return m.Called(ctx, w, limit).Error(0)
}

func (m *MockWallpaperRepository) Delete(ctx context.Context, id, uploaderID string) error {
	return m.Called(ctx, id, uploaderID).Error(0)
}

var errStorageDown = errors.New("storage unreachable")

// fakeStorage keeps objects in memory. Ids listed in failDelete fail to delete.
type fakeStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failUpload bool
	failDelete map[string]bool
	deleted    []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, failDelete: map[string]bool{}}
}

func (f *fakeStorage) Upload(_ context.Context, in storage.UploadInput) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return nil, errStorageDown
	}
	f.objects[in.ID] = in.Data
	return &storage.Object{ID: in.ID, URL: "https://cdn.test/" + in.ID, Size: int64(len(in.Data))}, nil
}

func (f *fakeStorage) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[id] {
		return errStorageDown
	}
	delete(f.objects, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStorage) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[id]
	return ok
}

// pngBytes is the smallest payload http.DetectContentType reports as image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func strPtr(s string) *string { return &s }
