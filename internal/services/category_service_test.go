package services_test

import (
	"context"
	"testing"

	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"
	"qrmenu/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategoryService_TenantScenario(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo, nil, zap.NewNop())
	adminA := adminOf("s1")

	repo.On("GetByID", mock.Anything, "c-s2").Return(&models.Category{Base: models.Base{ID: "c-s2"}, Name: "Drinks", StoreID: strPtr("s2")}, nil)
	repo.On("GetByID", mock.Anything, "c-s1").Return(&models.Category{Base: models.Base{ID: "c-s1"}, Name: "Food", StoreID: strPtr("s1")}, nil)
	repo.On("GetByID", mock.Anything, "c-global").Return(&models.Category{Base: models.Base{ID: "c-global"}, Name: "Specials"}, nil)

	_, err := svc.Get(context.Background(), adminA, "c-s2")
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	c, err := svc.Get(context.Background(), adminA, "c-s1")
	require.NoError(t, err)
	assert.Equal(t, "Food", c.Name)

	_, err = svc.Get(context.Background(), adminA, "c-global")
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	for _, id := range []string{"c-s1", "c-s2", "c-global"} {
		_, err := svc.Get(context.Background(), superadmin(), id)
		assert.NoError(t, err, id)
	}
}

func TestCategoryService_CreateValidatesAndChecksName(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo, nil, zap.NewNop())
	p := adminOf("s1")

	_, err := svc.Create(context.Background(), p, services.CategoryInput{Name: "x"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "name", appErr.Field)

	repo.On("NameTaken", mock.Anything, strPtr("s1"), "Drinks", "").Return(true, nil).Once()
	_, err = svc.Create(context.Background(), p, services.CategoryInput{Name: " Drinks "})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	repo.On("NameTaken", mock.Anything, strPtr("s1"), "Desserts", "").Return(false, nil).Once()
	repo.On("Create", mock.Anything, p.Scope, mock.MatchedBy(func(c *models.Category) bool {
		return c.StoreID != nil && *c.StoreID == "s1"
	})).Return(nil).Once()
	c, err := svc.Create(context.Background(), p, services.CategoryInput{Name: "Desserts", Order: 2, StoreID: strPtr("s2")})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Order)
	repo.AssertExpectations(t)
}

func TestCategoryService_SuperadminCreatesGlobal(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo, nil, zap.NewNop())
	root := superadmin()

	repo.On("NameTaken", mock.Anything, (*string)(nil), "Specials", "").Return(false, nil).Once()
	repo.On("Create", mock.Anything, root.Scope, mock.MatchedBy(func(c *models.Category) bool {
		return c.StoreID == nil
	})).Return(nil).Once()

	c, err := svc.Create(context.Background(), root, services.CategoryInput{Name: "Specials"})
	require.NoError(t, err)
	assert.Nil(t, c.StoreID)
	repo.AssertExpectations(t)
}

func TestCategoryService_DeleteChecksTenantFirst(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := services.NewCategoryService(repo, nil, zap.NewNop())

	repo.On("GetByID", mock.Anything, "c-s2").Return(&models.Category{Base: models.Base{ID: "c-s2"}, StoreID: strPtr("s2")}, nil)

	err := svc.Delete(context.Background(), adminOf("s1"), "c-s2")
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
