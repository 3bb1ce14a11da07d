package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"qrmenu/internal/apperrors"
	"qrmenu/internal/metrics"
	"qrmenu/internal/services"
	"qrmenu/pkg/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAssets(store storage.Storage) *services.AssetService {
	return services.NewAssetService(store, nil, zap.NewNop(), nil)
}

func TestAssetService_IDsIgnoreFilename(t *testing.T) {
	svc := newAssets(newFakeStorage())
	re := regexp.MustCompile(`^products/\d+-[0-9a-f]{32}$`)

	a := svc.NewAssetID(services.AssetProduct)
	b := svc.NewAssetID(services.AssetProduct)
	assert.Regexp(t, re, a)
	assert.NotEqual(t, a, b)

	obj, err := svc.Upload(context.Background(), services.AssetProduct, &services.File{Filename: "../../etc/passwd.png", Data: pngBytes})
	require.NoError(t, err)
	assert.Regexp(t, re, obj.ID)
}

func TestAssetService_UploadValidation(t *testing.T) {
	svc := newAssets(newFakeStorage())
	ctx := context.Background()

	cases := []struct {
		name       string
		kind       services.AssetKind
		file       *services.File
		constraint string
	}{
		{"missing", services.AssetLogo, nil, "required"},
		{"empty", services.AssetLogo, &services.File{Data: nil}, "required"},
		{"too large", services.AssetLogo, &services.File{Data: append(pngBytes, make([]byte, 5<<20)...)}, "max_size"},
		{"not an image", services.AssetBanner, &services.File{Data: []byte("plain text, not an image at all")}, "mime_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tc.kind, tc.file)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.KindValidationFailed, appErr.Kind)
			assert.Equal(t, "file", appErr.Field)
			assert.Equal(t, tc.constraint, appErr.Reason)
		})
	}

	// Wallpapers allow up to 10 MB.
	_, err := svc.Upload(ctx, services.AssetWallpaper, &services.File{Data: append(pngBytes, make([]byte, 6<<20)...)})
	assert.NoError(t, err)
}

func TestAssetService_UploadFailureIsUpstream(t *testing.T) {
	store := newFakeStorage()
	store.failUpload = true
	svc := newAssets(store)

	_, err := svc.Upload(context.Background(), services.AssetLogo, &services.File{Data: pngBytes})
	assert.Equal(t, apperrors.KindUpstreamUnavailable, apperrors.KindOf(err))
}

func TestAssetService_ReplaceSwallowsOldDeleteFailure(t *testing.T) {
	store := newFakeStorage()
	store.objects["products/old"] = pngBytes
	store.failDelete["products/old"] = true
	m := metrics.New(prometheus.NewRegistry())
	svc := services.NewAssetService(store, nil, zap.NewNop(), m)

	var saved string
	obj, err := svc.Replace(context.Background(), services.AssetProduct, "products/old", &services.File{Data: pngBytes}, func(o *storage.Object) error {
		saved = o.URL
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, obj.URL, saved)
	assert.True(t, store.has(obj.ID))
	assert.True(t, store.has("products/old"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AssetOrphans.WithLabelValues("replace")))
}

func TestAssetService_ReplacePersistFailureKeepsOld(t *testing.T) {
	store := newFakeStorage()
	store.objects["logos/old"] = pngBytes
	svc := newAssets(store)

	boom := apperrors.Upstream("database_unavailable", errors.New("down"))
	_, err := svc.Replace(context.Background(), services.AssetLogo, "logos/old", &services.File{Data: pngBytes}, func(*storage.Object) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, store.has("logos/old"))
	assert.Len(t, store.objects, 1)
}

func TestAssetService_RemoveIsIdempotent(t *testing.T) {
	store := newFakeStorage()
	store.objects["banners/1"] = pngBytes
	svc := newAssets(store)
	ctx := context.Background()

	require.NoError(t, svc.Remove(ctx, "banners/1"))
	require.NoError(t, svc.Remove(ctx, "banners/1"))
	require.NoError(t, svc.Remove(ctx, ""))
	assert.False(t, store.has("banners/1"))
}

func TestAssetService_ProtectedPaths(t *testing.T) {
	store := newFakeStorage()
	svc := newAssets(store)
	ctx := context.Background()

	for _, id := range []string{"system/logo.png", "defaults/x", "static/a/b", "./system/x", "system//x", "static/./a"} {
		err := svc.Remove(ctx, id)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err), id)
	}
	for _, id := range []string{"/etc/passwd", "products/../system/x"} {
		err := svc.Remove(ctx, id)
		assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err), id)
	}
	assert.Empty(t, store.deleted)

	custom := services.NewAssetService(store, []string{"keep/"}, zap.NewNop(), nil)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(custom.Remove(ctx, "keep/me")))
	assert.NoError(t, custom.Remove(ctx, "system/now-allowed"))
}
