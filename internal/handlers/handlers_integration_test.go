package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"qrmenu/internal/config"
	"qrmenu/internal/server"
	"qrmenu/internal/services"
	"qrmenu/pkg/database"
	"qrmenu/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const superPassword = "super-secret-1"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

// setupApp builds the full application over in-memory SQLite and a
// temporary upload directory, with a bootstrapped superadmin.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite", DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	local, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:                "test_jwt_secret",
		JWTExpiry:                time.Hour,
		JWTMaxAge:                12 * time.Hour,
		ReauthMaxAge:             15 * time.Minute,
		RequestTimeout:           5 * time.Second,
		StorageBaseURL:           "/uploads",
		StorageProtectedPrefixes: services.DefaultProtectedPrefixes,
	}
	srv := server.New(server.Deps{Config: cfg, DB: db, Storage: local, Registry: prometheus.NewRegistry()})

	_, err = srv.Admins.BootstrapSuperadmin(context.Background(), services.BootstrapInput{
		Email:    "root@example.com",
		Name:     "Root",
		Password: superPassword,
	})
	require.NoError(t, err)
	return srv.App
}

func do(t *testing.T, app *fiber.App, req *http.Request, out any) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp
}

func jsonRequest(method, path, token string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func multipartRequest(t *testing.T, method, path, token string, fields map[string]string, fileField string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	var body struct {
		Token string `json:"token"`
	}
	resp := do(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": email, "password": password}), &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.Token)
	return body.Token
}

type adminResponse struct {
	Admin struct {
		ID    string `json:"id"`
		Store struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
		} `json:"store"`
	} `json:"admin"`
}

func registerAdmin(t *testing.T, app *fiber.App, superToken, email, storeName string) adminResponse {
	t.Helper()
	var out adminResponse
	resp := do(t, app, jsonRequest(http.MethodPost, "/api/v1/admins", superToken, fiber.Map{
		"email":      email,
		"password":   "password-123",
		"store_name": storeName,
	}), &out)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return out
}

type errorBody struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
	Field   string `json:"field"`
}

func TestHealthAndMetrics(t *testing.T) {
	app := setupApp(t)

	var health map[string]any
	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil), &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health["status"])

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), "auth_lockouts_total")
}

func TestUnauthenticatedAccess(t *testing.T) {
	app := setupApp(t)

	var e errorBody
	resp := do(t, app, jsonRequest(http.MethodGet, "/api/v1/products", "", nil), &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing_token", e.Reason)

	resp = do(t, app, jsonRequest(http.MethodGet, "/api/v1/products", "not.a.token", nil), &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", e.Reason)

	req := jsonRequest(http.MethodGet, "/api/v1/products", "", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Token abc")
	resp = do(t, app, req, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "malformed_authorization_header", e.Reason)
}

func TestLoginCookieAndLogout(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "ROOT@example.com", "password": superPassword}), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: session.Value})
	var me struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	resp = do(t, app, req, &me)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "root@example.com", me.User.Email)
	assert.Equal(t, "superadmin", me.User.Role)

	resp = do(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/logout", "", nil), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			assert.Empty(t, c.Value)
		}
	}
}

func TestLockoutOverHTTP(t *testing.T) {
	app := setupApp(t)
	superToken := login(t, app, "root@example.com", superPassword)
	registerAdmin(t, app, superToken, "owner@example.com", "Cafe A")

	var e errorBody
	for i := 0; i < services.MaxLoginAttempts; i++ {
		resp := do(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "owner@example.com", "password": "wrong-password"}), &e)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid_credentials", e.Reason)
	}

	resp := do(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "owner@example.com", "password": "password-123"}), &e)
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
	assert.Equal(t, "account_locked", e.Reason)

	resp = do(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "nobody@example.com", "password": "password-123"}), &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", e.Reason)

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil), nil)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "auth_lockouts_total 1")
}

func TestMenuLifecycleAndTenantIsolation(t *testing.T) {
	app := setupApp(t)
	superToken := login(t, app, "root@example.com", superPassword)
	a := registerAdmin(t, app, superToken, "a@example.com", "Cafe A")
	b := registerAdmin(t, app, superToken, "b@example.com", "Cafe B")
	tokenA := login(t, app, "a@example.com", "password-123")
	tokenB := login(t, app, "b@example.com", "password-123")

	var created struct {
		Category struct {
			ID      string `json:"id"`
			StoreID string `json:"store_id"`
		} `json:"category"`
	}
	resp := do(t, app, jsonRequest(http.MethodPost, "/api/v1/categories", tokenA, fiber.Map{"name": "Drinks", "store_id": b.Admin.Store.ID}), &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, a.Admin.Store.ID, created.Category.StoreID, "admins always write to their own store")

	var product struct {
		Product struct {
			ID    string `json:"id"`
			Image string `json:"image"`
		} `json:"product"`
	}
	resp = do(t, app, multipartRequest(t, http.MethodPost, "/api/v1/products", tokenA, map[string]string{
		"title":        "Tea",
		"price":        "2.50",
		"category_id":  created.Category.ID,
		"is_available": "true",
	}, "image"), &product)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, strings.HasPrefix(product.Product.Image, "/uploads/products/"))

	resp = do(t, app, httptest.NewRequest(http.MethodGet, product.Product.Image, nil), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var menu services.Menu
	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/menu/"+a.Admin.Store.Slug, nil), &menu)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, menu.Sections, 1)
	assert.Equal(t, "Tea", menu.Sections[0].Items[0].Title)

	var e errorBody
	resp = do(t, app, jsonRequest(http.MethodGet, "/api/v1/products/"+product.Product.ID, tokenB, nil), &e)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, app, jsonRequest(http.MethodDelete, "/api/v1/categories/"+created.Category.ID, tokenB, nil), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, app, jsonRequest(http.MethodPut, "/api/v1/stores/"+a.Admin.Store.ID, tokenB, fiber.Map{"name": "Hijacked"}), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var listB []map[string]any
	resp = do(t, app, jsonRequest(http.MethodGet, "/api/v1/products", tokenB, nil), &listB)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, listB)

	resp = do(t, app, jsonRequest(http.MethodGet, "/api/v1/admins", tokenA, nil), &e)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "role_not_allowed", e.Reason)

	resp = do(t, app, jsonRequest(http.MethodDelete, "/api/v1/products/"+product.Product.ID, tokenA, nil), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, app, jsonRequest(http.MethodGet, "/api/v1/products/"+product.Product.ID, tokenA, nil), &e)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStoreMineAndUploadValidation(t *testing.T) {
	app := setupApp(t)
	superToken := login(t, app, "root@example.com", superPassword)
	a := registerAdmin(t, app, superToken, "a@example.com", "Cafe A")
	tokenA := login(t, app, "a@example.com", "password-123")

	var mine struct {
		ID string `json:"id"`
	}
	resp := do(t, app, jsonRequest(http.MethodGet, "/api/v1/stores/me", tokenA, nil), &mine)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, a.Admin.Store.ID, mine.ID)

	var e errorBody
	resp = do(t, app, multipartRequest(t, http.MethodPost, "/api/v1/stores/"+mine.ID+"/logo", tokenA, nil, ""), &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "file", e.Field)

	resp = do(t, app, multipartRequest(t, http.MethodPost, "/api/v1/stores/"+mine.ID+"/logo", tokenA, nil, "file"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, jsonRequest(http.MethodDelete, "/api/v1/stores/"+mine.ID+"/banners/abc", tokenA, nil), &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "index", e.Field)
}

func TestAdminDeleteRequiresPassword(t *testing.T) {
	app := setupApp(t)
	superToken := login(t, app, "root@example.com", superPassword)
	a := registerAdmin(t, app, superToken, "a@example.com", "Cafe A")
	path := "/api/v1/admins/" + a.Admin.ID

	var e errorBody
	resp := do(t, app, jsonRequest(http.MethodDelete, path, superToken, fiber.Map{}), &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "password", e.Field)

	resp = do(t, app, jsonRequest(http.MethodDelete, path, superToken, fiber.Map{"password": "wrong-password"}), &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A failed confirmation is not a login failure.
	login(t, app, "root@example.com", superPassword)

	resp = do(t, app, jsonRequest(http.MethodDelete, path, superToken, fiber.Map{"password": superPassword}), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "a@example.com", "password": "password-123"}), &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var menuErr errorBody
	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/menu/"+a.Admin.Store.Slug, nil), &menuErr)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOverlongPasswordIsValidationError(t *testing.T) {
	app := setupApp(t)
	superToken := login(t, app, "root@example.com", superPassword)

	var e errorBody
	resp := do(t, app, jsonRequest(http.MethodPut, "/api/v1/auth/password", superToken, fiber.Map{
		"current_password": superPassword,
		"new_password":     strings.Repeat("a", 80),
	}), &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "password", e.Field)
	assert.Equal(t, "max", e.Reason)

	// 40 runes pass the struct rule but are 80 bytes.
	resp = do(t, app, jsonRequest(http.MethodPost, "/api/v1/admins", superToken, fiber.Map{
		"email":      "long@example.com",
		"password":   strings.Repeat("ж", 40),
		"store_name": "Long Cafe",
	}), &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "password", e.Field)
	assert.Equal(t, "max", e.Reason)

	login(t, app, "root@example.com", superPassword)
}

func TestUnknownAPIPathIsNotFound(t *testing.T) {
	app := setupApp(t)

	var e errorBody
	resp := do(t, app, jsonRequest(http.MethodGet, "/api/v1/nope", "", nil), &e)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, jsonRequest(http.MethodGet, "/api/v1/categories", "", nil), &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing_token", e.Reason)

	resp = do(t, app, jsonRequest(http.MethodGet, "/api/v1/stores/me", "", nil), &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublicMenuHidesOwner(t *testing.T) {
	app := setupApp(t)
	superToken := login(t, app, "root@example.com", superPassword)
	a := registerAdmin(t, app, superToken, "a@example.com", "Cafe A")

	var menu struct {
		Store map[string]any `json:"store"`
	}
	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/menu/"+a.Admin.Store.Slug, nil), &menu)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Cafe A", menu.Store["name"])
	assert.Equal(t, a.Admin.Store.Slug, menu.Store["slug"])
	for _, hidden := range []string{"admin_id", "id", "created_at", "updated_at", "last_active_at", "is_active"} {
		assert.NotContains(t, menu.Store, hidden)
	}
}
