package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"fleetcar/internal/config"
	"fleetcar/internal/database"
	"fleetcar/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupServer(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DBDriver:         "sqlite",
		DBDSN:            filepath.Join(t.TempDir(), "test.db"),
		JWTSecret:        "test-secret",
		JWTIssuer:        "FleetCarAPI",
		JWTAudience:      "FleetCarClient",
		JWTExpireMinutes: 60,
		UploadDir:        t.TempDir(),
		AdminUsername:    "admin",
		AdminPassword:    "Admin123!",
	}

	require.NoError(t, database.Init(cfg.DBDriver, cfg.DBDSN))
	database.SeedAdmin(cfg.AdminUsername, cfg.AdminPassword)

	r, err := NewRouter(cfg, zap.NewNop())
	require.NoError(t, err)
	return r, cfg
}

func doJSON(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doForm sends a multipart form; a non-empty imageName attaches an image part.
func doForm(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, imageName string, imageData []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		part, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write(imageData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndGetToken(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/register",
		gin.H{"username": username, "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var bundle services.TokenBundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bundle))
	return bundle.Token
}

func loginToken(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/login",
		gin.H{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var bundle services.TokenBundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bundle))
	return bundle.Token
}

func carFields(plate string) map[string]string {
	return map[string]string{
		"licensePlate": plate,
		"brand":        "Toyota",
		"model":        "Corolla",
		"year":         "2020",
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupServer(t)
	w := doJSON(r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRegisterLoginFlow(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(r, http.MethodPost, "/api/auth/register",
		gin.H{"username": "alice", "password": "secret123", "fullName": "Alice"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var bundle services.TokenBundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bundle))
	assert.NotEmpty(t, bundle.Token)
	assert.Equal(t, "alice", bundle.Username)
	assert.EqualValues(t, "User", bundle.Role)

	// Duplicate registration conflicts.
	w = doJSON(r, http.MethodPost, "/api/auth/register",
		gin.H{"username": "alice", "password": "secret456"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Short password is rejected before the store.
	w = doJSON(r, http.MethodPost, "/api/auth/register",
		gin.H{"username": "bob", "password": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Wrong password is unauthorized.
	w = doJSON(r, http.MethodPost, "/api/auth/login",
		gin.H{"username": "alice", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	loginToken(t, r, "alice", "secret123")
}

func TestVehicleListIsPublic(t *testing.T) {
	r, _ := setupServer(t)
	w := doJSON(r, http.MethodGet, "/api/vehicles", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var res services.PaginatedVehicles
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.EqualValues(t, 0, res.TotalCount)
}

func TestVehicleListRejectsBadPaging(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(r, http.MethodGet, "/api/vehicles?page=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/vehicles?pageSize=101", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutationsRequireAuth(t *testing.T) {
	r, _ := setupServer(t)

	w := doForm(t, r, http.MethodPost, "/api/vehicles", carFields("A-1"), "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doForm(t, r, http.MethodPut, "/api/vehicles/1", nil, "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/vehicles/1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/vehicles/1", nil, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVehicleCRUD(t *testing.T) {
	r, _ := setupServer(t)
	token := registerAndGetToken(t, r, "alice")

	// Create.
	w := doForm(t, r, http.MethodPost, "/api/vehicles", carFields("A-1"), "", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "A-1", created["licensePlate"])
	assert.Equal(t, "Available", created["status"])
	id := fmt.Sprintf("%v", int(created["id"].(float64)))

	// Duplicate plate on create is a 400 with the plate in the message.
	w = doForm(t, r, http.MethodPost, "/api/vehicles", carFields("A-1"), "", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "A-1")

	// Read back, public.
	w = doJSON(r, http.MethodGet, "/api/vehicles/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Partial update: only the sent field changes.
	w = doForm(t, r, http.MethodPut, "/api/vehicles/"+id,
		map[string]string{"status": "Maintenance"}, "", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Maintenance", updated["status"])
	assert.Equal(t, "A-1", updated["licensePlate"])
	assert.Equal(t, "Toyota", updated["brand"])
	assert.NotEmpty(t, updated["updatedAt"])

	// Delete, then the id is gone; a second delete reports not found.
	w = doJSON(r, http.MethodDelete, "/api/vehicles/"+id, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(r, http.MethodDelete, "/api/vehicles/"+id, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(r, http.MethodGet, "/api/vehicles/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVehicleCreateRejectsInvalidInput(t *testing.T) {
	r, _ := setupServer(t)
	token := registerAndGetToken(t, r, "alice")

	// Status outside the closed enum.
	fields := carFields("A-1")
	fields["status"] = "Exploded"
	w := doForm(t, r, http.MethodPost, "/api/vehicles", fields, "", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Year out of range.
	fields = carFields("A-2")
	fields["year"] = "1850"
	w = doForm(t, r, http.MethodPost, "/api/vehicles", fields, "", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing required plate.
	fields = carFields("A-3")
	delete(fields, "licensePlate")
	w = doForm(t, r, http.MethodPost, "/api/vehicles", fields, "", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVehicleImageUploadAndReplacement(t *testing.T) {
	r, cfg := setupServer(t)
	token := registerAndGetToken(t, r, "alice")

	w := doForm(t, r, http.MethodPost, "/api/vehicles", carFields("IMG-1"), "car.jpg", []byte("first-image"), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	imageURL, _ := created["imageUrl"].(string)
	require.NotEmpty(t, imageURL)

	firstFile := filepath.Join(cfg.UploadDir, filepath.Base(imageURL))
	_, err := os.Stat(firstFile)
	require.NoError(t, err)

	// A replacement image deletes the old file.
	id := fmt.Sprintf("%v", int(created["id"].(float64)))
	w = doForm(t, r, http.MethodPut, "/api/vehicles/"+id, nil, "new.png", []byte("second-image"), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err = os.Stat(firstFile)
	assert.True(t, os.IsNotExist(err))

	var updated map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	newURL, _ := updated["imageUrl"].(string)
	require.NotEmpty(t, newURL)
	assert.NotEqual(t, imageURL, newURL)

	// Deleting the vehicle removes the image too.
	w = doJSON(r, http.MethodDelete, "/api/vehicles/"+id, nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)
	_, err = os.Stat(filepath.Join(cfg.UploadDir, filepath.Base(newURL)))
	assert.True(t, os.IsNotExist(err))
}

func TestVehicleImageRejectsBadUpload(t *testing.T) {
	r, _ := setupServer(t)
	token := registerAndGetToken(t, r, "alice")

	w := doForm(t, r, http.MethodPost, "/api/vehicles", carFields("A-1"), "script.exe", []byte("nope"), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not allowed")

	// The rejected create must not have persisted the vehicle.
	list := doJSON(r, http.MethodGet, "/api/vehicles", nil, "")
	var res services.PaginatedVehicles
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &res))
	assert.EqualValues(t, 0, res.TotalCount)
}

func TestListSortExample(t *testing.T) {
	r, _ := setupServer(t)
	token := registerAndGetToken(t, r, "alice")

	a := carFields("A-1")
	b := map[string]string{"licensePlate": "B-2", "brand": "Honda", "model": "Civic", "year": "2019"}
	for _, f := range []map[string]string{a, b} {
		w := doForm(t, r, http.MethodPost, "/api/vehicles", f, "", nil, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(r, http.MethodGet, "/api/vehicles?sortBy=year&sortDirection=asc&pageSize=10", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var res services.PaginatedVehicles
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Items, 2)
	assert.Equal(t, "B-2", res.Items[0].LicensePlate)
	assert.Equal(t, "A-1", res.Items[1].LicensePlate)
	assert.EqualValues(t, 2, res.TotalCount)
	assert.Equal(t, 1, res.TotalPages)
}

func TestAuditEndpointIsAdminOnly(t *testing.T) {
	r, cfg := setupServer(t)

	userToken := registerAndGetToken(t, r, "alice")
	w := doJSON(r, http.MethodGet, "/api/audit", nil, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/audit", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	adminToken := loginToken(t, r, cfg.AdminUsername, cfg.AdminPassword)
	w = doJSON(r, http.MethodGet, "/api/audit", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "register")
}
