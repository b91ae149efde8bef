package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidor-app/humidor-be/internal/database"
	"github.com/humidor-app/humidor-be/internal/services"
)

func setupFixture(t *testing.T) (*SetupHandler, *stubCatalog, *sql.DB) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	catalog := &stubCatalog{}
	h := NewSetupHandler(services.NewUserService(db), services.NewHumidorService(db), catalog, 1<<20)
	return h, catalog, db
}

func TestSetupStatus(t *testing.T) {
	h, _, db := setupFixture(t)

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest("GET", "/setup/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["needsSetup"])

	_, err := db.Exec("INSERT INTO users(id, username, email, password_hash, is_admin) VALUES('u1','root','r@example.com','x',1)")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest("GET", "/setup/status", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp["needsSetup"])
}

func TestSetupRunCreatesAdminAndHumidor(t *testing.T) {
	h, _, db := setupFixture(t)

	body := `{"username":"root","email":"root@example.com","password":"pw","humidorName":"Desktop"}`
	rec := httptest.NewRecorder()
	h.Run(rec, httptest.NewRequest("POST", "/setup", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var admins, humidors int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users WHERE is_admin = 1").Scan(&admins))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM humidors").Scan(&humidors))
	assert.Equal(t, 1, admins)
	assert.Equal(t, 1, humidors)

	// Setup is one-shot.
	rec = httptest.NewRecorder()
	h.Run(rec, httptest.NewRequest("POST", "/setup", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSetupRunValidatesPayload(t *testing.T) {
	h, _, _ := setupFixture(t)

	rec := httptest.NewRecorder()
	h.Run(rec, httptest.NewRequest("POST", "/setup", strings.NewReader(`{"username":"root"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetupRestoreOnFreshInstall(t *testing.T) {
	h, catalog, _ := setupFixture(t)

	body, contentType := multipartBody(t, "backup", "old-install.zip", []byte("archive"))
	req := httptest.NewRequest("POST", "/setup/restore", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.RestoreBackup(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("archive"), catalog.uploaded["old-install.zip"])
	assert.Equal(t, []string{"old-install.zip"}, catalog.restored)
}

func TestSetupRestoreRefusedOnceAdminExists(t *testing.T) {
	h, catalog, db := setupFixture(t)
	_, err := db.Exec("INSERT INTO users(id, username, email, password_hash, is_admin) VALUES('u1','root','r@example.com','x',1)")
	require.NoError(t, err)

	body, contentType := multipartBody(t, "backup", "old-install.zip", []byte("archive"))
	req := httptest.NewRequest("POST", "/setup/restore", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.RestoreBackup(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, catalog.restored)
}
