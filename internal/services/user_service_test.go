package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidor-app/humidor-be/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateAndAuthenticateUser(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.CreateUser("alice", "alice@example.com", "Alice", "s3cret", true)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.True(t, user.IsAdmin)
	assert.True(t, user.IsActive)
	assert.Empty(t, user.PasswordHash)

	got, err := svc.AuthenticateUser("alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	_, err = svc.AuthenticateUser("alice", "wrong")
	assert.Error(t, err)

	_, err = svc.AuthenticateUser("nobody", "s3cret")
	assert.Error(t, err)
}

func TestAuthenticateRejectsDisabledAccount(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.CreateUser("bob", "bob@example.com", "", "pw", false)
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(user.ID, false))
	_, err = svc.AuthenticateUser("bob", "pw")
	assert.ErrorContains(t, err, "disabled")

	require.NoError(t, svc.SetActive(user.ID, true))
	_, err = svc.AuthenticateUser("bob", "pw")
	assert.NoError(t, err)
}

func TestHasAdmin(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	hasAdmin, err := svc.HasAdmin()
	require.NoError(t, err)
	assert.False(t, hasAdmin)

	_, err = svc.CreateUser("bob", "bob@example.com", "", "pw", false)
	require.NoError(t, err)
	hasAdmin, err = svc.HasAdmin()
	require.NoError(t, err)
	assert.False(t, hasAdmin)

	_, err = svc.CreateUser("root", "root@example.com", "", "pw", true)
	require.NoError(t, err)
	hasAdmin, err = svc.HasAdmin()
	require.NoError(t, err)
	assert.True(t, hasAdmin)
}

func TestUpdatePasswordRequiresCurrent(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.CreateUser("carol", "carol@example.com", "", "old", false)
	require.NoError(t, err)

	assert.Error(t, svc.UpdatePassword(user.ID, "not-old", "new"))
	require.NoError(t, svc.UpdatePassword(user.ID, "old", "new"))

	_, err = svc.AuthenticateUser("carol", "new")
	assert.NoError(t, err)
}

func TestSetPasswordSkipsCurrentCheck(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.CreateUser("dave", "dave@example.com", "", "forgotten", false)
	require.NoError(t, err)

	require.NoError(t, svc.SetPassword(user.ID, "reset"))
	_, err = svc.AuthenticateUser("dave", "reset")
	assert.NoError(t, err)
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.CreateUser("eve", "eve@example.com", "", "pw", false)
	require.NoError(t, err)
	_, err = svc.CreateUser("eve", "other@example.com", "", "pw", false)
	assert.Error(t, err)
}

func TestDeleteUserCascades(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	humidors := NewHumidorService(db)

	user, err := users.CreateUser("frank", "frank@example.com", "", "pw", false)
	require.NoError(t, err)
	_, err = humidors.CreateHumidor(user.ID, modelsHumidor("Office"))
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(user.ID))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM humidors").Scan(&n))
	assert.Zero(t, n)
}
