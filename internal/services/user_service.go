package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/humidor-app/humidor-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = "id, username, email, full_name, password_hash, is_admin, is_active, created_at, updated_at"

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	GetAllUsers() ([]models.User, error)
	CreateUser(username, email, fullName, password string, isAdmin bool) (models.User, error)
	UpdateUser(id, username, email, fullName string) (models.User, error)
	UpdatePassword(id, currentPassword, newPassword string) error
	SetPassword(id, newPassword string) error
	SetActive(id string, active bool) error
	SetAdmin(id string, admin bool) error
	DeleteUser(id string) error
	AuthenticateUser(username, password string) (models.User, error)
	HasAdmin() (bool, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// scanUser is a helper to scan a user from a row or rows object.
func scanUser(scanner interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.PasswordHash, &user.IsAdmin, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// GetUserByID retrieves a single active user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("user with ID %s not found", id)
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// GetUserByUsername retrieves a single user by username, including the
// password hash.
func (s *UserService) GetUserByUsername(username string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("user %s not found", username)
		}
		return models.User{}, err
	}
	return user, nil
}

// GetAllUsers retrieves every user account, for the admin user list.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT " + userColumns + " FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = ""
		users = append(users, user)
	}
	return users, rows.Err()
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(username, email, fullName, password string, isAdmin bool) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashedPassword),
		IsAdmin:      isAdmin,
		IsActive:     true,
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, username, email, full_name, password_hash, is_admin, is_active) VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Username, user.Email, user.FullName, user.PasswordHash, user.IsAdmin, user.IsActive)
	if err != nil {
		return models.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateUser updates a user's non-sensitive information.
func (s *UserService) UpdateUser(id, username, email, fullName string) (models.User, error) {
	_, err := s.db.Exec("UPDATE users SET username = ?, email = ?, full_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		username, email, fullName, id)
	if err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(id)
}

// UpdatePassword verifies the current password, then hashes and sets a new
// password for a user.
func (s *UserService) UpdatePassword(id, currentPassword, newPassword string) error {
	var hash string
	row := s.db.QueryRow("SELECT password_hash FROM users WHERE id = ?", id)
	if err := row.Scan(&hash); err != nil {
		return fmt.Errorf("could not find user to update password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect")
	}
	return s.SetPassword(id, newPassword)
}

// SetPassword hashes and sets a new password without checking the old one.
// Admin-only surface.
func (s *UserService) SetPassword(id, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	_, err = s.db.Exec("UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", string(hashedPassword), id)
	return err
}

// SetActive enables or disables a user account.
func (s *UserService) SetActive(id string, active bool) error {
	_, err := s.db.Exec("UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", active, id)
	return err
}

// SetAdmin grants or revokes admin privileges.
func (s *UserService) SetAdmin(id string, admin bool) error {
	_, err := s.db.Exec("UPDATE users SET is_admin = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", admin, id)
	return err
}

// DeleteUser removes a user from the database. Humidors, favorites, wish list
// entries and shares follow through the cascading foreign keys.
func (s *UserService) DeleteUser(id string) error {
	_, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	return err
}

// AuthenticateUser verifies a user's credentials. Disabled accounts cannot
// log in.
func (s *UserService) AuthenticateUser(username, password string) (models.User, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return models.User{}, fmt.Errorf("authentication failed: user not found")
	}
	if !user.IsActive {
		return models.User{}, fmt.Errorf("authentication failed: account disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("authentication failed: invalid password")
	}

	user.PasswordHash = ""
	return user, nil
}

// HasAdmin reports whether any administrator account exists. The setup flow
// (initial admin creation, bootstrap restore) is only open while this is
// false.
func (s *UserService) HasAdmin() (bool, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE is_admin = 1").Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
