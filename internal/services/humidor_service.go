package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/humidor-app/humidor-be/internal/models"
)

const humidorColumns = "id, user_id, name, description, capacity, target_humidity, location, image_url, created_at, updated_at"

// HumidorServiceProvider defines the interface for humidor services.
type HumidorServiceProvider interface {
	GetHumidorsForUser(userID string) ([]models.Humidor, error)
	GetHumidorByID(id string) (models.Humidor, error)
	CreateHumidor(userID string, h models.Humidor) (models.Humidor, error)
	UpdateHumidor(id string, h models.Humidor) (models.Humidor, error)
	DeleteHumidor(id string) error
	PermissionFor(humidorID, userID string) (models.PermissionLevel, error)
}

// HumidorService provides business logic for humidor management.
type HumidorService struct {
	db *sql.DB
}

// NewHumidorService creates a new HumidorService.
func NewHumidorService(db *sql.DB) *HumidorService {
	return &HumidorService{db: db}
}

func scanHumidor(scanner interface{ Scan(...any) error }) (models.Humidor, error) {
	var h models.Humidor
	err := scanner.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Capacity,
		&h.TargetHumidity, &h.Location, &h.ImageURL, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

// GetHumidorsForUser retrieves the humidors a user owns plus the ones shared
// with them, with the share's permission level attached.
func (s *HumidorService) GetHumidorsForUser(userID string) ([]models.Humidor, error) {
	rows, err := s.db.Query("SELECT "+humidorColumns+" FROM humidors WHERE user_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var humidors []models.Humidor
	for rows.Next() {
		h, err := scanHumidor(rows)
		if err != nil {
			return nil, err
		}
		h.PermissionLevel = models.PermissionFull
		humidors = append(humidors, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shared, err := s.db.Query(`
		SELECT h.id, h.user_id, h.name, h.description, h.capacity, h.target_humidity,
		       h.location, h.image_url, h.created_at, h.updated_at, hs.permission_level
		FROM humidors h
		JOIN humidor_shares hs ON hs.humidor_id = h.id
		WHERE hs.shared_with_user_id = ?
		ORDER BY hs.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer shared.Close()

	for shared.Next() {
		var h models.Humidor
		var level string
		err := shared.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Capacity,
			&h.TargetHumidity, &h.Location, &h.ImageURL, &h.CreatedAt, &h.UpdatedAt, &level)
		if err != nil {
			return nil, err
		}
		h.PermissionLevel = models.PermissionLevel(level)
		humidors = append(humidors, h)
	}
	return humidors, shared.Err()
}

// GetHumidorByID retrieves a single humidor by its ID.
func (s *HumidorService) GetHumidorByID(id string) (models.Humidor, error) {
	row := s.db.QueryRow("SELECT "+humidorColumns+" FROM humidors WHERE id = ?", id)
	h, err := scanHumidor(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Humidor{}, fmt.Errorf("humidor with ID %s not found", id)
		}
		return models.Humidor{}, err
	}
	return h, nil
}

// CreateHumidor creates a new humidor owned by userID.
func (s *HumidorService) CreateHumidor(userID string, h models.Humidor) (models.Humidor, error) {
	h.ID = uuid.New().String()
	h.UserID = userID

	stmt, err := s.db.Prepare(`INSERT INTO humidors
		(id, user_id, name, description, capacity, target_humidity, location, image_url)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return models.Humidor{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(h.ID, h.UserID, h.Name, h.Description, h.Capacity, h.TargetHumidity, h.Location, h.ImageURL)
	if err != nil {
		return models.Humidor{}, err
	}
	return s.GetHumidorByID(h.ID)
}

// UpdateHumidor updates a humidor's attributes.
func (s *HumidorService) UpdateHumidor(id string, h models.Humidor) (models.Humidor, error) {
	_, err := s.db.Exec(`UPDATE humidors SET
		name = ?, description = ?, capacity = ?, target_humidity = ?, location = ?, image_url = ?,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		h.Name, h.Description, h.Capacity, h.TargetHumidity, h.Location, h.ImageURL, id)
	if err != nil {
		return models.Humidor{}, err
	}
	return s.GetHumidorByID(id)
}

// DeleteHumidor removes a humidor; its cigars and shares cascade.
func (s *HumidorService) DeleteHumidor(id string) error {
	_, err := s.db.Exec("DELETE FROM humidors WHERE id = ?", id)
	return err
}

// PermissionFor resolves what userID may do with a humidor: full access for
// the owner, the share's level for a shared humidor, and an error when the
// user has no access at all.
func (s *HumidorService) PermissionFor(humidorID, userID string) (models.PermissionLevel, error) {
	h, err := s.GetHumidorByID(humidorID)
	if err != nil {
		return "", err
	}
	if h.UserID == userID {
		return models.PermissionFull, nil
	}

	var level string
	row := s.db.QueryRow("SELECT permission_level FROM humidor_shares WHERE humidor_id = ? AND shared_with_user_id = ?",
		humidorID, userID)
	if err := row.Scan(&level); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no access to humidor %s", humidorID)
		}
		return "", err
	}
	return models.ParsePermissionLevel(level)
}
