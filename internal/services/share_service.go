package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/humidor-app/humidor-be/internal/models"
)

// ShareServiceProvider defines the interface for humidor sharing services.
type ShareServiceProvider interface {
	GetSharesForHumidor(humidorID string) ([]models.HumidorShare, error)
	ShareHumidor(humidorID, withUserID, byUserID string, level models.PermissionLevel) (models.HumidorShare, error)
	UpdateSharePermission(shareID string, level models.PermissionLevel) (models.HumidorShare, error)
	RevokeShare(shareID string) error
	GetShareByID(shareID string) (models.HumidorShare, error)
}

// ShareService provides business logic for sharing humidors between users.
type ShareService struct {
	db *sql.DB
}

// NewShareService creates a new ShareService.
func NewShareService(db *sql.DB) *ShareService {
	return &ShareService{db: db}
}

const shareColumns = "id, humidor_id, shared_with_user_id, shared_by_user_id, permission_level, created_at, updated_at"

func scanShare(scanner interface{ Scan(...any) error }) (models.HumidorShare, error) {
	var share models.HumidorShare
	var level string
	err := scanner.Scan(&share.ID, &share.HumidorID, &share.SharedWithUserID,
		&share.SharedByUserID, &level, &share.CreatedAt, &share.UpdatedAt)
	share.PermissionLevel = models.PermissionLevel(level)
	return share, err
}

// GetSharesForHumidor lists the active shares of one humidor.
func (s *ShareService) GetSharesForHumidor(humidorID string) ([]models.HumidorShare, error) {
	rows, err := s.db.Query("SELECT "+shareColumns+" FROM humidor_shares WHERE humidor_id = ? ORDER BY created_at", humidorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []models.HumidorShare
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

// GetShareByID retrieves a single share.
func (s *ShareService) GetShareByID(shareID string) (models.HumidorShare, error) {
	row := s.db.QueryRow("SELECT "+shareColumns+" FROM humidor_shares WHERE id = ?", shareID)
	share, err := scanShare(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.HumidorShare{}, fmt.Errorf("share with ID %s not found", shareID)
		}
		return models.HumidorShare{}, err
	}
	return share, nil
}

// ShareHumidor grants withUserID access to a humidor. Sharing with yourself
// or sharing the same humidor with the same user twice is rejected.
func (s *ShareService) ShareHumidor(humidorID, withUserID, byUserID string, level models.PermissionLevel) (models.HumidorShare, error) {
	if withUserID == byUserID {
		return models.HumidorShare{}, fmt.Errorf("cannot share a humidor with its owner")
	}

	share := models.HumidorShare{
		ID:               uuid.New().String(),
		HumidorID:        humidorID,
		SharedWithUserID: withUserID,
		SharedByUserID:   byUserID,
		PermissionLevel:  level,
	}

	_, err := s.db.Exec(`INSERT INTO humidor_shares
		(id, humidor_id, shared_with_user_id, shared_by_user_id, permission_level)
		VALUES (?, ?, ?, ?, ?)`,
		share.ID, share.HumidorID, share.SharedWithUserID, share.SharedByUserID, string(share.PermissionLevel))
	if err != nil {
		return models.HumidorShare{}, fmt.Errorf("could not create share: %w", err)
	}
	return s.GetShareByID(share.ID)
}

// UpdateSharePermission changes the permission level of an existing share.
func (s *ShareService) UpdateSharePermission(shareID string, level models.PermissionLevel) (models.HumidorShare, error) {
	_, err := s.db.Exec("UPDATE humidor_shares SET permission_level = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(level), shareID)
	if err != nil {
		return models.HumidorShare{}, err
	}
	return s.GetShareByID(shareID)
}

// RevokeShare removes a share.
func (s *ShareService) RevokeShare(shareID string) error {
	_, err := s.db.Exec("DELETE FROM humidor_shares WHERE id = ?", shareID)
	return err
}
