package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/humidor-app/humidor-be/internal/models"
)

// CigarServiceProvider defines the interface for cigar operations, including
// per-user favorites and the wish list.
type CigarServiceProvider interface {
	GetCigarsForHumidor(humidorID string) ([]models.Cigar, error)
	GetCigarByID(id string) (models.Cigar, error)
	CreateCigar(c models.Cigar) (models.Cigar, error)
	UpdateCigar(id string, c models.Cigar) (models.Cigar, error)
	AdjustQuantity(id string, delta int) (models.Cigar, error)
	DeleteCigar(id string) error

	GetFavorites(userID string) ([]models.Cigar, error)
	AddFavorite(userID, cigarID string) error
	RemoveFavorite(userID, cigarID string) error

	GetWishList(userID string) ([]models.WishListItem, error)
	AddWishListItem(userID, cigarID string, notes *string) (models.WishListItem, error)
	RemoveWishListItem(userID, cigarID string) error
}

// CigarService provides business logic for cigar operations.
type CigarService struct {
	db *sql.DB
}

// NewCigarService creates a new CigarService.
func NewCigarService(db *sql.DB) *CigarService {
	return &CigarService{db: db}
}

const cigarColumns = `id, humidor_id, brand_id, name, size_id, strength_id, origin_id, wrapper, binder,
	filler, price, purchase_date, notes, quantity, ring_gauge_id, length, image_url, retail_link,
	is_active, created_at, updated_at`

func scanCigar(scanner interface{ Scan(...any) error }) (models.Cigar, error) {
	var c models.Cigar
	err := scanner.Scan(&c.ID, &c.HumidorID, &c.BrandID, &c.Name, &c.SizeID, &c.StrengthID, &c.OriginID,
		&c.Wrapper, &c.Binder, &c.Filler, &c.Price, &c.PurchaseDate, &c.Notes, &c.Quantity,
		&c.RingGaugeID, &c.Length, &c.ImageURL, &c.RetailLink, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetCigarsForHumidor returns the active cigars in a humidor.
func (s *CigarService) GetCigarsForHumidor(humidorID string) ([]models.Cigar, error) {
	rows, err := s.db.Query("SELECT "+cigarColumns+" FROM cigars WHERE humidor_id = ? AND is_active = 1 ORDER BY name", humidorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cigars []models.Cigar
	for rows.Next() {
		c, err := scanCigar(rows)
		if err != nil {
			return nil, err
		}
		cigars = append(cigars, c)
	}
	return cigars, rows.Err()
}

// GetCigarByID fetches a single cigar by its ID.
func (s *CigarService) GetCigarByID(id string) (models.Cigar, error) {
	row := s.db.QueryRow("SELECT "+cigarColumns+" FROM cigars WHERE id = ?", id)
	c, err := scanCigar(row)
	if err == sql.ErrNoRows {
		return c, fmt.Errorf("cigar with ID %s not found", id)
	}
	return c, err
}

// CreateCigar inserts a new cigar and returns the stored row.
func (s *CigarService) CreateCigar(c models.Cigar) (models.Cigar, error) {
	c.ID = uuid.New().String()
	_, err := s.db.Exec(`INSERT INTO cigars(id, humidor_id, brand_id, name, size_id, strength_id, origin_id,
		wrapper, binder, filler, price, purchase_date, notes, quantity, ring_gauge_id, length,
		image_url, retail_link, is_active)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		c.ID, c.HumidorID, c.BrandID, c.Name, c.SizeID, c.StrengthID, c.OriginID,
		c.Wrapper, c.Binder, c.Filler, c.Price, c.PurchaseDate, c.Notes, c.Quantity,
		c.RingGaugeID, c.Length, c.ImageURL, c.RetailLink)
	if err != nil {
		return models.Cigar{}, err
	}
	return s.GetCigarByID(c.ID)
}

// UpdateCigar updates all editable fields of a cigar.
func (s *CigarService) UpdateCigar(id string, c models.Cigar) (models.Cigar, error) {
	_, err := s.db.Exec(`UPDATE cigars SET brand_id = ?, name = ?, size_id = ?, strength_id = ?,
		origin_id = ?, wrapper = ?, binder = ?, filler = ?, price = ?, purchase_date = ?, notes = ?,
		quantity = ?, ring_gauge_id = ?, length = ?, image_url = ?, retail_link = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		c.BrandID, c.Name, c.SizeID, c.StrengthID, c.OriginID, c.Wrapper, c.Binder, c.Filler,
		c.Price, c.PurchaseDate, c.Notes, c.Quantity, c.RingGaugeID, c.Length, c.ImageURL,
		c.RetailLink, id)
	if err != nil {
		return models.Cigar{}, err
	}
	return s.GetCigarByID(id)
}

// AdjustQuantity adds delta to a cigar's quantity, clamping at zero.
func (s *CigarService) AdjustQuantity(id string, delta int) (models.Cigar, error) {
	_, err := s.db.Exec(`UPDATE cigars SET quantity = MAX(0, quantity + ?),
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`, delta, id)
	if err != nil {
		return models.Cigar{}, err
	}
	return s.GetCigarByID(id)
}

// DeleteCigar soft-deletes a cigar by marking it inactive.
func (s *CigarService) DeleteCigar(id string) error {
	res, err := s.db.Exec("UPDATE cigars SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("cigar with ID %s not found", id)
	}
	return nil
}

// GetFavorites returns the cigars a user has marked as favorites.
func (s *CigarService) GetFavorites(userID string) ([]models.Cigar, error) {
	rows, err := s.db.Query(`SELECT `+cigarColumns+` FROM cigars
		WHERE id IN (SELECT cigar_id FROM favorites WHERE user_id = ?) AND is_active = 1
		ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cigars []models.Cigar
	for rows.Next() {
		c, err := scanCigar(rows)
		if err != nil {
			return nil, err
		}
		cigars = append(cigars, c)
	}
	return cigars, rows.Err()
}

// AddFavorite marks a cigar as a favorite. Adding twice is not an error.
func (s *CigarService) AddFavorite(userID, cigarID string) error {
	_, err := s.db.Exec(`INSERT INTO favorites(id, user_id, cigar_id) VALUES(?, ?, ?)
		ON CONFLICT(user_id, cigar_id) DO NOTHING`, uuid.New().String(), userID, cigarID)
	return err
}

// RemoveFavorite removes a cigar from a user's favorites.
func (s *CigarService) RemoveFavorite(userID, cigarID string) error {
	_, err := s.db.Exec("DELETE FROM favorites WHERE user_id = ? AND cigar_id = ?", userID, cigarID)
	return err
}

// GetWishList returns a user's wish list entries, newest first.
func (s *CigarService) GetWishList(userID string) ([]models.WishListItem, error) {
	rows, err := s.db.Query(`SELECT id, user_id, cigar_id, notes, created_at FROM wish_list
		WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.WishListItem
	for rows.Next() {
		var it models.WishListItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.CigarID, &it.Notes, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddWishListItem adds a cigar to a user's wish list.
func (s *CigarService) AddWishListItem(userID, cigarID string, notes *string) (models.WishListItem, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(`INSERT INTO wish_list(id, user_id, cigar_id, notes) VALUES(?, ?, ?, ?)
		ON CONFLICT(user_id, cigar_id) DO UPDATE SET notes = excluded.notes`, id, userID, cigarID, notes)
	if err != nil {
		return models.WishListItem{}, err
	}
	var it models.WishListItem
	row := s.db.QueryRow("SELECT id, user_id, cigar_id, notes, created_at FROM wish_list WHERE user_id = ? AND cigar_id = ?", userID, cigarID)
	if err := row.Scan(&it.ID, &it.UserID, &it.CigarID, &it.Notes, &it.CreatedAt); err != nil {
		return models.WishListItem{}, err
	}
	return it, nil
}

// RemoveWishListItem removes a cigar from a user's wish list.
func (s *CigarService) RemoveWishListItem(userID, cigarID string) error {
	_, err := s.db.Exec("DELETE FROM wish_list WHERE user_id = ? AND cigar_id = ?", userID, cigarID)
	return err
}
