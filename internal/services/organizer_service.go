package services

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/humidor-app/humidor-be/internal/models"
)

// OrganizerServiceProvider defines the interface for the organizer reference
// tables: brands, sizes, ring gauges, strengths and origins.
type OrganizerServiceProvider interface {
	GetAllBrands() ([]models.Brand, error)
	CreateBrand(b models.Brand) (models.Brand, error)
	UpdateBrand(id string, b models.Brand) (models.Brand, error)
	DeleteBrand(id string) error

	GetAllSizes() ([]models.Size, error)
	CreateSize(sz models.Size) (models.Size, error)
	UpdateSize(id string, sz models.Size) (models.Size, error)
	DeleteSize(id string) error

	GetAllRingGauges() ([]models.RingGauge, error)
	CreateRingGauge(rg models.RingGauge) (models.RingGauge, error)
	UpdateRingGauge(id string, rg models.RingGauge) (models.RingGauge, error)
	DeleteRingGauge(id string) error

	GetAllStrengths() ([]models.Strength, error)
	CreateStrength(st models.Strength) (models.Strength, error)
	UpdateStrength(id string, st models.Strength) (models.Strength, error)
	DeleteStrength(id string) error

	GetAllOrigins() ([]models.Origin, error)
	CreateOrigin(o models.Origin) (models.Origin, error)
	UpdateOrigin(id string, o models.Origin) (models.Origin, error)
	DeleteOrigin(id string) error
}

// OrganizerService provides business logic for the organizer tables.
type OrganizerService struct {
	db *sql.DB
}

// NewOrganizerService creates a new OrganizerService.
func NewOrganizerService(db *sql.DB) *OrganizerService {
	return &OrganizerService{db: db}
}

// Brands

func (s *OrganizerService) GetAllBrands() ([]models.Brand, error) {
	rows, err := s.db.Query("SELECT id, name, description, country, website, created_at, updated_at FROM brands ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []models.Brand
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Country, &b.Website, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (s *OrganizerService) getBrand(id string) (models.Brand, error) {
	var b models.Brand
	row := s.db.QueryRow("SELECT id, name, description, country, website, created_at, updated_at FROM brands WHERE id = ?", id)
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Country, &b.Website, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return b, fmt.Errorf("brand with ID %s not found", id)
	}
	return b, err
}

func (s *OrganizerService) CreateBrand(b models.Brand) (models.Brand, error) {
	b.ID = uuid.New().String()
	_, err := s.db.Exec("INSERT INTO brands(id, name, description, country, website) VALUES(?, ?, ?, ?, ?)",
		b.ID, b.Name, b.Description, b.Country, b.Website)
	if err != nil {
		return models.Brand{}, err
	}
	return s.getBrand(b.ID)
}

func (s *OrganizerService) UpdateBrand(id string, b models.Brand) (models.Brand, error) {
	_, err := s.db.Exec("UPDATE brands SET name = ?, description = ?, country = ?, website = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		b.Name, b.Description, b.Country, b.Website, id)
	if err != nil {
		return models.Brand{}, err
	}
	return s.getBrand(id)
}

func (s *OrganizerService) DeleteBrand(id string) error {
	_, err := s.db.Exec("DELETE FROM brands WHERE id = ?", id)
	return err
}

// Sizes

func (s *OrganizerService) GetAllSizes() ([]models.Size, error) {
	rows, err := s.db.Query("SELECT id, name, length_inches, ring_gauge, description, created_at, updated_at FROM sizes ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sizes []models.Size
	for rows.Next() {
		var sz models.Size
		if err := rows.Scan(&sz.ID, &sz.Name, &sz.LengthInches, &sz.RingGauge, &sz.Description, &sz.CreatedAt, &sz.UpdatedAt); err != nil {
			return nil, err
		}
		sizes = append(sizes, sz)
	}
	return sizes, rows.Err()
}

func (s *OrganizerService) getSize(id string) (models.Size, error) {
	var sz models.Size
	row := s.db.QueryRow("SELECT id, name, length_inches, ring_gauge, description, created_at, updated_at FROM sizes WHERE id = ?", id)
	err := row.Scan(&sz.ID, &sz.Name, &sz.LengthInches, &sz.RingGauge, &sz.Description, &sz.CreatedAt, &sz.UpdatedAt)
	if err == sql.ErrNoRows {
		return sz, fmt.Errorf("size with ID %s not found", id)
	}
	return sz, err
}

func (s *OrganizerService) CreateSize(sz models.Size) (models.Size, error) {
	sz.ID = uuid.New().String()
	_, err := s.db.Exec("INSERT INTO sizes(id, name, length_inches, ring_gauge, description) VALUES(?, ?, ?, ?, ?)",
		sz.ID, sz.Name, sz.LengthInches, sz.RingGauge, sz.Description)
	if err != nil {
		return models.Size{}, err
	}
	return s.getSize(sz.ID)
}

func (s *OrganizerService) UpdateSize(id string, sz models.Size) (models.Size, error) {
	_, err := s.db.Exec("UPDATE sizes SET name = ?, length_inches = ?, ring_gauge = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		sz.Name, sz.LengthInches, sz.RingGauge, sz.Description, id)
	if err != nil {
		return models.Size{}, err
	}
	return s.getSize(id)
}

func (s *OrganizerService) DeleteSize(id string) error {
	_, err := s.db.Exec("DELETE FROM sizes WHERE id = ?", id)
	return err
}

// Ring gauges. common_names is a JSON column holding a string list.

func (s *OrganizerService) GetAllRingGauges() ([]models.RingGauge, error) {
	rows, err := s.db.Query("SELECT id, gauge, description, common_names, created_at, updated_at FROM ring_gauges ORDER BY gauge")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gauges []models.RingGauge
	for rows.Next() {
		rg, err := scanRingGauge(rows)
		if err != nil {
			return nil, err
		}
		gauges = append(gauges, rg)
	}
	return gauges, rows.Err()
}

func scanRingGauge(scanner interface{ Scan(...any) error }) (models.RingGauge, error) {
	var rg models.RingGauge
	var names sql.NullString
	err := scanner.Scan(&rg.ID, &rg.Gauge, &rg.Description, &names, &rg.CreatedAt, &rg.UpdatedAt)
	if err != nil {
		return rg, err
	}
	if names.Valid && names.String != "" {
		if err := json.Unmarshal([]byte(names.String), &rg.CommonNames); err != nil {
			return rg, fmt.Errorf("decode common_names: %w", err)
		}
	}
	return rg, nil
}

func (s *OrganizerService) getRingGauge(id string) (models.RingGauge, error) {
	row := s.db.QueryRow("SELECT id, gauge, description, common_names, created_at, updated_at FROM ring_gauges WHERE id = ?", id)
	rg, err := scanRingGauge(row)
	if err == sql.ErrNoRows {
		return rg, fmt.Errorf("ring gauge with ID %s not found", id)
	}
	return rg, err
}

func (s *OrganizerService) CreateRingGauge(rg models.RingGauge) (models.RingGauge, error) {
	rg.ID = uuid.New().String()
	names, err := encodeNames(rg.CommonNames)
	if err != nil {
		return models.RingGauge{}, err
	}
	_, err = s.db.Exec("INSERT INTO ring_gauges(id, gauge, description, common_names) VALUES(?, ?, ?, ?)",
		rg.ID, rg.Gauge, rg.Description, names)
	if err != nil {
		return models.RingGauge{}, err
	}
	return s.getRingGauge(rg.ID)
}

func (s *OrganizerService) UpdateRingGauge(id string, rg models.RingGauge) (models.RingGauge, error) {
	names, err := encodeNames(rg.CommonNames)
	if err != nil {
		return models.RingGauge{}, err
	}
	_, err = s.db.Exec("UPDATE ring_gauges SET gauge = ?, description = ?, common_names = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		rg.Gauge, rg.Description, names, id)
	if err != nil {
		return models.RingGauge{}, err
	}
	return s.getRingGauge(id)
}

func (s *OrganizerService) DeleteRingGauge(id string) error {
	_, err := s.db.Exec("DELETE FROM ring_gauges WHERE id = ?", id)
	return err
}

func encodeNames(names []string) (any, error) {
	if names == nil {
		return nil, nil
	}
	b, err := json.Marshal(names)
	if err != nil {
		return nil, fmt.Errorf("encode common_names: %w", err)
	}
	return string(b), nil
}

// Strengths

func (s *OrganizerService) GetAllStrengths() ([]models.Strength, error) {
	rows, err := s.db.Query("SELECT id, name, level, description, created_at, updated_at FROM strengths ORDER BY level")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var strengths []models.Strength
	for rows.Next() {
		var st models.Strength
		if err := rows.Scan(&st.ID, &st.Name, &st.Level, &st.Description, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		strengths = append(strengths, st)
	}
	return strengths, rows.Err()
}

func (s *OrganizerService) getStrength(id string) (models.Strength, error) {
	var st models.Strength
	row := s.db.QueryRow("SELECT id, name, level, description, created_at, updated_at FROM strengths WHERE id = ?", id)
	err := row.Scan(&st.ID, &st.Name, &st.Level, &st.Description, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return st, fmt.Errorf("strength with ID %s not found", id)
	}
	return st, err
}

func (s *OrganizerService) CreateStrength(st models.Strength) (models.Strength, error) {
	st.ID = uuid.New().String()
	_, err := s.db.Exec("INSERT INTO strengths(id, name, level, description) VALUES(?, ?, ?, ?)",
		st.ID, st.Name, st.Level, st.Description)
	if err != nil {
		return models.Strength{}, err
	}
	return s.getStrength(st.ID)
}

func (s *OrganizerService) UpdateStrength(id string, st models.Strength) (models.Strength, error) {
	_, err := s.db.Exec("UPDATE strengths SET name = ?, level = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		st.Name, st.Level, st.Description, id)
	if err != nil {
		return models.Strength{}, err
	}
	return s.getStrength(id)
}

func (s *OrganizerService) DeleteStrength(id string) error {
	_, err := s.db.Exec("DELETE FROM strengths WHERE id = ?", id)
	return err
}

// Origins

func (s *OrganizerService) GetAllOrigins() ([]models.Origin, error) {
	rows, err := s.db.Query("SELECT id, name, country, region, description, created_at, updated_at FROM origins ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var origins []models.Origin
	for rows.Next() {
		var o models.Origin
		if err := rows.Scan(&o.ID, &o.Name, &o.Country, &o.Region, &o.Description, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		origins = append(origins, o)
	}
	return origins, rows.Err()
}

func (s *OrganizerService) getOrigin(id string) (models.Origin, error) {
	var o models.Origin
	row := s.db.QueryRow("SELECT id, name, country, region, description, created_at, updated_at FROM origins WHERE id = ?", id)
	err := row.Scan(&o.ID, &o.Name, &o.Country, &o.Region, &o.Description, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return o, fmt.Errorf("origin with ID %s not found", id)
	}
	return o, err
}

func (s *OrganizerService) CreateOrigin(o models.Origin) (models.Origin, error) {
	o.ID = uuid.New().String()
	_, err := s.db.Exec("INSERT INTO origins(id, name, country, region, description) VALUES(?, ?, ?, ?, ?)",
		o.ID, o.Name, o.Country, o.Region, o.Description)
	if err != nil {
		return models.Origin{}, err
	}
	return s.getOrigin(o.ID)
}

func (s *OrganizerService) UpdateOrigin(id string, o models.Origin) (models.Origin, error) {
	_, err := s.db.Exec("UPDATE origins SET name = ?, country = ?, region = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		o.Name, o.Country, o.Region, o.Description, id)
	if err != nil {
		return models.Origin{}, err
	}
	return s.getOrigin(id)
}

func (s *OrganizerService) DeleteOrigin(id string) error {
	_, err := s.db.Exec("DELETE FROM origins WHERE id = ?", id)
	return err
}
