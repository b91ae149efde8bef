package models

import "time"

// Cigar represents one cigar entry inside a humidor. The organizer columns
// (brand, size, strength, origin, ring gauge) are foreign keys into the
// reference tables.
type Cigar struct {
	ID           string     `json:"id"`
	HumidorID    string     `json:"humidorId"`
	BrandID      *string    `json:"brandId"`
	Name         string     `json:"name"`
	SizeID       *string    `json:"sizeId"`
	StrengthID   *string    `json:"strengthId"`
	OriginID     *string    `json:"originId"`
	Wrapper      *string    `json:"wrapper"`
	Binder       *string    `json:"binder"`
	Filler       *string    `json:"filler"`
	Price        *float64   `json:"price"`
	PurchaseDate *time.Time `json:"purchaseDate"`
	Notes        *string    `json:"notes"`
	Quantity     int        `json:"quantity"`
	RingGaugeID  *string    `json:"ringGaugeId"`
	Length       *float64   `json:"length"`
	ImageURL     *string    `json:"imageUrl"`
	RetailLink   *string    `json:"retailLink"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Favorite marks a cigar as a favorite of a user.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CigarID   string    `json:"cigarId"`
	CreatedAt time.Time `json:"createdAt"`
}

// WishListItem is a cigar a user wants to acquire.
type WishListItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CigarID   string    `json:"cigarId"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}
