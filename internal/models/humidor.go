package models

import "time"

// Humidor represents one storage box owned by a user.
type Humidor struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	Capacity       *int      `json:"capacity"`
	TargetHumidity *int      `json:"targetHumidity"`
	Location       *string   `json:"location"`
	ImageURL       *string   `json:"imageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Populated for humidors reached through a share, empty otherwise.
	PermissionLevel PermissionLevel `json:"permissionLevel,omitempty"`
}
