package models

import (
	"fmt"
	"time"
)

// PermissionLevel controls what a user can do with a humidor shared with them.
type PermissionLevel string

const (
	// PermissionView grants read-only access.
	PermissionView PermissionLevel = "view"
	// PermissionEdit additionally grants adding and editing cigars.
	PermissionEdit PermissionLevel = "edit"
	// PermissionFull additionally grants deleting cigars and managing shares.
	PermissionFull PermissionLevel = "full"
)

// ParsePermissionLevel validates a permission level string.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch PermissionLevel(s) {
	case PermissionView, PermissionEdit, PermissionFull:
		return PermissionLevel(s), nil
	}
	return "", fmt.Errorf("invalid permission level %q", s)
}

// CanEdit reports whether the level allows adding and editing cigars.
func (p PermissionLevel) CanEdit() bool {
	return p == PermissionEdit || p == PermissionFull
}

// CanManage reports whether the level allows deletion and share management.
func (p PermissionLevel) CanManage() bool {
	return p == PermissionFull
}

// HumidorShare grants one user access to another user's humidor.
type HumidorShare struct {
	ID               string          `json:"id"`
	HumidorID        string          `json:"humidorId"`
	SharedWithUserID string          `json:"sharedWithUserId"`
	SharedByUserID   string          `json:"sharedByUserId"`
	PermissionLevel  PermissionLevel `json:"permissionLevel"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
