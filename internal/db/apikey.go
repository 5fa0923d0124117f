package db

import (
	"time"
)

// APIKey binds a bearer token to the source it may submit events for.
// Records are provisioned outside this service and only read here.
type APIKey struct {
	// Key is the bearer token value (stored as-is).
	Key string `gorm:"primaryKey;size:255"`

	// Src is the source identifier this key authorizes. An empty value
	// authorizes nothing.
	Src string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
