package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base is the common identity and audit pair. Nothing in this domain
// soft-deletes: payments and bookings are history, not state to erase.
type Base struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BaseSimple is for append-only rows that are never updated in place.
type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
