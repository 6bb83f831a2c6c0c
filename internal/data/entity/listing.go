package entity

import (
	"github.com/google/uuid"
)

type Listing struct {
	Base
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Location      string    `db:"location"`
	PricePerNight float64   `db:"price_per_night"`
	HostID        uuid.UUID `db:"host_id"`
}
