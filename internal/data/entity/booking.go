package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	Base
	ListingID  uuid.UUID     `db:"listing_id"`
	GuestID    uuid.UUID     `db:"guest_id"`
	CheckIn    time.Time     `db:"check_in"`
	CheckOut   time.Time     `db:"check_out"`
	TotalPrice float64       `db:"total_price"`
	Status     BookingStatus `db:"status"`
}
