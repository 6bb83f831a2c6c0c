package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GenerateTxRef builds the provider-facing transaction reference for a
// payment attempt. The booking ID keeps the reference traceable by hand;
// the 4-byte random suffix keeps concurrent attempts from colliding.
// Output only uses [a-z0-9_-], which the provider accepts in tx_ref.
func GenerateTxRef(bookingID uuid.UUID) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)

	return fmt.Sprintf("booking_%s_%s", bookingID.String(), hex.EncodeToString(suffix))
}
