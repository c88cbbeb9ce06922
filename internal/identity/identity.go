// Package identity provides anonymous identifier hashing for contacts.
//
// Every chatbot entity except the alert subscriber list keys users by a
// salted SHA-256 digest of the phone number. The raw number never reaches
// the users, sessions or events tables.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPhoneNumber derives the stable anonymous identifier for a phone
// number. The salt is fixed per deployment; changing it orphans every
// existing user row.
func HashPhoneNumber(phoneNumber, salt string) string {
	sum := sha256.Sum256(append([]byte(salt), []byte(phoneNumber)...))
	return hex.EncodeToString(sum[:])
}
