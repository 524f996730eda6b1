// Package id mints identifiers for sessions, events, and delivery attempts.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Generator produces opaque unique identifiers. Callers treat them as
// plain strings and never assume ordering or structure.
type Generator interface {
	New() string
}

// Hex128 draws 128 bits from crypto/rand and encodes them as 32 hex digits.
type Hex128 struct{}

func (Hex128) New() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
