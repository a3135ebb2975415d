package wager

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identity is an authenticated participant identity.
//
// The engine never verifies signatures. Whatever the host hands over is
// trusted, provided it is present.
type Identity string

// NewIdentity normalizes s to Unicode NFC and trims surrounding whitespace.
// Visually identical identities must produce identical draw inputs.
func NewIdentity(s string) Identity {
	return Identity(norm.NFC.String(strings.TrimSpace(s)))
}

// Bytes returns the identity's contribution to the draw input.
func (id Identity) Bytes() []byte {
	return []byte(norm.NFC.String(string(id)))
}

// Valid reports whether the identity is present.
func (id Identity) Valid() bool {
	return id != ""
}

func (id Identity) String() string {
	return string(id)
}
