// Package note defines the shielded note, a fixed size vector of field
// elements, and derives its commitment and nullifier.
package note

import (
	"errors"
	"fmt"

	"github.com/vocdoni/shielded-notes/balance"
	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/keys"
	"github.com/vocdoni/shielded-notes/types"
)

// Note slots.
const (
	SlotOwnerX    = 0
	SlotOwnerY    = 1
	SlotNonce     = 2
	SlotFree3     = 3
	SlotFree4     = 4
	SlotTokenType = 5
	SlotAmount    = 6
	// slots 7 to 14 are reserved
	SlotReservedStart = 7
)

// ErrOwnerMismatch is returned when the owner slots of a note do not hold
// the expected public key.
var ErrOwnerMismatch = errors.New("note owner does not match public key")

// Note is the plaintext content of a shielded note. It never leaves the
// owner, only its commitment and nullifier are published.
type Note [types.NoteSize]field.Element

// New returns a note owned by owner holding amount tokens of tokenType.
func New(owner keys.PublicKey, nonce, tokenType, amount field.Element) Note {
	var n Note
	n[SlotOwnerX] = owner.X
	n[SlotOwnerY] = owner.Y
	n[SlotNonce] = nonce
	n[SlotTokenType] = tokenType
	n[SlotAmount] = amount
	return n
}

// FromElements builds a note from its serialized slots.
func FromElements(elems []field.Element) (Note, error) {
	var n Note
	if len(elems) != len(n) {
		return n, fmt.Errorf("invalid note size %d, expected %d", len(elems), len(n))
	}
	copy(n[:], elems)
	return n, nil
}

// Owner returns the public key stored in the owner slots.
func (n Note) Owner() keys.PublicKey {
	return keys.PublicKey{X: n[SlotOwnerX], Y: n[SlotOwnerY]}
}

// Nonce returns the note nonce.
func (n Note) Nonce() field.Element {
	return n[SlotNonce]
}

// TokenType returns the token type tag.
func (n Note) TokenType() field.Element {
	return n[SlotTokenType]
}

// Amount returns the amount of tokens held by the note.
func (n Note) Amount() field.Element {
	return n[SlotAmount]
}

// IsOwnedBy reports whether the owner slots hold pk.
func (n Note) IsOwnedBy(pk keys.PublicKey) bool {
	return n.Owner().Equal(pk)
}

// Elements returns a copy of the note slots.
func (n Note) Elements() []field.Element {
	out := make([]field.Element, len(n))
	copy(out, n[:])
	return out
}

// Validate checks the note amount is a positive integer of at most maxBits
// bits.
func (n Note) Validate(maxBits int) error {
	return balance.CheckAmount(n.Amount(), maxBits)
}
