package note

import (
	"errors"
	"fmt"

	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/hash/poseidon"
	"github.com/vocdoni/shielded-notes/crypto/keys"
)

// ErrUnsupportedVersion is returned for unknown commitment layouts.
var ErrUnsupportedVersion = errors.New("unsupported commitment version")

// Scheme derives commitments and nullifiers for one commitment layout.
//
// Version 1 commits to the owner slots, the nonce, the free slots, the token
// type and the amount (slots 0 to 6) followed by the owner public key
// coordinates, 9 elements in total. The reserved slots are not committed.
type Scheme struct {
	version int
}

// NewScheme returns the scheme of the given commitment version.
func NewScheme(version int) (*Scheme, error) {
	switch version {
	case 1:
		return &Scheme{version: version}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
}

// Version returns the commitment layout version.
func (s *Scheme) Version() int {
	return s.version
}

// CommitmentInputs returns the list of elements hashed into the commitment.
func (s *Scheme) CommitmentInputs(n Note, owner keys.PublicKey) []field.Element {
	inputs := make([]field.Element, 0, SlotReservedStart+2)
	inputs = append(inputs, n[:SlotReservedStart]...)
	return append(inputs, owner.X, owner.Y)
}

// Commitment returns the binding digest of the note and its owner key. It
// fails with ErrOwnerMismatch if the note owner slots hold a different key.
func (s *Scheme) Commitment(n Note, owner keys.PublicKey) (field.Element, error) {
	if !n.IsOwnedBy(owner) {
		return field.Element{}, ErrOwnerMismatch
	}
	return poseidon.Hash(s.CommitmentInputs(n, owner)...)
}

// Nullifier returns the spend tag of a commitment. Only the holder of the
// owner private key can compute it.
func (s *Scheme) Nullifier(commitment, privateKey field.Element) (field.Element, error) {
	return poseidon.Hash(commitment, privateKey)
}
