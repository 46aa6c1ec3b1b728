// Package pipeline composes the note scheme, the Merkle verifier, the
// balance checker and the audit encryption into the two user facing
// operations: Mint and Transfer. Both are pure functions of their witness,
// they either return every public output or fail without side effects.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/vocdoni/shielded-notes/config"
	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/keys"
	"github.com/vocdoni/shielded-notes/note"
)

var (
	// ErrInvalidOwnership is returned when a private key does not derive the
	// owner public key of the note it spends.
	ErrInvalidOwnership = errors.New("private key does not own the note")
	// ErrMerkleProofFailed is returned when an input commitment is not
	// included in the tree with the supplied root.
	ErrMerkleProofFailed = errors.New("merkle inclusion proof failed")
	// ErrMalformedWitness is returned for witnesses with a wrong shape.
	ErrMalformedWitness = errors.New("malformed witness")
	// ErrDuplicateNullifier is returned when two inputs spend the same note.
	ErrDuplicateNullifier = errors.New("duplicated nullifier")
	// ErrRecipientMismatch is returned when an output note is not owned by
	// its declared recipient.
	ErrRecipientMismatch = errors.New("output note not owned by recipient")
)

// Pipeline runs mints and transfers with a fixed set of parameters. It holds
// no mutable state and is safe for concurrent use.
type Pipeline struct {
	params *config.Params
	keys   *keys.Deriver
	scheme *note.Scheme
}

// New validates the parameters and returns a Pipeline bound to them.
func New(params *config.Params) (*Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	deriver, err := keys.NewDeriver(params.CurveType)
	if err != nil {
		return nil, err
	}
	scheme, err := note.NewScheme(params.CommitmentVersion)
	if err != nil {
		return nil, err
	}
	return &Pipeline{params: params, keys: deriver, scheme: scheme}, nil
}

// Params returns the parameters of the pipeline.
func (p *Pipeline) Params() *config.Params {
	return p.params
}

// Keys returns the key deriver of the pipeline.
func (p *Pipeline) Keys() *keys.Deriver {
	return p.keys
}

// Scheme returns the note scheme of the pipeline.
func (p *Pipeline) Scheme() *note.Scheme {
	return p.scheme
}

// checkOwnership verifies the private key of kp derives both the declared
// public key and the owner of n.
func (p *Pipeline) checkOwnership(n note.Note, kp keys.KeyPair) error {
	pk, err := p.keys.PublicKey(kp.PrivateKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOwnership, err)
	}
	if !pk.Equal(kp.PublicKey) {
		return fmt.Errorf("%w: %v", ErrInvalidOwnership, keys.ErrKeyMismatch)
	}
	if !n.IsOwnedBy(pk) {
		return fmt.Errorf("%w: %v", ErrInvalidOwnership, note.ErrOwnerMismatch)
	}
	return nil
}

func randomIfNil(e *field.Element) (field.Element, error) {
	if e != nil {
		return *e, nil
	}
	return field.Random()
}
