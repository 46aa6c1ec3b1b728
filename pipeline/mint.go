package pipeline

import (
	"fmt"

	"github.com/vocdoni/shielded-notes/balance"
	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/keys"
	"github.com/vocdoni/shielded-notes/log"
	"github.com/vocdoni/shielded-notes/note"
)

// MintWitness holds the inputs of a mint. Only Amount is mandatory: a nil
// TokenType takes the configured default, a nil Owner or Nonce is generated.
type MintWitness struct {
	Amount    field.Element  `json:"amount"`
	TokenType *field.Element `json:"tokenType,omitempty"`
	Owner     *keys.KeyPair  `json:"owner,omitempty"`
	Nonce     *field.Element `json:"nonce,omitempty"`
}

// MintResult holds the public outputs of a mint together with the private
// note and keys the caller must keep to spend it later.
type MintResult struct {
	Commitment field.Element `json:"commitment"`
	Nullifier  field.Element `json:"nullifier"`
	Note       note.Note     `json:"note"`
	Owner      keys.KeyPair  `json:"owner"`
}

// Mint creates a new note holding w.Amount tokens. With a fixed owner and
// nonce the result is deterministic.
func (p *Pipeline) Mint(w *MintWitness) (*MintResult, error) {
	res, err := p.mint(w)
	if err != nil {
		log.Debugw("mint rejected", "error", err.Error())
		return nil, err
	}
	log.Debugw("mint accepted", "commitment", res.Commitment.String())
	return res, nil
}

func (p *Pipeline) mint(w *MintWitness) (*MintResult, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil mint witness", ErrMalformedWitness)
	}
	if err := balance.CheckAmount(w.Amount, p.params.AmountBits); err != nil {
		return nil, err
	}
	tokenType := field.FromUint64(p.params.DefaultTokenType)
	if w.TokenType != nil {
		tokenType = *w.TokenType
	}

	var owner keys.KeyPair
	var err error
	if w.Owner != nil {
		if err := p.keys.Validate(*w.Owner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOwnership, err)
		}
		owner = *w.Owner
	} else if owner, err = p.keys.Generate(); err != nil {
		return nil, err
	}
	nonce, err := randomIfNil(w.Nonce)
	if err != nil {
		return nil, err
	}

	n := note.New(owner.PublicKey, nonce, tokenType, w.Amount)
	commitment, err := p.scheme.Commitment(n, owner.PublicKey)
	if err != nil {
		return nil, err
	}
	nullifier, err := p.scheme.Nullifier(commitment, owner.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &MintResult{
		Commitment: commitment,
		Nullifier:  nullifier,
		Note:       n,
		Owner:      owner,
	}, nil
}
