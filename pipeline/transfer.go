package pipeline

import (
	"fmt"

	"github.com/vocdoni/shielded-notes/balance"
	"github.com/vocdoni/shielded-notes/crypto/audit"
	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/keys"
	"github.com/vocdoni/shielded-notes/log"
	"github.com/vocdoni/shielded-notes/merkle"
	"github.com/vocdoni/shielded-notes/note"
)

// TransferInput is a note being spent, the keys that own it and its
// membership path in the commitment tree.
type TransferInput struct {
	Note     note.Note       `json:"note"`
	Owner    keys.KeyPair    `json:"owner"`
	Siblings []field.Element `json:"siblings"`
	PathBits []field.Element `json:"pathBits"`
}

// TransferOutput is a note being created for Recipient. AuditNonce must be
// fresh, it keys the audit ciphertext of this output.
type TransferOutput struct {
	Note       note.Note      `json:"note"`
	Recipient  keys.PublicKey `json:"recipient"`
	AuditNonce field.Element  `json:"auditNonce"`
}

// TransferWitness holds every value needed to check a transfer. It is
// consumed by a single Transfer call.
type TransferWitness struct {
	Inputs     []TransferInput  `json:"inputs"`
	Outputs    []TransferOutput `json:"outputs"`
	MerkleRoot field.Element    `json:"merkleRoot"`
	Authority  keys.PublicKey   `json:"authority"`
}

// TransferResult holds the public outputs of a transfer: the nullifiers to
// check against the spent set, the commitments to append to the tree and
// one audit ciphertext per output.
type TransferResult struct {
	Nullifiers  []field.Element `json:"nullifiers"`
	Commitments []field.Element `json:"commitments"`
	Audit       []*audit.Vector `json:"audit"`
}

// AuditPayload returns the elements disclosed to the authority for an
// output: recipient key, token type, amount and note nonce.
func AuditPayload(out TransferOutput) []field.Element {
	return []field.Element{
		out.Recipient.X,
		out.Recipient.Y,
		out.Note.TokenType(),
		out.Note.Amount(),
		out.Note.Nonce(),
	}
}

// Transfer checks the witness and computes the public outputs. The checks
// run in a fixed order and stop at the first failure:
//
//  1. per input: commitment, ownership, Merkle inclusion and nullifier
//  2. balance of the amounts, per token type
//  3. per output: recipient and commitment
//  4. audit encryption of every output to the authority
//
// Errors raised for an input or output are prefixed with its index.
func (p *Pipeline) Transfer(w *TransferWitness) (*TransferResult, error) {
	res, err := p.transfer(w)
	if err != nil {
		log.Debugw("transfer rejected", "error", err.Error())
		return nil, err
	}
	log.Debugw("transfer accepted",
		"nullifiers", len(res.Nullifiers),
		"commitments", len(res.Commitments),
		"root", w.MerkleRoot.String())
	return res, nil
}

func (p *Pipeline) transfer(w *TransferWitness) (*TransferResult, error) {
	if err := checkShape(w); err != nil {
		return nil, err
	}
	res := &TransferResult{
		Nullifiers:  make([]field.Element, len(w.Inputs)),
		Commitments: make([]field.Element, len(w.Outputs)),
		Audit:       make([]*audit.Vector, len(w.Outputs)),
	}

	// 1. inputs
	seen := make(map[field.Element]int, len(w.Inputs))
	for i, in := range w.Inputs {
		nullifier, err := p.spend(in, w.MerkleRoot)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		if j, ok := seen[nullifier]; ok {
			return nil, fmt.Errorf("input %d: %w with input %d", i, ErrDuplicateNullifier, j)
		}
		seen[nullifier] = i
		res.Nullifiers[i] = nullifier
	}

	// 2. balance
	inputs := make([]balance.Entry, len(w.Inputs))
	for i, in := range w.Inputs {
		inputs[i] = balance.Entry{TokenType: in.Note.TokenType(), Amount: in.Note.Amount()}
	}
	outputs := make([]balance.Entry, len(w.Outputs))
	for i, out := range w.Outputs {
		outputs[i] = balance.Entry{TokenType: out.Note.TokenType(), Amount: out.Note.Amount()}
	}
	if err := balance.CheckByToken(inputs, outputs, p.params.AmountBits); err != nil {
		return nil, err
	}

	// 3. outputs
	for i, out := range w.Outputs {
		if !out.Note.IsOwnedBy(out.Recipient) {
			return nil, fmt.Errorf("output %d: %w", i, ErrRecipientMismatch)
		}
		commitment, err := p.scheme.Commitment(out.Note, out.Recipient)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		res.Commitments[i] = commitment
	}

	// 4. audit
	nonces := make([]field.Element, len(w.Outputs))
	for i, out := range w.Outputs {
		nonces[i] = out.AuditNonce
	}
	if err := audit.CheckNonces(nonces); err != nil {
		return nil, err
	}
	for i, out := range w.Outputs {
		v, err := audit.EncryptVector(AuditPayload(out), w.Authority, out.AuditNonce)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		res.Audit[i] = v
	}
	return res, nil
}

// spend runs the checks of a single input and returns its nullifier.
func (p *Pipeline) spend(in TransferInput, root field.Element) (field.Element, error) {
	commitment, err := p.scheme.Commitment(in.Note, in.Note.Owner())
	if err != nil {
		return field.Element{}, err
	}
	if err := p.checkOwnership(in.Note, in.Owner); err != nil {
		return field.Element{}, err
	}
	ok, err := merkle.Verify(commitment, in.Siblings, in.PathBits, root, p.params.TreeDepth)
	if err != nil {
		return field.Element{}, err
	}
	if !ok {
		return field.Element{}, fmt.Errorf("%w: %w", ErrMerkleProofFailed, merkle.ErrProofFailed)
	}
	return p.scheme.Nullifier(commitment, in.Owner.PrivateKey)
}

func checkShape(w *TransferWitness) error {
	switch {
	case w == nil:
		return fmt.Errorf("%w: nil transfer witness", ErrMalformedWitness)
	case len(w.Inputs) == 0:
		return fmt.Errorf("%w: no inputs", ErrMalformedWitness)
	case len(w.Outputs) == 0:
		return fmt.Errorf("%w: no outputs", ErrMalformedWitness)
	}
	return nil
}
