package circuits

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/shielded-notes/config"
	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/merkle"
	"github.com/vocdoni/shielded-notes/note"
	"github.com/vocdoni/shielded-notes/pipeline"
)

func transferWitness(c *qt.C, inAmount, outAmount uint64) (*pipeline.Pipeline, *pipeline.TransferWitness) {
	p, err := pipeline.New(config.Default())
	c.Assert(err, qt.IsNil)
	alice, err := p.Keys().Generate()
	c.Assert(err, qt.IsNil)
	bob, err := p.Keys().Generate()
	c.Assert(err, qt.IsNil)

	amount := field.FromUint64(inAmount)
	minted, err := p.Mint(&pipeline.MintWitness{Amount: amount, Owner: &alice})
	c.Assert(err, qt.IsNil)
	tree, err := merkle.NewTree(p.Params().TreeDepth)
	c.Assert(err, qt.IsNil)
	idx, err := tree.Add(minted.Commitment)
	c.Assert(err, qt.IsNil)
	proof, err := tree.GenProof(idx)
	c.Assert(err, qt.IsNil)

	return p, &pipeline.TransferWitness{
		Inputs: []pipeline.TransferInput{{
			Note:     minted.Note,
			Owner:    alice,
			Siblings: proof.Siblings,
			PathBits: proof.PathBits,
		}},
		Outputs: []pipeline.TransferOutput{{
			Note: note.New(bob.PublicKey, field.FromUint64(1),
				minted.Note.TokenType(), field.FromUint64(outAmount)),
			Recipient:  bob.PublicKey,
			AuditNonce: field.FromUint64(2),
		}},
		MerkleRoot: tree.Root(),
		Authority:  bob.PublicKey,
	}
}

func TestTransferAssignments(t *testing.T) {
	c := qt.New(t)
	p, w := transferWitness(c, 1000, 1000)
	_, err := p.Transfer(w)
	c.Assert(err, qt.IsNil)

	ta, err := NewTransferAssignments(w, p.Params().AmountBits)
	c.Assert(err, qt.IsNil)
	c.Assert(ta.Ownership, qt.HasLen, 1)
	c.Assert(test.IsSolved(ta.BalancePlaceholder(), ta.Balance, ecc.BN254.ScalarField()), qt.IsNil)
	c.Assert(test.IsSolved(&OwnershipCircuit{}, ta.Ownership[0], ecc.BN254.ScalarField()), qt.IsNil)
}

func TestTransferAssignmentsUnbalanced(t *testing.T) {
	c := qt.New(t)
	p, w := transferWitness(c, 1000, 2000)
	_, err := p.Transfer(w)
	c.Assert(err, qt.Not(qt.IsNil))

	ta, err := NewTransferAssignments(w, p.Params().AmountBits)
	c.Assert(err, qt.IsNil)
	c.Assert(test.IsSolved(ta.BalancePlaceholder(), ta.Balance, ecc.BN254.ScalarField()), qt.Not(qt.IsNil))
}

func TestTransferAssignmentsTokenType(t *testing.T) {
	c := qt.New(t)
	p, w := transferWitness(c, 1000, 1000)
	w.Outputs[0].Note[note.SlotTokenType] = field.FromUint64(7)
	_, err := NewTransferAssignments(w, p.Params().AmountBits)
	c.Assert(err, qt.ErrorMatches, "output 0: token type .*")

	_, err = NewTransferAssignments(nil, p.Params().AmountBits)
	c.Assert(err, qt.ErrorIs, pipeline.ErrMalformedWitness)
}
