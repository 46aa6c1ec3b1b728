package circom

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/shielded-notes/balance"
	"github.com/vocdoni/shielded-notes/config"
	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/keys"
	"github.com/vocdoni/shielded-notes/merkle"
	"github.com/vocdoni/shielded-notes/note"
	"github.com/vocdoni/shielded-notes/pipeline"
)

func testWitness(c *qt.C) (*pipeline.Pipeline, *pipeline.TransferWitness) {
	p, err := pipeline.New(config.Default())
	c.Assert(err, qt.IsNil)
	alice, err := p.Keys().FromPrivate(field.FromUint64(11))
	c.Assert(err, qt.IsNil)
	bob, err := p.Keys().FromPrivate(field.FromUint64(22))
	c.Assert(err, qt.IsNil)
	authority, err := p.Keys().FromPrivate(field.FromUint64(33))
	c.Assert(err, qt.IsNil)

	tree, err := merkle.NewTree(p.Params().TreeDepth)
	c.Assert(err, qt.IsNil)
	var inputs []pipeline.TransferInput
	for i, amount := range []uint64{600, 400} {
		nonce := field.FromUint64(uint64(i + 1))
		minted, err := p.Mint(&pipeline.MintWitness{Amount: field.FromUint64(amount), Owner: &alice, Nonce: &nonce})
		c.Assert(err, qt.IsNil)
		// pad the tree so the second note is not the leftmost leaf
		_, err = tree.Add(field.FromUint64(uint64(100 + i)))
		c.Assert(err, qt.IsNil)
		_, err = tree.Add(minted.Commitment)
		c.Assert(err, qt.IsNil)
		inputs = append(inputs, pipeline.TransferInput{Note: minted.Note, Owner: alice})
	}
	// proofs against the final root
	for i := range inputs {
		proof, err := tree.GenProof(uint64(2*i + 1))
		c.Assert(err, qt.IsNil)
		inputs[i].Siblings = proof.Siblings
		inputs[i].PathBits = proof.PathBits
	}
	tokenType := field.FromUint64(p.Params().DefaultTokenType)
	return p, &pipeline.TransferWitness{
		Inputs: inputs,
		Outputs: []pipeline.TransferOutput{{
			Note:       note.New(bob.PublicKey, field.FromUint64(9), tokenType, field.FromUint64(1000)),
			Recipient:  bob.PublicKey,
			AuditNonce: field.FromUint64(77),
		}},
		MerkleRoot: tree.Root(),
		Authority:  authority.PublicKey,
	}
}

func TestTransferInputsRoundTrip(t *testing.T) {
	c := qt.New(t)
	p, w := testWitness(c)
	want, err := p.Transfer(w)
	c.Assert(err, qt.IsNil)

	ti, err := NewTransferInputs(w)
	c.Assert(err, qt.IsNil)
	data, err := ti.Marshal()
	c.Assert(err, qt.IsNil)

	// the document uses the circuit signal names
	var doc map[string]json.RawMessage
	c.Assert(json.Unmarshal(data, &doc), qt.IsNil)
	for _, key := range []string{
		"msgInputs", "privKeyInput", "tokenOutputs", "pubKeyOutputs",
		"siblingsArray", "pathIndices", "merkleRoot", "pubKeyAuthority", "auditNonces",
	} {
		c.Assert(doc[key], qt.Not(qt.HasLen), 0, qt.Commentf("missing %s", key))
	}

	parsed, err := ParseTransferInputs(data)
	c.Assert(err, qt.IsNil)
	w2, err := parsed.Witness(p.Keys())
	c.Assert(err, qt.IsNil)
	got, err := p.Transfer(w2)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Nullifiers, qt.DeepEquals, want.Nullifiers)
	c.Assert(got.Commitments, qt.DeepEquals, want.Commitments)
}

func TestTransferInputsDefaultPath(t *testing.T) {
	c := qt.New(t)
	p, err := pipeline.New(config.Default())
	c.Assert(err, qt.IsNil)
	kp, err := p.Keys().FromPrivate(field.FromUint64(5))
	c.Assert(err, qt.IsNil)
	minted, err := p.Mint(&pipeline.MintWitness{Amount: field.FromUint64(10), Owner: &kp})
	c.Assert(err, qt.IsNil)
	tree, err := merkle.NewTree(p.Params().TreeDepth)
	c.Assert(err, qt.IsNil)
	_, err = tree.Add(minted.Commitment)
	c.Assert(err, qt.IsNil)
	proof, err := tree.GenProof(0)
	c.Assert(err, qt.IsNil)

	ti := &TransferInputs{
		MsgInputs:       [][]field.Element{minted.Note.Elements()},
		PrivKeyInput:    kp.PrivateKey,
		TokenOutputs:    [][]field.Element{minted.Note.Elements()},
		PubKeyOutputs:   [][2]field.Element{{kp.PublicKey.X, kp.PublicKey.Y}},
		SiblingsArray:   [][]field.Element{proof.Siblings},
		MerkleRoot:      tree.Root(),
		PubKeyAuthority: [2]field.Element{kp.PublicKey.X, kp.PublicKey.Y},
		AuditNonces:     []field.Element{field.FromUint64(1)},
	}
	w, err := ti.Witness(p.Keys())
	c.Assert(err, qt.IsNil)
	c.Assert(w.Inputs[0].PathBits, qt.HasLen, p.Params().TreeDepth)
	_, err = p.Transfer(w)
	c.Assert(err, qt.IsNil)
}

func TestTransferInputsErrors(t *testing.T) {
	c := qt.New(t)
	p, w := testWitness(c)

	c.Run("different keys", func(c *qt.C) {
		other, err := p.Keys().FromPrivate(field.FromUint64(12))
		c.Assert(err, qt.IsNil)
		w2 := *w
		w2.Inputs = append([]pipeline.TransferInput{}, w.Inputs...)
		w2.Inputs[1].Owner = other
		_, err = NewTransferInputs(&w2)
		c.Assert(err, qt.ErrorIs, ErrMultipleKeys)
	})

	c.Run("shape mismatch", func(c *qt.C) {
		ti, err := NewTransferInputs(w)
		c.Assert(err, qt.IsNil)
		ti.AuditNonces = nil
		_, err = ti.Witness(p.Keys())
		c.Assert(err, qt.ErrorIs, pipeline.ErrMalformedWitness)

		ti, err = NewTransferInputs(w)
		c.Assert(err, qt.IsNil)
		ti.SiblingsArray = ti.SiblingsArray[:1]
		_, err = ti.Witness(p.Keys())
		c.Assert(err, qt.ErrorIs, pipeline.ErrMalformedWitness)

		ti, err = NewTransferInputs(w)
		c.Assert(err, qt.IsNil)
		ti.MsgInputs[0] = ti.MsgInputs[0][:7]
		_, err = ti.Witness(p.Keys())
		c.Assert(err, qt.ErrorIs, pipeline.ErrMalformedWitness)
	})

	c.Run("zero private key", func(c *qt.C) {
		ti, err := NewTransferInputs(w)
		c.Assert(err, qt.IsNil)
		ti.PrivKeyInput = field.Zero()
		_, err = ti.Witness(p.Keys())
		c.Assert(err, qt.ErrorIs, pipeline.ErrInvalidOwnership)
		c.Assert(err, qt.ErrorMatches, ".*"+keys.ErrInvalidPrivateKey.Error())
	})

	c.Run("bad json", func(c *qt.C) {
		_, err := ParseTransferInputs([]byte(`{"merkleRoot": "0xzz"}`))
		c.Assert(err, qt.ErrorIs, pipeline.ErrMalformedWitness)
		_, err = ParseTransferInputs([]byte(`{"merkleRoot": "-1"}`))
		c.Assert(err, qt.ErrorIs, pipeline.ErrMalformedWitness)
	})
}

func TestMintInputs(t *testing.T) {
	c := qt.New(t)
	p, err := pipeline.New(config.Default())
	c.Assert(err, qt.IsNil)

	mi, err := ParseMintInputs([]byte(`{"amountR": "1000", "privKey": "1234", "nonce": 5}`))
	c.Assert(err, qt.IsNil)
	w, err := mi.Witness(p.Keys())
	c.Assert(err, qt.IsNil)
	a, err := p.Mint(w)
	c.Assert(err, qt.IsNil)
	b, err := p.Mint(w)
	c.Assert(err, qt.IsNil)
	c.Assert(a.Commitment, qt.DeepEquals, b.Commitment)
	c.Assert(a.Note.Amount(), qt.DeepEquals, field.FromUint64(1000))

	mi, err = ParseMintInputs([]byte(`{"amountR": "0"}`))
	c.Assert(err, qt.IsNil)
	w, err = mi.Witness(p.Keys())
	c.Assert(err, qt.IsNil)
	_, err = p.Mint(w)
	c.Assert(err, qt.ErrorIs, balance.ErrZeroOrNegativeAmount)
}

func TestMintInputsAmount(t *testing.T) {
	c := qt.New(t)
	mi, err := ParseMintInputs([]byte(`{"amountR": 7}`))
	c.Assert(err, qt.IsNil)
	c.Assert(mi.AmountR.Equal(field.FromUint64(7)), qt.IsTrue)

	mi, err = ParseMintInputs([]byte(`{"amountR": "0x10", "tokenType": "3"}`))
	c.Assert(err, qt.IsNil)
	c.Assert(mi.AmountR.Equal(field.FromUint64(16)), qt.IsTrue)
	c.Assert(mi.TokenType, qt.Not(qt.IsNil))
	c.Assert(mi.TokenType.Equal(field.FromUint64(3)), qt.IsTrue)

	_, err = ParseMintInputs([]byte(`{"amountR": "-5"}`))
	c.Assert(err, qt.ErrorIs, pipeline.ErrMalformedWitness)
	c.Assert(err, qt.ErrorIs, balance.ErrZeroOrNegativeAmount)
	_, err = ParseMintInputs([]byte(`{"amountR": -5}`))
	c.Assert(err, qt.ErrorIs, balance.ErrZeroOrNegativeAmount)
	_, err = ParseMintInputs([]byte(`{"nonce": "1"}`))
	c.Assert(err, qt.ErrorIs, field.ErrMalformed)
	_, err = ParseMintInputs([]byte(`{"amountR": "ten"}`))
	c.Assert(err, qt.ErrorIs, field.ErrMalformed)
}
