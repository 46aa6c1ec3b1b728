// Package circom converts between the pipeline witnesses and the JSON input
// documents of the circom transfer and mint circuits, which use their own
// signal names and flatten notes and keys into arrays.
package circom

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vocdoni/shielded-notes/balance"
	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/keys"
	"github.com/vocdoni/shielded-notes/note"
	"github.com/vocdoni/shielded-notes/pipeline"
)

// ErrMultipleKeys is returned when a transfer spends notes of different
// owners, the circuit takes a single private key for every input.
var ErrMultipleKeys = errors.New("inputs spent with different private keys")

// TransferInputs is the input document of the transfer circuit.
type TransferInputs struct {
	MsgInputs       [][]field.Element  `json:"msgInputs"`
	PrivKeyInput    field.Element      `json:"privKeyInput"`
	TokenOutputs    [][]field.Element  `json:"tokenOutputs"`
	PubKeyOutputs   [][2]field.Element `json:"pubKeyOutputs"`
	SiblingsArray   [][]field.Element  `json:"siblingsArray"`
	PathIndices     [][]field.Element  `json:"pathIndices,omitempty"`
	MerkleRoot      field.Element      `json:"merkleRoot"`
	PubKeyAuthority [2]field.Element   `json:"pubKeyAuthority"`
	AuditNonces     []field.Element    `json:"auditNonces"`
}

// MintInputs is the input document of the mint circuit. Only the amount is
// a circuit signal, the other fields fix the values the pipeline would
// otherwise pick.
type MintInputs struct {
	AmountR   field.Element  `json:"amountR"`
	TokenType *field.Element `json:"tokenType,omitempty"`
	PrivKey   *field.Element `json:"privKey,omitempty"`
	Nonce     *field.Element `json:"nonce,omitempty"`
}

// UnmarshalJSON decodes the document, reading amountR as an external amount
// so negative values are reported as balance.ErrZeroOrNegativeAmount.
func (mi *MintInputs) UnmarshalJSON(data []byte) error {
	type mintInputs MintInputs
	aux := struct {
		AmountR json.RawMessage `json:"amountR"`
		*mintInputs
	}{mintInputs: (*mintInputs)(mi)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.AmountR) == 0 {
		return fmt.Errorf("%w: missing amountR", field.ErrMalformed)
	}
	raw := string(bytes.TrimSpace(aux.AmountR))
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(aux.AmountR, &raw); err != nil {
			return err
		}
	}
	amount, err := balance.ParseAmount(raw)
	if err != nil {
		return err
	}
	mi.AmountR = amount
	return nil
}

// NewTransferInputs flattens w into the circuit input document.
func NewTransferInputs(w *pipeline.TransferWitness) (*TransferInputs, error) {
	if w == nil || len(w.Inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs", pipeline.ErrMalformedWitness)
	}
	ti := &TransferInputs{
		PrivKeyInput:    w.Inputs[0].Owner.PrivateKey,
		MerkleRoot:      w.MerkleRoot,
		PubKeyAuthority: pair(w.Authority),
	}
	for i, in := range w.Inputs {
		if !in.Owner.PrivateKey.Equal(ti.PrivKeyInput) {
			return nil, fmt.Errorf("input %d: %w", i, ErrMultipleKeys)
		}
		ti.MsgInputs = append(ti.MsgInputs, in.Note.Elements())
		ti.SiblingsArray = append(ti.SiblingsArray, in.Siblings)
		ti.PathIndices = append(ti.PathIndices, in.PathBits)
	}
	for _, out := range w.Outputs {
		ti.TokenOutputs = append(ti.TokenOutputs, out.Note.Elements())
		ti.PubKeyOutputs = append(ti.PubKeyOutputs, pair(out.Recipient))
		ti.AuditNonces = append(ti.AuditNonces, out.AuditNonce)
	}
	return ti, nil
}

// ParseTransferInputs decodes a JSON transfer input document.
func ParseTransferInputs(data []byte) (*TransferInputs, error) {
	ti := &TransferInputs{}
	if err := json.Unmarshal(data, ti); err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrMalformedWitness, err)
	}
	return ti, nil
}

// Marshal encodes the document as JSON.
func (ti *TransferInputs) Marshal() ([]byte, error) {
	return json.Marshal(ti)
}

// Witness rebuilds the pipeline witness, deriving the public key of the
// spender with d. Missing path indices default to the leftmost path.
func (ti *TransferInputs) Witness(d *keys.Deriver) (*pipeline.TransferWitness, error) {
	switch {
	case len(ti.SiblingsArray) != len(ti.MsgInputs):
		return nil, fmt.Errorf("%w: %d inputs with %d merkle paths",
			pipeline.ErrMalformedWitness, len(ti.MsgInputs), len(ti.SiblingsArray))
	case len(ti.PathIndices) != 0 && len(ti.PathIndices) != len(ti.MsgInputs):
		return nil, fmt.Errorf("%w: %d inputs with %d path indices",
			pipeline.ErrMalformedWitness, len(ti.MsgInputs), len(ti.PathIndices))
	case len(ti.PubKeyOutputs) != len(ti.TokenOutputs):
		return nil, fmt.Errorf("%w: %d outputs with %d public keys",
			pipeline.ErrMalformedWitness, len(ti.TokenOutputs), len(ti.PubKeyOutputs))
	case len(ti.AuditNonces) != len(ti.TokenOutputs):
		return nil, fmt.Errorf("%w: %d outputs with %d audit nonces",
			pipeline.ErrMalformedWitness, len(ti.TokenOutputs), len(ti.AuditNonces))
	}
	owner, err := d.FromPrivate(ti.PrivKeyInput)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrInvalidOwnership, err)
	}

	w := &pipeline.TransferWitness{
		MerkleRoot: ti.MerkleRoot,
		Authority:  publicKey(ti.PubKeyAuthority),
	}
	for i, msg := range ti.MsgInputs {
		n, err := note.FromElements(msg)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w: %v", i, pipeline.ErrMalformedWitness, err)
		}
		pathBits := make([]field.Element, len(ti.SiblingsArray[i]))
		if len(ti.PathIndices) != 0 {
			pathBits = ti.PathIndices[i]
		}
		w.Inputs = append(w.Inputs, pipeline.TransferInput{
			Note:     n,
			Owner:    owner,
			Siblings: ti.SiblingsArray[i],
			PathBits: pathBits,
		})
	}
	for i, token := range ti.TokenOutputs {
		n, err := note.FromElements(token)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w: %v", i, pipeline.ErrMalformedWitness, err)
		}
		w.Outputs = append(w.Outputs, pipeline.TransferOutput{
			Note:       n,
			Recipient:  publicKey(ti.PubKeyOutputs[i]),
			AuditNonce: ti.AuditNonces[i],
		})
	}
	return w, nil
}

// ParseMintInputs decodes a JSON mint input document.
func ParseMintInputs(data []byte) (*MintInputs, error) {
	mi := &MintInputs{}
	if err := json.Unmarshal(data, mi); err != nil {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrMalformedWitness, err)
	}
	return mi, nil
}

// Witness returns the mint witness, deriving the owner key pair with d when
// a private key is set.
func (mi *MintInputs) Witness(d *keys.Deriver) (*pipeline.MintWitness, error) {
	w := &pipeline.MintWitness{
		Amount:    mi.AmountR,
		TokenType: mi.TokenType,
		Nonce:     mi.Nonce,
	}
	if mi.PrivKey != nil {
		owner, err := d.FromPrivate(*mi.PrivKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pipeline.ErrInvalidOwnership, err)
		}
		w.Owner = &owner
	}
	return w, nil
}

func pair(pk keys.PublicKey) [2]field.Element {
	return [2]field.Element{pk.X, pk.Y}
}

func publicKey(p [2]field.Element) keys.PublicKey {
	return keys.PublicKey{X: p[0], Y: p[1]}
}
