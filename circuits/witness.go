package circuits

import (
	"fmt"

	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/pipeline"
)

// TransferAssignments holds the circuit assignments of a transfer witness.
type TransferAssignments struct {
	Balance   *BalanceCircuit
	Ownership []*OwnershipCircuit
}

// NewTransferAssignments builds the assignments of w. The balance circuit
// handles a single token type, so every note of w must share it.
func NewTransferAssignments(w *pipeline.TransferWitness, amountBits int) (*TransferAssignments, error) {
	if w == nil || len(w.Inputs) == 0 || len(w.Outputs) == 0 {
		return nil, fmt.Errorf("%w: empty transfer", pipeline.ErrMalformedWitness)
	}
	tokenType := w.Inputs[0].Note.TokenType()
	ta := &TransferAssignments{}
	inputs := make([]field.Element, len(w.Inputs))
	for i, in := range w.Inputs {
		if !in.Note.TokenType().Equal(tokenType) {
			return nil, fmt.Errorf("input %d: token type %s, expected %s", i, in.Note.TokenType(), tokenType)
		}
		inputs[i] = in.Note.Amount()
		ta.Ownership = append(ta.Ownership, OwnershipAssignment(in.Owner))
	}
	outputs := make([]field.Element, len(w.Outputs))
	for i, out := range w.Outputs {
		if !out.Note.TokenType().Equal(tokenType) {
			return nil, fmt.Errorf("output %d: token type %s, expected %s", i, out.Note.TokenType(), tokenType)
		}
		outputs[i] = out.Note.Amount()
	}
	ta.Balance = BalanceAssignment(inputs, outputs, amountBits)
	return ta, nil
}

// BalancePlaceholder returns the empty balance circuit matching ta.
func (ta *TransferAssignments) BalancePlaceholder() *BalanceCircuit {
	return BalancePlaceholder(len(ta.Balance.Inputs), len(ta.Balance.Outputs), ta.Balance.amountBits)
}
