package circuits

import (
	"fmt"
	stdbits "math/bits"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/bits"

	"github.com/vocdoni/shielded-notes/balance"
	"github.com/vocdoni/shielded-notes/crypto/field"
)

// BalanceCircuit constrains every amount to be non-zero and lower than
// 2^amountBits, and the sum of the inputs to equal the sum of the outputs.
// All the amounts share the same token type.
type BalanceCircuit struct {
	Inputs  []frontend.Variable
	Outputs []frontend.Variable

	amountBits int
}

// BalancePlaceholder returns an empty circuit for nIn inputs and nOut
// outputs.
func BalancePlaceholder(nIn, nOut, amountBits int) *BalanceCircuit {
	return &BalanceCircuit{
		Inputs:     make([]frontend.Variable, nIn),
		Outputs:    make([]frontend.Variable, nOut),
		amountBits: amountBits,
	}
}

// BalanceAssignment returns the assignment of the amounts. The amounts are
// not checked, so the assignment of an unbalanced transfer is still built.
func BalanceAssignment(inputs, outputs []field.Element, amountBits int) *BalanceCircuit {
	return &BalanceCircuit{
		Inputs:     ElementsToVariables(inputs),
		Outputs:    ElementsToVariables(outputs),
		amountBits: amountBits,
	}
}

// Define declares the circuit constraints.
func (c *BalanceCircuit) Define(api frontend.API) error {
	if len(c.Inputs) == 0 || len(c.Outputs) == 0 {
		return fmt.Errorf("%w: circuit without inputs or outputs", balance.ErrEmpty)
	}
	// the sums cannot wrap around the modulus
	if c.amountBits < 1 || c.amountBits+stdbits.Len(uint(max(len(c.Inputs), len(c.Outputs)))) >= field.Bits-1 {
		return fmt.Errorf("%w: %d bits", balance.ErrInvalidBitBound, c.amountBits)
	}
	api.AssertIsEqual(c.sum(api, c.Inputs), c.sum(api, c.Outputs))
	return nil
}

func (c *BalanceCircuit) sum(api frontend.API, amounts []frontend.Variable) frontend.Variable {
	total := frontend.Variable(0)
	for _, amount := range amounts {
		api.AssertIsDifferent(amount, 0)
		bits.ToBinary(api, amount, bits.WithNbDigits(c.amountBits))
		total = api.Add(total, amount)
	}
	return total
}
