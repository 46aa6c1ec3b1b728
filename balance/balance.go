// Package balance enforces the value invariants of a transfer: every amount
// is a positive integer of bounded bit length and, per token type, inputs
// and outputs add up to the same total.
package balance

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/vocdoni/shielded-notes/crypto/field"
)

// halfModulus is (p-1)/2, field values above it are read as negative
// integers.
var halfModulus = new(big.Int).Rsh(new(big.Int).Sub(field.Modulus(), big.NewInt(1)), 1)

// Entry is an amount tagged with its token type.
type Entry struct {
	TokenType field.Element `json:"tokenType"`
	Amount    field.Element `json:"amount"`
}

// IsNegative reports whether v encodes a negative integer, that is, whether
// it lies in the upper half of the field.
func IsNegative(v field.Element) bool {
	return v.BigInt().Cmp(halfModulus) > 0
}

// CheckAmount checks v is a positive integer lower than 2^maxBits.
func CheckAmount(v field.Element, maxBits int) error {
	if err := checkBound(maxBits, 1); err != nil {
		return err
	}
	return checkAmount(v, maxBits)
}

func checkAmount(v field.Element, maxBits int) error {
	if v.IsZero() || IsNegative(v) {
		return &Error{Kind: ErrZeroOrNegativeAmount}
	}
	if !v.FitsBits(maxBits) {
		return &Error{Kind: ErrAmountOverflow, Detail: fmt.Sprintf("%d bits > %d", v.BitLen(), maxBits)}
	}
	return nil
}

// checkBound ensures count amounts of maxBits bits each cannot add up to the
// modulus.
func checkBound(maxBits, count int) error {
	if maxBits < 1 {
		return &Error{Kind: ErrInvalidBitBound, Detail: fmt.Sprintf("%d bits", maxBits)}
	}
	if maxBits+bits.Len(uint(count)) >= field.Bits-1 {
		return &Error{Kind: ErrInvalidBitBound, Detail: fmt.Sprintf("%d bits for %d amounts", maxBits, count)}
	}
	return nil
}

// checkSide validates every amount of one side, in order.
func checkSide(side Side, amounts []field.Element, maxBits int) error {
	if len(amounts) == 0 {
		return &Error{Kind: ErrEmpty, Side: side}
	}
	for i, v := range amounts {
		if err := checkAmount(v, maxBits); err != nil {
			e := err.(*Error)
			e.Side, e.Index = side, i
			return e
		}
	}
	return nil
}

// Sum adds up the amounts.
func Sum(amounts []field.Element) field.Element {
	total := field.Zero()
	for _, v := range amounts {
		total = total.Add(v)
	}
	return total
}

// Check validates the inputs, then the outputs, then that both sides add up
// to the same value. All amounts are treated as the same token type.
func Check(inputs, outputs []field.Element, maxBits int) error {
	if err := checkBound(maxBits, max(len(inputs), len(outputs))); err != nil {
		return err
	}
	if err := checkSide(SideInput, inputs, maxBits); err != nil {
		return err
	}
	if err := checkSide(SideOutput, outputs, maxBits); err != nil {
		return err
	}
	in, out := Sum(inputs), Sum(outputs)
	if !in.Equal(out) {
		return &Error{Kind: ErrUnbalancedAmounts, Detail: fmt.Sprintf("%s != %s", in, out)}
	}
	return nil
}

// CheckByToken is like Check but balances every token type on its own.
// A token type present on a single side is unbalanced.
func CheckByToken(inputs, outputs []Entry, maxBits int) error {
	if err := checkBound(maxBits, max(len(inputs), len(outputs))); err != nil {
		return err
	}
	if err := checkSide(SideInput, amounts(inputs), maxBits); err != nil {
		return err
	}
	if err := checkSide(SideOutput, amounts(outputs), maxBits); err != nil {
		return err
	}
	// token types in order of first appearance
	order := []field.Element{}
	sums := map[field.Element]*[2]field.Element{}
	add := func(entries []Entry, side int) {
		for _, e := range entries {
			s, ok := sums[e.TokenType]
			if !ok {
				s = &[2]field.Element{}
				sums[e.TokenType] = s
				order = append(order, e.TokenType)
			}
			s[side] = s[side].Add(e.Amount)
		}
	}
	add(inputs, 0)
	add(outputs, 1)
	for _, tokenType := range order {
		s := sums[tokenType]
		if !s[0].Equal(s[1]) {
			tt := tokenType
			return &Error{
				Kind:      ErrUnbalancedAmounts,
				TokenType: &tt,
				Detail:    fmt.Sprintf("%s != %s", s[0], s[1]),
			}
		}
	}
	return nil
}

func amounts(entries []Entry) []field.Element {
	out := make([]field.Element, len(entries))
	for i, e := range entries {
		out[i] = e.Amount
	}
	return out
}

// ParseAmount parses a decimal or hexadecimal amount coming from the
// outside. Negative values are reported as ErrZeroOrNegativeAmount, values
// that are not numbers or do not fit in the field with the field errors.
func ParseAmount(s string) (field.Element, error) {
	if b, ok := new(big.Int).SetString(s, 10); ok && b.Sign() < 0 {
		return field.Element{}, &Error{Kind: ErrZeroOrNegativeAmount, Detail: s}
	}
	return field.FromString(s)
}
