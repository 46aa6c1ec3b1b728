package balance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vocdoni/shielded-notes/crypto/field"
)

var (
	// ErrZeroOrNegativeAmount is returned for amounts equal to zero or in the
	// upper half of the field, which encode negative integers.
	ErrZeroOrNegativeAmount = errors.New("amount is zero or negative")
	// ErrAmountOverflow is returned for amounts wider than the bit bound.
	ErrAmountOverflow = errors.New("amount exceeds the bit bound")
	// ErrUnbalancedAmounts is returned when inputs and outputs do not sum
	// to the same value.
	ErrUnbalancedAmounts = errors.New("input and output amounts do not balance")
	// ErrInvalidBitBound is returned when the bit bound is not small enough
	// to sum all the amounts without wrapping around the modulus.
	ErrInvalidBitBound = errors.New("invalid amount bit bound")
	// ErrEmpty is returned when one of the sides has no amounts.
	ErrEmpty = errors.New("no amounts provided")
)

// Side tells which list an amount belongs to.
type Side string

const (
	SideInput  Side = "input"
	SideOutput Side = "output"
)

// Error describes a failed balance check. Kind is one of the sentinel errors
// of this package and is matched by errors.Is.
type Error struct {
	Kind      error
	Side      Side
	Index     int
	TokenType *field.Element
	Detail    string
}

func (e *Error) Error() string {
	parts := []string{}
	if e.Side != "" {
		parts = append(parts, fmt.Sprintf("%s %d", e.Side, e.Index))
	}
	if e.TokenType != nil {
		parts = append(parts, fmt.Sprintf("token type %s", e.TokenType))
	}
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	if len(parts) == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", strings.Join(parts, ", "), msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}
