// Package field implements arithmetic over the scalar field of BN254, the
// native field of every value in the shielded note protocol.
package field

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrOutOfRangeInput is returned when a value provided at a boundary is
	// negative or not lower than the field modulus.
	ErrOutOfRangeInput = errors.New("value out of field range")
	// ErrNotInvertible is returned when inverting zero.
	ErrNotInvertible = errors.New("zero has no multiplicative inverse")
	// ErrMalformed is returned when a serialized element cannot be parsed.
	ErrMalformed = errors.New("malformed field element")
)

// Bits is the bit length of the field modulus.
const Bits = fr.Bits

// Element is an integer modulo p, always kept reduced. The zero value is the
// field element 0.
type Element struct {
	v fr.Element
}

// Modulus returns a copy of the field modulus p.
func Modulus() *big.Int {
	return fr.Modulus()
}

// Zero returns the additive identity.
func Zero() Element {
	return Element{}
}

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.v.SetOne()
	return e
}

// FromUint64 returns the element with value u.
func FromUint64(u uint64) Element {
	var e Element
	e.v.SetUint64(u)
	return e
}

// FromBigInt returns the element with value b. It fails with
// ErrOutOfRangeInput if b is negative or not lower than p.
func FromBigInt(b *big.Int) (Element, error) {
	if b == nil {
		return Element{}, fmt.Errorf("%w: nil value", ErrMalformed)
	}
	if b.Sign() < 0 || b.Cmp(fr.Modulus()) >= 0 {
		return Element{}, fmt.Errorf("%w: %s", ErrOutOfRangeInput, b.String())
	}
	var e Element
	e.v.SetBigInt(b)
	return e, nil
}

// Reduce maps any integer into the field using the euclidean modulus. It is
// meant for callers that knowingly reduce arbitrary integers, values coming
// from the outside must go through FromBigInt.
func Reduce(b *big.Int) Element {
	r := new(big.Int).Mod(b, fr.Modulus())
	var e Element
	e.v.SetBigInt(r)
	return e
}

// Random returns a uniformly distributed random element.
func Random() (Element, error) {
	var e Element
	if _, err := e.v.SetRandom(); err != nil {
		return Element{}, fmt.Errorf("cannot generate random element: %w", err)
	}
	return e, nil
}

// Add returns e + o mod p.
func (e Element) Add(o Element) Element {
	var r Element
	r.v.Add(&e.v, &o.v)
	return r
}

// Sub returns e - o mod p.
func (e Element) Sub(o Element) Element {
	var r Element
	r.v.Sub(&e.v, &o.v)
	return r
}

// Mul returns e * o mod p.
func (e Element) Mul(o Element) Element {
	var r Element
	r.v.Mul(&e.v, &o.v)
	return r
}

// Neg returns -e mod p.
func (e Element) Neg() Element {
	var r Element
	r.v.Neg(&e.v)
	return r
}

// Inverse returns the multiplicative inverse of e.
func (e Element) Inverse() (Element, error) {
	if e.v.IsZero() {
		return Element{}, ErrNotInvertible
	}
	var r Element
	r.v.Inverse(&e.v)
	return r, nil
}

// Equal reports whether e and o are the same element.
func (e Element) Equal(o Element) bool {
	return e.v.Equal(&o.v)
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	return e.v.IsZero()
}

// Cmp compares the canonical integer representations of e and o.
func (e Element) Cmp(o Element) int {
	return e.v.Cmp(&o.v)
}

// BigInt returns the canonical integer representation of e, in [0, p).
func (e Element) BigInt() *big.Int {
	return e.v.BigInt(new(big.Int))
}

// Uint64 returns the value of e and whether it fits in a uint64.
func (e Element) Uint64() (uint64, bool) {
	if !e.v.IsUint64() {
		return 0, false
	}
	return e.v.Uint64(), true
}

// BitLen returns the bit length of the canonical representation of e.
func (e Element) BitLen() int {
	// fr.Element.BitLen reads the Montgomery limbs
	return e.BigInt().BitLen()
}

// FitsBits reports whether the canonical representation of e is lower than
// 2^n.
func (e Element) FitsBits(n int) bool {
	return e.BitLen() <= n
}

// BigInts converts a list of elements into their integer representations.
func BigInts(elems ...Element) []*big.Int {
	out := make([]*big.Int, len(elems))
	for i, e := range elems {
		out[i] = e.BigInt()
	}
	return out
}
