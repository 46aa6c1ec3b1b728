// Package format converts BabyJubJub coordinates between the twisted Edwards
// form used by circomlib and iden3 (TE) and the reduced twisted Edwards form
// used by gnark (RTE, a = -1). Only the x coordinate changes.
package format

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// scalingFactor is a square root of -168700 mod p.
	scalingFactor = mustElement("15527681003928902128179717624703512672403908117992798440346960750464748824729")
	// invScalingFactor is the inverse of scalingFactor mod p.
	invScalingFactor = new(fr.Element).Inverse(&scalingFactor)
)

func mustElement(s string) fr.Element {
	var e fr.Element
	if _, err := e.SetString(s); err != nil {
		panic(err)
	}
	return e
}

// FromTEtoRTE converts a TE point to the RTE form.
func FromTEtoRTE(x, y *big.Int) (*big.Int, *big.Int) {
	return scaleX(x, &scalingFactor), new(big.Int).Set(y)
}

// FromRTEtoTE converts a RTE point to the TE form.
func FromRTEtoTE(x, y *big.Int) (*big.Int, *big.Int) {
	return scaleX(x, invScalingFactor), new(big.Int).Set(y)
}

func scaleX(x *big.Int, factor *fr.Element) *big.Int {
	var e fr.Element
	e.SetBigInt(x)
	e.Mul(&e, factor)
	return e.BigInt(new(big.Int))
}
