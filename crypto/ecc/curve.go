package ecc

import (
	"math/big"

	"github.com/vocdoni/shielded-notes/types"
)

// Point defines the operations on BabyJubJub group elements shared by the
// different backends. Coordinates are always exposed in the twisted Edwards
// form used by circomlib (a = 168700, d = 168696), whatever the internal
// representation of the backend is.
type Point interface {
	// New returns a new point set to the identity element.
	New() Point

	// Order returns the order of the prime subgroup generated by the base
	// point.
	Order() *big.Int

	// Add sets the receiver to a + b.
	Add(a, b Point)

	// SafeAdd is like Add but holds the receiver lock during the operation.
	SafeAdd(a, b Point)

	// ScalarMult sets the receiver to scalar * a.
	ScalarMult(a Point, scalar *big.Int)

	// ScalarBaseMult sets the receiver to scalar * B8.
	ScalarBaseMult(scalar *big.Int)

	// Marshal serializes the point into a byte slice.
	Marshal() []byte

	// Unmarshal deserializes a byte slice produced by Marshal.
	Unmarshal(buf []byte) error

	// Equal reports whether both points are the same group element.
	Equal(a Point) bool

	// Neg sets the receiver to -a.
	Neg(a Point)

	// SetZero sets the receiver to the identity element (0, 1).
	SetZero()

	// Set copies a into the receiver.
	Set(a Point)

	// SetGenerator sets the receiver to the base point B8.
	SetGenerator()

	// IsOnCurve reports whether the point satisfies the curve equation.
	IsOnCurve() bool

	// String returns the "x,y" decimal representation of the point.
	String() string

	// Point returns the X and Y coordinates of the point.
	Point() (*big.Int, *big.Int)

	// SetPoint returns a new point with the given coordinates.
	SetPoint(x, y *big.Int) Point

	// Type returns the backend identifier.
	Type() string
}

// PointEC is the JSON representation of a point.
type PointEC struct {
	X types.BigInt `json:"x"`
	Y types.BigInt `json:"y"`
}
