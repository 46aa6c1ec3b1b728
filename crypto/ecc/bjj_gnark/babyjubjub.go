package bjj

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	babyjubjub "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/fxamacker/cbor/v2"

	curve "github.com/vocdoni/shielded-notes/crypto/ecc"
	"github.com/vocdoni/shielded-notes/crypto/ecc/format"
	"github.com/vocdoni/shielded-notes/types"
)

const CurveType = "bjj_gnark"

// Params are the gnark-crypto parameters of the curve, in reduced twisted
// Edwards form.
var Params = babyjubjub.GetEdwardsCurve()

// BJJ is the affine representation of the BabyJubJub group element backed by
// gnark-crypto. Internally it works in the reduced twisted Edwards form, the
// public accessors convert to the circomlib coordinates.
type BJJ struct {
	inner *babyjubjub.PointAffine
	lock  sync.Mutex
}

// New creates a new BJJ point (identity element by default).
func New() curve.Point {
	p := &BJJ{inner: new(babyjubjub.PointAffine)}
	p.SetZero()
	return p
}

// New creates a new BJJ point (identity element by default).
func (g *BJJ) New() curve.Point {
	return New()
}

// Order returns the order of the BabyJubJub curve subgroup.
func (g *BJJ) Order() *big.Int {
	return new(big.Int).Set(&Params.Order)
}

// Add performs the addition of two points and stores the result in g.
func (g *BJJ) Add(a, b curve.Point) {
	g.inner.Add(a.(*BJJ).inner, b.(*BJJ).inner)
}

// SafeAdd performs the addition of two points with a lock.
func (g *BJJ) SafeAdd(a, b curve.Point) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Add(a, b)
}

// ScalarMult performs scalar multiplication of a point by a scalar.
func (g *BJJ) ScalarMult(a curve.Point, scalar *big.Int) {
	g.inner.ScalarMultiplication(a.(*BJJ).inner, scalar)
}

// ScalarBaseMult performs scalar multiplication using the base point.
func (g *BJJ) ScalarBaseMult(scalar *big.Int) {
	g.inner.ScalarMultiplication(&Params.Base, scalar)
}

// Equal checks if the given point is equal to the current point.
func (g *BJJ) Equal(a curve.Point) bool {
	return g.inner.Equal(a.(*BJJ).inner)
}

// Neg negates the given point and stores the result in g.
func (g *BJJ) Neg(a curve.Point) {
	g.inner.Neg(a.(*BJJ).inner)
}

// SetZero sets the current point to the identity element (0, 1).
func (g *BJJ) SetZero() {
	g.inner.X.SetZero()
	g.inner.Y.SetOne()
}

// Set sets g to the value of another point.
func (g *BJJ) Set(a curve.Point) {
	g.inner.Set(a.(*BJJ).inner)
}

// SetGenerator sets the point to the BabyJubJub generator.
func (g *BJJ) SetGenerator() {
	g.inner.Set(&Params.Base)
}

// IsOnCurve reports whether the point satisfies the curve equation.
func (g *BJJ) IsOnCurve() bool {
	return g.inner.IsOnCurve()
}

// String returns a string representation of the point in twisted Edwards
// coordinates.
func (g *BJJ) String() string {
	x, y := g.Point()
	return fmt.Sprintf("%s,%s", x.String(), y.String())
}

// Marshal serializes the point into its gnark compressed form.
func (g *BJJ) Marshal() []byte {
	return g.inner.Marshal()
}

// Unmarshal deserializes the point from its gnark compressed form.
func (g *BJJ) Unmarshal(buf []byte) error {
	return g.inner.Unmarshal(buf)
}

// MarshalJSON serializes the point using twisted Edwards coordinates.
func (g *BJJ) MarshalJSON() ([]byte, error) {
	x, y := g.Point()
	return json.Marshal(&curve.PointEC{X: types.BigInt(*x), Y: types.BigInt(*y)})
}

// UnmarshalJSON deserializes a point given in twisted Edwards coordinates.
func (g *BJJ) UnmarshalJSON(buf []byte) error {
	var p curve.PointEC
	if err := json.Unmarshal(buf, &p); err != nil {
		return err
	}
	g.inner = g.SetPoint(p.X.MathBigInt(), p.Y.MathBigInt()).(*BJJ).inner
	return nil
}

// MarshalCBOR serializes the point using twisted Edwards coordinates.
func (g *BJJ) MarshalCBOR() ([]byte, error) {
	x, y := g.Point()
	return cbor.Marshal([]*big.Int{x, y})
}

// UnmarshalCBOR deserializes a point given in twisted Edwards coordinates.
func (g *BJJ) UnmarshalCBOR(buf []byte) error {
	var coords []*big.Int
	if err := cbor.Unmarshal(buf, &coords); err != nil {
		return err
	}
	if len(coords) != 2 {
		return fmt.Errorf("expected 2 coordinates, got %d", len(coords))
	}
	g.inner = g.SetPoint(coords[0], coords[1]).(*BJJ).inner
	return nil
}

// Point returns the X and Y coordinates of the point in twisted Edwards
// coordinates.
func (g *BJJ) Point() (*big.Int, *big.Int) {
	x, y := new(big.Int), new(big.Int)
	g.inner.X.BigInt(x)
	g.inner.Y.BigInt(y)
	return format.FromRTEtoTE(x, y)
}

// RTE returns the X and Y coordinates in the reduced form, as expected by
// gnark circuits.
func (g *BJJ) RTE() (*big.Int, *big.Int) {
	x, y := new(big.Int), new(big.Int)
	g.inner.X.BigInt(x)
	g.inner.Y.BigInt(y)
	return x, y
}

// SetPoint returns a new point from coordinates in twisted Edwards form.
func (g *BJJ) SetPoint(x, y *big.Int) curve.Point {
	xRTE, yRTE := format.FromTEtoRTE(x, y)
	p := &BJJ{inner: new(babyjubjub.PointAffine)}
	p.inner.X.SetBigInt(xRTE)
	p.inner.Y.SetBigInt(yRTE)
	return p
}

func (g *BJJ) Type() string {
	return CurveType
}
