package bjj

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/fxamacker/cbor/v2"
	babyjubjub "github.com/iden3/go-iden3-crypto/babyjub"
	"github.com/iden3/go-iden3-crypto/constants"

	curve "github.com/vocdoni/shielded-notes/crypto/ecc"
	"github.com/vocdoni/shielded-notes/types"
)

const CurveType = "bjj_iden3"

// BJJ is the affine representation of the BabyJubJub group element backed by
// the iden3 implementation, which shares coordinates with circomlib.
type BJJ struct {
	inner *babyjubjub.Point
	lock  sync.Mutex
}

// New creates a new BJJ point (identity element by default).
func New() curve.Point {
	return &BJJ{inner: babyjubjub.NewPoint()}
}

func (g *BJJ) New() curve.Point {
	return &BJJ{inner: babyjubjub.NewPoint()}
}

func (g *BJJ) Order() *big.Int {
	return new(big.Int).Set(babyjubjub.SubOrder)
}

func (g *BJJ) Add(a, b curve.Point) {
	g.inner = babyjubjub.NewPointProjective().Add(
		a.(*BJJ).inner.Projective(),
		b.(*BJJ).inner.Projective(),
	).Affine()
}

func (g *BJJ) SafeAdd(a, b curve.Point) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Add(a, b)
}

func (g *BJJ) ScalarMult(a curve.Point, scalar *big.Int) {
	g.inner = babyjubjub.NewPoint().Mul(scalar, a.(*BJJ).inner)
}

func (g *BJJ) ScalarBaseMult(scalar *big.Int) {
	g.inner = babyjubjub.NewPoint().Mul(scalar, babyjubjub.B8)
}

// Marshal returns the 32 byte compressed form of the point.
func (g *BJJ) Marshal() []byte {
	b := g.inner.Compress()
	return b[:]
}

func (g *BJJ) Unmarshal(buf []byte) error {
	if len(buf) != 32 {
		return fmt.Errorf("expected 32 bytes, got %d", len(buf))
	}
	b32 := [32]byte{}
	copy(b32[:], buf)
	p, err := babyjubjub.NewPoint().Decompress(b32)
	if err != nil {
		return err
	}
	g.inner = p
	return nil
}

// MarshalJSON serializes the point into a JSON object with decimal
// coordinates.
func (g *BJJ) MarshalJSON() ([]byte, error) {
	return json.Marshal(&curve.PointEC{
		X: types.BigInt(*g.inner.X),
		Y: types.BigInt(*g.inner.Y),
	})
}

// UnmarshalJSON deserializes the point from a JSON object.
func (g *BJJ) UnmarshalJSON(buf []byte) error {
	var p curve.PointEC
	if err := json.Unmarshal(buf, &p); err != nil {
		return err
	}
	g.inner = babyjubjub.NewPoint()
	g.inner.X.Set(p.X.MathBigInt())
	g.inner.Y.Set(p.Y.MathBigInt())
	return nil
}

func (g *BJJ) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal([]*big.Int{g.inner.X, g.inner.Y})
}

func (g *BJJ) UnmarshalCBOR(buf []byte) error {
	var coords []*big.Int
	if err := cbor.Unmarshal(buf, &coords); err != nil {
		return err
	}
	if len(coords) != 2 {
		return fmt.Errorf("expected 2 coordinates, got %d", len(coords))
	}
	g.inner = babyjubjub.NewPoint()
	g.inner.X.Set(coords[0])
	g.inner.Y.Set(coords[1])
	return nil
}

func (g *BJJ) Equal(a curve.Point) bool {
	return g.inner.X.Cmp(a.(*BJJ).inner.X) == 0 && g.inner.Y.Cmp(a.(*BJJ).inner.Y) == 0
}

// Neg sets g to -a, that is (-x, y).
func (g *BJJ) Neg(a curve.Point) {
	src := a.(*BJJ).inner
	p := babyjubjub.NewPoint()
	p.X.Sub(constants.Q, src.X)
	p.X.Mod(p.X, constants.Q)
	p.Y.Set(src.Y)
	g.inner = p
}

func (g *BJJ) SetZero() {
	g.inner = babyjubjub.NewPoint()
}

func (g *BJJ) Set(a curve.Point) {
	src := a.(*BJJ).inner
	p := babyjubjub.NewPoint()
	p.X.Set(src.X)
	p.Y.Set(src.Y)
	g.inner = p
}

func (g *BJJ) SetGenerator() {
	g.Set(&BJJ{inner: babyjubjub.B8})
}

func (g *BJJ) IsOnCurve() bool {
	return g.inner.InCurve()
}

func (g *BJJ) String() string {
	return fmt.Sprintf("%s,%s", g.inner.X.String(), g.inner.Y.String())
}

func (g *BJJ) Point() (*big.Int, *big.Int) {
	return new(big.Int).Set(g.inner.X), new(big.Int).Set(g.inner.Y)
}

func (g *BJJ) SetPoint(x, y *big.Int) curve.Point {
	p := &BJJ{inner: babyjubjub.NewPoint()}
	p.inner.X.Set(x)
	p.inner.Y.Set(y)
	return p
}

func (g *BJJ) Type() string {
	return CurveType
}
