// Package keys derives BabyJubJub key pairs. A private key is a field
// element sk and its public key is the point sk * B8.
package keys

import (
	"errors"
	"fmt"

	"github.com/vocdoni/shielded-notes/crypto/ecc"
	"github.com/vocdoni/shielded-notes/crypto/ecc/curves"
	"github.com/vocdoni/shielded-notes/crypto/field"
)

var (
	// ErrKeyMismatch is returned when a public key is not derived from the
	// private key it is paired with.
	ErrKeyMismatch = errors.New("public key does not match private key")
	// ErrInvalidPrivateKey is returned for the zero private key, whose
	// public key is the identity element.
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrInvalidPublicKey is returned for points outside the curve.
	ErrInvalidPublicKey = errors.New("public key is not on the curve")
)

// PublicKey is a BabyJubJub point in circomlib coordinates.
type PublicKey struct {
	X field.Element `json:"x"`
	Y field.Element `json:"y"`
}

// Equal reports whether both keys are the same point.
func (pk PublicKey) Equal(o PublicKey) bool {
	return pk.X.Equal(o.X) && pk.Y.Equal(o.Y)
}

// Elements returns the coordinates as a list, in (x, y) order.
func (pk PublicKey) Elements() []field.Element {
	return []field.Element{pk.X, pk.Y}
}

func (pk PublicKey) String() string {
	return fmt.Sprintf("%s,%s", pk.X.String(), pk.Y.String())
}

// KeyPair holds a private key and its public key.
type KeyPair struct {
	PrivateKey field.Element `json:"privateKey"`
	PublicKey  PublicKey     `json:"publicKey"`
}

// Deriver computes public keys with one of the curve backends. It is safe for
// concurrent use, every operation works on freshly allocated points.
type Deriver struct {
	curve ecc.Point
}

// NewDeriver returns a Deriver for the given curve backend.
func NewDeriver(curveType string) (*Deriver, error) {
	curve, err := curves.New(curveType)
	if err != nil {
		return nil, err
	}
	return &Deriver{curve: curve}, nil
}

// Generate returns a fresh key pair with a uniformly random private key.
func (d *Deriver) Generate() (KeyPair, error) {
	for {
		sk, err := field.Random()
		if err != nil {
			return KeyPair{}, err
		}
		if sk.IsZero() {
			continue
		}
		return d.FromPrivate(sk)
	}
}

// FromPrivate regenerates the key pair of sk. The result is deterministic.
func (d *Deriver) FromPrivate(sk field.Element) (KeyPair, error) {
	pk, err := d.PublicKey(sk)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PrivateKey: sk, PublicKey: pk}, nil
}

// PublicKey returns sk * B8.
func (d *Deriver) PublicKey(sk field.Element) (PublicKey, error) {
	if sk.IsZero() {
		return PublicKey{}, ErrInvalidPrivateKey
	}
	p := d.curve.New()
	p.ScalarBaseMult(sk.BigInt())
	return FromPoint(p)
}

// Validate checks the public key of kp is derived from its private key.
func (d *Deriver) Validate(kp KeyPair) error {
	pk, err := d.PublicKey(kp.PrivateKey)
	if err != nil {
		return err
	}
	if !pk.Equal(kp.PublicKey) {
		return ErrKeyMismatch
	}
	return nil
}

// Point returns pk as a point of the deriver backend, checking it lies on
// the curve.
func (d *Deriver) Point(pk PublicKey) (ecc.Point, error) {
	p := d.curve.SetPoint(pk.X.BigInt(), pk.Y.BigInt())
	if !p.IsOnCurve() {
		return nil, ErrInvalidPublicKey
	}
	return p, nil
}

// FromPoint converts a curve point into a PublicKey.
func FromPoint(p ecc.Point) (PublicKey, error) {
	x, y := p.Point()
	fx, err := field.FromBigInt(x)
	if err != nil {
		return PublicKey{}, err
	}
	fy, err := field.FromBigInt(y)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{X: fx, Y: fy}, nil
}
