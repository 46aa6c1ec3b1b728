package circuits

import (
	"math/big"

	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"

	bjj "github.com/vocdoni/shielded-notes/crypto/ecc/bjj_gnark"
	"github.com/vocdoni/shielded-notes/crypto/ecc/format"
	"github.com/vocdoni/shielded-notes/crypto/keys"
)

// OwnershipCircuit proves the knowledge of the private key of a public key:
// PublicKey == PrivateKey * B8.
type OwnershipCircuit struct {
	PublicKey  twistededwards.Point `gnark:",public"`
	PrivateKey frontend.Variable
}

// OwnershipAssignment returns the assignment for kp. The public key is
// converted to the reduced form and the private key is reduced modulo the
// subgroup order, which keeps the same public key.
func OwnershipAssignment(kp keys.KeyPair) *OwnershipCircuit {
	x, y := format.FromTEtoRTE(kp.PublicKey.X.BigInt(), kp.PublicKey.Y.BigInt())
	sk := new(big.Int).Mod(kp.PrivateKey.BigInt(), &bjj.Params.Order)
	return &OwnershipCircuit{
		PublicKey:  twistededwards.Point{X: x, Y: y},
		PrivateKey: sk,
	}
}

// Define declares the circuit constraints.
func (c *OwnershipCircuit) Define(api frontend.API) error {
	curve, err := twistededwards.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return err
	}
	api.AssertIsDifferent(c.PrivateKey, 0)
	curve.AssertIsOnCurve(c.PublicKey)
	base := twistededwards.Point{
		X: curve.Params().Base[0],
		Y: curve.Params().Base[1],
	}
	pk := curve.ScalarMul(base, c.PrivateKey)
	api.AssertIsEqual(pk.X, c.PublicKey.X)
	api.AssertIsEqual(pk.Y, c.PublicKey.Y)
	return nil
}
