package curves

import (
	"fmt"

	"github.com/vocdoni/shielded-notes/crypto/ecc"
	bjj_gnark "github.com/vocdoni/shielded-notes/crypto/ecc/bjj_gnark"
	bjj_iden3 "github.com/vocdoni/shielded-notes/crypto/ecc/bjj_iden3"
)

const (
	// CurveTypeBabyJubJub is the default backend, it shares the coordinate
	// system with circomlib so no conversion is needed at the boundaries.
	CurveTypeBabyJubJub      = bjj_iden3.CurveType
	CurveTypeBabyJubJubGnark = bjj_gnark.CurveType
	CurveTypeBabyJubJubIden3 = bjj_iden3.CurveType
)

// New returns the identity element of the requested backend.
func New(curveType string) (ecc.Point, error) {
	switch curveType {
	case CurveTypeBabyJubJubGnark:
		return bjj_gnark.New(), nil
	case CurveTypeBabyJubJubIden3:
		return bjj_iden3.New(), nil
	default:
		return nil, fmt.Errorf("unsupported curve type: %s", curveType)
	}
}

// Curves returns the list of supported backends.
func Curves() []string {
	return []string{CurveTypeBabyJubJubIden3, CurveTypeBabyJubJubGnark}
}
