// Package merkle verifies membership of commitments in the fixed depth
// binary Poseidon tree that accumulates them.
package merkle

import (
	"errors"
	"fmt"

	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/hash/poseidon"
)

var (
	// ErrMalformedProof is returned when the proof shape does not match the
	// tree depth or a path bit is not 0 or 1.
	ErrMalformedProof = errors.New("malformed merkle proof")
	// ErrProofFailed is returned when a well formed proof does not lead to
	// the expected root.
	ErrProofFailed = errors.New("merkle proof does not match root")
)

// Proof stores the leaf and the path from it to the root. PathBits[i] tells
// the side of the running value at level i: 0 when it is the left child, 1
// when it is the right one.
type Proof struct {
	Leaf     field.Element   `json:"leaf"`
	Siblings []field.Element `json:"siblings"`
	PathBits []field.Element `json:"pathBits"`
}

// Hash combines two children into their parent node.
func Hash(left, right field.Element) (field.Element, error) {
	return poseidon.Hash(left, right)
}

// ComputeRoot walks the path from leaf to the root and returns the
// resulting root.
func ComputeRoot(leaf field.Element, siblings, pathBits []field.Element, depth int) (field.Element, error) {
	if len(siblings) != depth || len(pathBits) != depth {
		return field.Element{}, fmt.Errorf("%w: expected %d levels, got %d siblings and %d path bits",
			ErrMalformedProof, depth, len(siblings), len(pathBits))
	}
	cur := leaf
	for i := 0; i < depth; i++ {
		var err error
		switch {
		case pathBits[i].IsZero():
			cur, err = Hash(cur, siblings[i])
		case pathBits[i].Equal(field.One()):
			cur, err = Hash(siblings[i], cur)
		default:
			return field.Element{}, fmt.Errorf("%w: path bit %d is %s", ErrMalformedProof, i, pathBits[i])
		}
		if err != nil {
			return field.Element{}, err
		}
	}
	return cur, nil
}

// Verify reports whether leaf belongs to the tree with the given root. An
// error is only returned for malformed proofs.
func Verify(leaf field.Element, siblings, pathBits []field.Element, root field.Element, depth int) (bool, error) {
	computed, err := ComputeRoot(leaf, siblings, pathBits, depth)
	if err != nil {
		return false, err
	}
	return computed.Equal(root), nil
}

// Check verifies the proof against root, returning ErrProofFailed when the
// leaf does not belong to the tree.
func (p *Proof) Check(root field.Element, depth int) error {
	ok, err := Verify(p.Leaf, p.Siblings, p.PathBits, root, depth)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProofFailed
	}
	return nil
}

// PathBitsFromIndex returns the path bits of the leaf at index, least
// significant bit first.
func PathBitsFromIndex(index uint64, depth int) []field.Element {
	bits := make([]field.Element, depth)
	for i := 0; i < depth; i++ {
		bits[i] = field.FromUint64((index >> uint(i)) & 1)
	}
	return bits
}
