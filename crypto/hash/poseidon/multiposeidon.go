// Package poseidon computes circomlib compatible Poseidon digests of field
// elements.
//
// Up to 16 inputs are hashed with a single permutation of width n+1 and a
// zero capacity element, exactly like circomlib. Longer inputs are split in
// chunks of 16 elements, each chunk is hashed and the chunk digests are
// hashed again with the capacity element set to the total number of inputs,
// so inputs of different lengths never share a permutation input.
package poseidon

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/types"
)

var (
	ErrNoInputs      = errors.New("no inputs provided")
	ErrTooManyInputs = errors.New("too many inputs")
)

// Hash returns the Poseidon digest of the inputs.
func Hash(inputs ...field.Element) (field.Element, error) {
	res, err := MultiPoseidon(field.BigInts(inputs...)...)
	if err != nil {
		return field.Element{}, err
	}
	return field.FromBigInt(res)
}

// HashBig is like Hash but takes integers, rejecting the ones outside of
// the field instead of reducing them.
func HashBig(inputs ...*big.Int) (field.Element, error) {
	for i, in := range inputs {
		if _, err := field.FromBigInt(in); err != nil {
			return field.Element{}, fmt.Errorf("input %d: %w", i, err)
		}
	}
	res, err := MultiPoseidon(inputs...)
	if err != nil {
		return field.Element{}, err
	}
	return field.FromBigInt(res)
}

// MultiPoseidon hashes up to 256 integers, see the package documentation for
// the chunking scheme.
func MultiPoseidon(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) > types.MaxHashInputs {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyInputs, len(inputs), types.MaxHashInputs)
	} else if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(inputs) <= types.PoseidonChunkSize {
		return poseidon.Hash(inputs)
	}
	// calculate chunk hashes
	hashes := []*big.Int{}
	for start := 0; start < len(inputs); start += types.PoseidonChunkSize {
		end := min(start+types.PoseidonChunkSize, len(inputs))
		hash, err := poseidon.Hash(inputs[start:end])
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	// the capacity element carries the input length
	return poseidon.HashWithState(hashes, big.NewInt(int64(len(inputs))))
}
