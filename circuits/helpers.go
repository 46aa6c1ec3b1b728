package circuits

import (
	"github.com/consensys/gnark/frontend"

	"github.com/vocdoni/shielded-notes/crypto/field"
)

// PadElements pads arr to n elements with zeros, if needed.
func PadElements(arr []field.Element, n int) []field.Element {
	padded := make([]field.Element, n)
	copy(padded, arr)
	return padded
}

// ElementsToStrings converts the elements to their base 10 representation,
// padded to n elements with zeros.
func ElementsToStrings(arr []field.Element, n int) []string {
	strs := make([]string, 0, n)
	for _, e := range PadElements(arr, n) {
		strs = append(strs, e.String())
	}
	return strs
}

// ElementsToVariables converts the elements into circuit assignments.
func ElementsToVariables(arr []field.Element) []frontend.Variable {
	vars := make([]frontend.Variable, len(arr))
	for i, e := range arr {
		vars[i] = e.BigInt()
	}
	return vars
}
