package field

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/arbo"

	"github.com/vocdoni/shielded-notes/types"
	"github.com/vocdoni/shielded-notes/util"
)

// FromString parses a base-10 or 0x prefixed base-16 representation. Values
// out of [0, p) are rejected with ErrOutOfRangeInput, anything that is not a
// number with ErrMalformed.
func FromString(s string) (Element, error) {
	if s == "" {
		return Element{}, fmt.Errorf("%w: empty string", ErrMalformed)
	}
	base := 10
	digits := s
	if trimmed := util.TrimHex(s); trimmed != s {
		base = 16
		digits = trimmed
	}
	if digits == "" || strings.HasPrefix(digits, "+") {
		return Element{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return Element{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return FromBigInt(b)
}

// MustFromString is like FromString but panics on error. Intended for
// constants and tests.
func MustFromString(s string) Element {
	e, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return e
}

// String returns the canonical base-10 representation of e.
func (e Element) String() string {
	return e.v.Text(10)
}

// Hex returns the 0x prefixed base-16 representation of e.
func (e Element) Hex() string {
	return "0x" + e.v.Text(16)
}

// Bytes returns the little-endian 32 byte encoding of e, the same layout
// arbo trees use for their keys and values.
func (e Element) Bytes() []byte {
	return arbo.BigIntToBytes(types.SerializedFieldSize, e.BigInt())
}

// FromBytes decodes a little-endian 32 byte encoding.
func FromBytes(b []byte) (Element, error) {
	if len(b) != types.SerializedFieldSize {
		return Element{}, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrMalformed, types.SerializedFieldSize, len(b))
	}
	return FromBigInt(arbo.BytesToBigInt(b))
}

// MarshalText implements encoding.TextMarshaler using the base-10 form.
func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, see FromString.
func (e *Element) UnmarshalText(data []byte) error {
	v, err := FromString(string(data))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// UnmarshalJSON accepts a quoted string (decimal or hex) or a bare JSON
// number.
func (e *Element) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return e.UnmarshalText([]byte(s))
	}
	return e.UnmarshalText(data)
}

// MarshalCBOR encodes e as a CBOR integer or bignum.
func (e Element) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(e.BigInt())
}

// UnmarshalCBOR decodes a CBOR integer, rejecting out of range values.
func (e *Element) UnmarshalCBOR(data []byte) error {
	b := new(big.Int)
	if err := cbor.Unmarshal(data, b); err != nil {
		return err
	}
	v, err := FromBigInt(b)
	if err != nil {
		return err
	}
	*e = v
	return nil
}
