package audit

import (
	"bytes"
	"fmt"

	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/hash/poseidon"
	"github.com/vocdoni/shielded-notes/crypto/keys"
	"github.com/vocdoni/shielded-notes/types"
)

// SizeCiphertext is the size in bytes of a serialized Ciphertext: the
// recipient key coordinates, the nonce and the cipher, little-endian.
const SizeCiphertext = 4 * types.SerializedFieldSize

// Ciphertext is a single field element encrypted to an audit authority.
type Ciphertext struct {
	Recipient keys.PublicKey `json:"recipient"`
	Nonce     field.Element  `json:"nonce"`
	Cipher    field.Element  `json:"cipher"`
}

// Encrypt encrypts data to pk using nonce.
func Encrypt(data field.Element, pk keys.PublicKey, nonce field.Element) (*Ciphertext, error) {
	secret, err := SharedSecret(pk, nonce)
	if err != nil {
		return nil, fmt.Errorf("audit encryption failed: %w", err)
	}
	return &Ciphertext{Recipient: pk, Nonce: nonce, Cipher: data.Add(secret)}, nil
}

// Decrypt recovers the plaintext. It requires the nonce, which is part of
// the ciphertext handed to the authority.
func (z *Ciphertext) Decrypt() (field.Element, error) {
	secret, err := SharedSecret(z.Recipient, z.Nonce)
	if err != nil {
		return field.Element{}, err
	}
	return z.Cipher.Sub(secret), nil
}

// Verify reports whether z encrypts data.
func (z *Ciphertext) Verify(data field.Element) (bool, error) {
	return Verify(data, z.Recipient, z.Nonce, z.Cipher)
}

// Serialize returns the SizeCiphertext bytes representation of z.
func (z *Ciphertext) Serialize() []byte {
	var buf bytes.Buffer
	for _, e := range []field.Element{z.Recipient.X, z.Recipient.Y, z.Nonce, z.Cipher} {
		buf.Write(e.Bytes())
	}
	return buf.Bytes()
}

// Deserialize reconstructs a Ciphertext from the output of Serialize.
func (z *Ciphertext) Deserialize(data []byte) error {
	if len(data) != SizeCiphertext {
		return fmt.Errorf("invalid input length: got %d bytes, expected %d bytes", len(data), SizeCiphertext)
	}
	elems := make([]field.Element, 4)
	for i := range elems {
		e, err := field.FromBytes(data[i*types.SerializedFieldSize : (i+1)*types.SerializedFieldSize])
		if err != nil {
			return err
		}
		elems[i] = e
	}
	z.Recipient = keys.PublicKey{X: elems[0], Y: elems[1]}
	z.Nonce, z.Cipher = elems[2], elems[3]
	return nil
}

// Vector is a multi element payload encrypted to a single recipient. Element
// j is padded with the sub-nonce Poseidon(nonce, j).
type Vector struct {
	Recipient keys.PublicKey  `json:"recipient"`
	Nonce     field.Element   `json:"nonce"`
	Ciphers   []field.Element `json:"ciphers"`
}

// SubNonce returns the nonce used for the element at index j of a vector.
func SubNonce(nonce field.Element, j int) (field.Element, error) {
	return poseidon.Hash(nonce, field.FromUint64(uint64(j)))
}

// EncryptVector encrypts every element of payload to pk.
func EncryptVector(payload []field.Element, pk keys.PublicKey, nonce field.Element) (*Vector, error) {
	v := &Vector{Recipient: pk, Nonce: nonce, Ciphers: make([]field.Element, len(payload))}
	for j, data := range payload {
		sub, err := SubNonce(nonce, j)
		if err != nil {
			return nil, err
		}
		ct, err := Encrypt(data, pk, sub)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", j, err)
		}
		v.Ciphers[j] = ct.Cipher
	}
	return v, nil
}

// Decrypt recovers the payload.
func (v *Vector) Decrypt() ([]field.Element, error) {
	out := make([]field.Element, len(v.Ciphers))
	for j, cipher := range v.Ciphers {
		sub, err := SubNonce(v.Nonce, j)
		if err != nil {
			return nil, err
		}
		data, err := (&Ciphertext{Recipient: v.Recipient, Nonce: sub, Cipher: cipher}).Decrypt()
		if err != nil {
			return nil, err
		}
		out[j] = data
	}
	return out, nil
}

// Verify reports whether v encrypts payload.
func (v *Vector) Verify(payload []field.Element) (bool, error) {
	if len(payload) != len(v.Ciphers) {
		return false, nil
	}
	for j, data := range payload {
		sub, err := SubNonce(v.Nonce, j)
		if err != nil {
			return false, err
		}
		ok, err := Verify(data, v.Recipient, sub, v.Ciphers[j])
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
