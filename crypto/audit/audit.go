// Package audit encrypts transfer data to the audit authority. The pad is a
// Poseidon digest of the recipient public key and a one time nonce, and it is
// added to the data in the field:
//
//	cipher = data + Poseidon(pk.X, nonce)
//
// The pad only depends on public values and the nonce, so confidentiality
// rests on keeping the nonce private between the sender and the authority.
// A nonce must never be used twice with the same key.
package audit

import (
	"errors"
	"fmt"

	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/hash/poseidon"
	"github.com/vocdoni/shielded-notes/crypto/keys"
)

var (
	// ErrNonceReuse is returned when the same nonce is used more than once
	// in a single encryption request.
	ErrNonceReuse = errors.New("audit nonce reused")
	// ErrNoRecipients is returned when there is nobody to encrypt to.
	ErrNoRecipients = errors.New("no audit recipients")
)

// SharedSecret returns the pad shared with the holder of pk for the given
// nonce.
func SharedSecret(pk keys.PublicKey, nonce field.Element) (field.Element, error) {
	return poseidon.Hash(pk.X, nonce)
}

// Verify reports whether cipher is the encryption of data to pk with nonce.
func Verify(data field.Element, pk keys.PublicKey, nonce, cipher field.Element) (bool, error) {
	secret, err := SharedSecret(pk, nonce)
	if err != nil {
		return false, err
	}
	return data.Add(secret).Equal(cipher), nil
}

// Recipient is a public key together with the nonce used to encrypt to it.
type Recipient struct {
	PublicKey keys.PublicKey `json:"publicKey"`
	Nonce     field.Element  `json:"nonce"`
}

// EncryptMulti encrypts data independently to every recipient. Nonces must
// be unique.
func EncryptMulti(data field.Element, recipients []Recipient) ([]*Ciphertext, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	nonces := make([]field.Element, len(recipients))
	for i, r := range recipients {
		nonces[i] = r.Nonce
	}
	if err := CheckNonces(nonces); err != nil {
		return nil, err
	}
	out := make([]*Ciphertext, len(recipients))
	for i, r := range recipients {
		ct, err := Encrypt(data, r.PublicKey, r.Nonce)
		if err != nil {
			return nil, fmt.Errorf("recipient %d: %w", i, err)
		}
		out[i] = ct
	}
	return out, nil
}

// CheckNonces returns ErrNonceReuse if any nonce appears twice.
func CheckNonces(nonces []field.Element) error {
	seen := make(map[field.Element]int, len(nonces))
	for i, n := range nonces {
		if j, ok := seen[n]; ok {
			return fmt.Errorf("%w: positions %d and %d", ErrNonceReuse, j, i)
		}
		seen[n] = i
	}
	return nil
}
