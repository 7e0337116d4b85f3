// Package signature provides key pairs, incremental signing and
// verification states, and signature values for the supported
// asymmetric signature algorithms.
//
// Signature mathematics is delegated to per-algorithm primitive
// providers; this package owns the uniform interface over the
// algorithm families and the secure-erasure discipline applied to
// private key material.
package signature

import (
	"bytes"
	"encoding/hex"

	"github.com/oasisprotocol/sighost/common/errors"
	"github.com/oasisprotocol/sighost/common/pem"
)

var publicPEMTypes = map[Algorithm]string{
	Ed25519:                "ED25519 PUBLIC KEY",
	ECDSAWithP256AndSHA256: "ECDSA P-256 PUBLIC KEY",
	ECDSAWithP384AndSHA384: "ECDSA P-384 PUBLIC KEY",
}

// Signature is a finalized signature as an opaque byte sequence.  It
// carries no algorithm tag, the caller must track the producing
// algorithm separately.
type Signature []byte

// Equal compares vs another signature for byte-wise equality.
func (s Signature) Equal(cmp Signature) bool {
	return bytes.Equal(s, cmp)
}

// String returns a string representation of the signature.
func (s Signature) String() string {
	return hex.EncodeToString(s)
}

// PublicKey is a public key for one of the supported algorithms.
type PublicKey struct {
	alg Algorithm
	raw []byte
}

// NewPublicKey constructs a public key from an algorithm identifier
// and the raw public key bytes.
func NewPublicKey(alg Algorithm, raw []byte) (PublicKey, error) {
	switch alg {
	case Ed25519:
		if err := checkEdDSAPublicKey(raw); err != nil {
			return PublicKey{}, err
		}
	case ECDSAWithP256AndSHA256, ECDSAWithP384AndSHA384:
		if err := checkECDSAPublicKey(alg, raw); err != nil {
			return PublicKey{}, err
		}
	default:
		return PublicKey{}, errors.WithContext(ErrUnsupported, alg.String())
	}

	return PublicKey{
		alg: alg,
		raw: append([]byte{}, raw...),
	}, nil
}

// Algorithm returns the algorithm identifier of the public key.
func (k PublicKey) Algorithm() Algorithm {
	return k.alg
}

// Verify returns nil iff the signature is valid for the public key
// over the message.  Any mismatch fails with ErrVerificationFailed
// without differentiating the cause.
func (k PublicKey) Verify(message []byte, sig Signature) error {
	switch k.alg {
	case Ed25519:
		return verifyEdDSA(k.raw, message, sig)
	case ECDSAWithP256AndSHA256, ECDSAWithP384AndSHA384:
		return verifyECDSA(k.alg, k.raw, message, sig)
	default:
		return errors.WithContext(ErrUnsupported, k.alg.String())
	}
}

// MarshalBinary returns a copy of the raw public key bytes.
func (k PublicKey) MarshalBinary() ([]byte, error) {
	return append([]byte{}, k.raw...), nil
}

// MarshalPEM encodes the public key into PEM form, with the PEM block
// type identifying the algorithm.
func (k PublicKey) MarshalPEM() ([]byte, error) {
	pemType, ok := publicPEMTypes[k.alg]
	if !ok {
		return nil, errors.WithContext(ErrUnsupported, k.alg.String())
	}

	return pem.Marshal(pemType, k.raw)
}

// Equal compares vs another public key for equality.
func (k PublicKey) Equal(cmp PublicKey) bool {
	return k.alg == cmp.alg && bytes.Equal(k.raw, cmp.raw)
}

// String returns a string representation of the public key.
func (k PublicKey) String() string {
	return hex.EncodeToString(k.raw)
}

// PublicKeyFromPEM decodes a PEM marshaled public key, inferring the
// algorithm from the PEM block type.
func PublicKeyFromPEM(data []byte) (PublicKey, error) {
	pemType, body, err := pem.Decode(data)
	if err != nil {
		return PublicKey{}, ErrInvalidKey
	}

	for alg, algType := range publicPEMTypes {
		if pemType == algType {
			return NewPublicKey(alg, body)
		}
	}

	return PublicKey{}, errors.WithContext(ErrUnsupported, pemType)
}
