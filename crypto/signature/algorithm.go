package signature

import (
	"fmt"
	"strings"
)

// Algorithm is a supported signature algorithm.
type Algorithm int

const (
	// AlgorithmInvalid is the invalid algorithm.
	AlgorithmInvalid Algorithm = iota
	// Ed25519 is the Ed25519 signature scheme (RFC 8032).
	Ed25519
	// ECDSAWithP256AndSHA256 is ECDSA over the NIST P-256 curve with a
	// SHA-256 message digest.
	ECDSAWithP256AndSHA256
	// ECDSAWithP384AndSHA384 is ECDSA over the NIST P-384 curve with a
	// SHA-384 message digest.
	ECDSAWithP384AndSHA384
)

// Algorithms is the list of supported algorithms.
var Algorithms = []Algorithm{
	Ed25519,
	ECDSAWithP256AndSHA256,
	ECDSAWithP384AndSHA384,
}

// String returns the string representation of an Algorithm.
func (a Algorithm) String() string {
	switch a {
	case Ed25519:
		return "Ed25519"
	case ECDSAWithP256AndSHA256:
		return "ECDSA_P256_SHA256"
	case ECDSAWithP384AndSHA384:
		return "ECDSA_P384_SHA384"
	default:
		return "[unknown algorithm]"
	}
}

// MarshalText encodes an Algorithm into text form.
func (a Algorithm) MarshalText() ([]byte, error) {
	switch a {
	case Ed25519, ECDSAWithP256AndSHA256, ECDSAWithP384AndSHA384:
		return []byte(a.String()), nil
	default:
		return nil, fmt.Errorf("signature: invalid algorithm: %d", int(a))
	}
}

// UnmarshalText decodes a text marshaled Algorithm.
func (a *Algorithm) UnmarshalText(text []byte) error {
	str := string(text)
	for _, alg := range Algorithms {
		if strings.EqualFold(str, alg.String()) {
			*a = alg
			return nil
		}
	}
	return fmt.Errorf("signature: invalid algorithm: %s", str)
}

// KeyPairEncoding is a key pair serialization format.
type KeyPairEncoding int

const (
	// KeyPairEncodingRaw is the raw binary key pair encoding.
	KeyPairEncodingRaw KeyPairEncoding = iota
	// KeyPairEncodingPKCS8 is the DER serialized PKCS#8 key pair encoding.
	KeyPairEncodingPKCS8
	// KeyPairEncodingPEM is the PEM armored PKCS#8 key pair encoding.
	KeyPairEncodingPEM
	// KeyPairEncodingLocal is an implementation defined local key pair
	// encoding.
	KeyPairEncodingLocal
)

// String returns the string representation of a KeyPairEncoding.
func (e KeyPairEncoding) String() string {
	switch e {
	case KeyPairEncodingRaw:
		return "raw"
	case KeyPairEncodingPKCS8:
		return "PKCS8"
	case KeyPairEncodingPEM:
		return "PEM"
	case KeyPairEncodingLocal:
		return "local"
	default:
		return "[unknown key pair encoding]"
	}
}

// SignatureEncoding is a signature serialization format.
type SignatureEncoding int

const (
	// SignatureEncodingRaw is the fixed width raw signature encoding.
	SignatureEncodingRaw SignatureEncoding = iota
	// SignatureEncodingDER is the ASN.1 DER signature encoding.
	SignatureEncodingDER
)

// String returns the string representation of a SignatureEncoding.
func (e SignatureEncoding) String() string {
	switch e {
	case SignatureEncodingRaw:
		return "raw"
	case SignatureEncodingDER:
		return "DER"
	default:
		return "[unknown signature encoding]"
	}
}
