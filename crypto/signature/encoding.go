package signature

import (
	"math/big"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/oasisprotocol/sighost/common/errors"
)

// EncodeSignature serializes a raw signature into the given encoding.
// The DER encoding is only defined for the ECDSA algorithms.
func EncodeSignature(alg Algorithm, sig Signature, enc SignatureEncoding) ([]byte, error) {
	size := rawSignatureSize(alg)
	if size == 0 {
		return nil, errors.WithContext(ErrUnsupported, alg.String())
	}

	switch enc {
	case SignatureEncodingRaw:
		if len(sig) != size {
			return nil, ErrMalformedSignature
		}
		return append([]byte{}, sig...), nil
	case SignatureEncodingDER:
		if alg == Ed25519 {
			return nil, errors.WithContext(ErrUnsupported, enc.String())
		}
		return ECDSASignatureToDER(alg, sig)
	default:
		return nil, errors.WithContext(ErrUnsupported, enc.String())
	}
}

// DecodeSignature deserializes an encoded signature into its raw form.
func DecodeSignature(alg Algorithm, data []byte, enc SignatureEncoding) (Signature, error) {
	size := rawSignatureSize(alg)
	if size == 0 {
		return nil, errors.WithContext(ErrUnsupported, alg.String())
	}

	switch enc {
	case SignatureEncodingRaw:
		if len(data) != size {
			return nil, ErrMalformedSignature
		}
		return Signature(append([]byte{}, data...)), nil
	case SignatureEncodingDER:
		if alg == Ed25519 {
			return nil, errors.WithContext(ErrUnsupported, enc.String())
		}
		return ECDSASignatureFromDER(alg, data)
	default:
		return nil, errors.WithContext(ErrUnsupported, enc.String())
	}
}

// ECDSASignatureToDER converts a fixed width r || s ECDSA signature
// into an ASN.1 DER SEQUENCE of the two INTEGERs.
func ECDSASignatureToDER(alg Algorithm, sig Signature) ([]byte, error) {
	params := ecdsaAlgorithms[alg]
	if params == nil {
		return nil, errors.WithContext(ErrUnsupported, alg.String())
	}
	if len(sig) != 2*params.scalarSize {
		return nil, ErrMalformedSignature
	}

	r := new(big.Int).SetBytes(sig[:params.scalarSize])
	s := new(big.Int).SetBytes(sig[params.scalarSize:])
	if r.Sign() == 0 || s.Sign() == 0 {
		return nil, ErrMalformedSignature
	}

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})

	der, err := b.Bytes()
	if err != nil {
		return nil, ErrMalformedSignature
	}
	return der, nil
}

// ECDSASignatureFromDER converts an ASN.1 DER encoded ECDSA signature
// into the fixed width r || s form.
func ECDSASignatureFromDER(alg Algorithm, der []byte) (Signature, error) {
	params := ecdsaAlgorithms[alg]
	if params == nil {
		return nil, errors.WithContext(ErrUnsupported, alg.String())
	}

	var (
		inner cryptobyte.String
		r, s  big.Int
	)
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(&r) ||
		!inner.ReadASN1Integer(&s) ||
		!inner.Empty() {
		return nil, ErrMalformedSignature
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return nil, ErrMalformedSignature
	}
	if r.BitLen() > 8*params.scalarSize || s.BitLen() > 8*params.scalarSize {
		return nil, ErrMalformedSignature
	}

	sig := make([]byte, 2*params.scalarSize)
	r.FillBytes(sig[:params.scalarSize])
	s.FillBytes(sig[params.scalarSize:])

	return Signature(sig), nil
}

func rawSignatureSize(alg Algorithm) int {
	switch alg {
	case Ed25519:
		return ed25519.SignatureSize
	default:
		if params := ecdsaAlgorithms[alg]; params != nil {
			return 2 * params.scalarSize
		}
		return 0
	}
}
