package signature

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"io"
	"math/big"

	"github.com/oasisprotocol/sighost/common/errors"
)

// ecdsaParams binds an ECDSA algorithm identifier to its curve, the
// byte length of each signature half, and its message digest.
type ecdsaParams struct {
	curve      elliptic.Curve
	scalarSize int
	digest     func(message []byte) []byte
}

var ecdsaAlgorithms = map[Algorithm]*ecdsaParams{
	ECDSAWithP256AndSHA256: {
		curve:      elliptic.P256(),
		scalarSize: 32,
		digest: func(message []byte) []byte {
			h := sha256.Sum256(message)
			return h[:]
		},
	},
	ECDSAWithP384AndSHA384: {
		curve:      elliptic.P384(),
		scalarSize: 48,
		digest: func(message []byte) []byte {
			h := sha512.Sum384(message)
			return h[:]
		},
	},
}

// ECDSAKeyPair is an ECDSA key pair for one of the supported
// curve/digest combinations.
type ECDSAKeyPair struct {
	keyPairBase

	params     *ecdsaParams
	privateKey *ecdsa.PrivateKey
	rng        io.Reader
}

func (kp *ECDSAKeyPair) sign(message []byte) (Signature, error) {
	// A fresh nonce is drawn from the key pair's entropy source on
	// every call, repeated signatures over the same message are not
	// byte-identical.
	r, s, err := ecdsa.Sign(kp.rng, kp.privateKey, kp.params.digest(message))
	if err != nil {
		return nil, ErrRNGFailure
	}

	sig := make([]byte, 2*kp.params.scalarSize)
	r.FillBytes(sig[:kp.params.scalarSize])
	s.FillBytes(sig[kp.params.scalarSize:])

	return Signature(sig), nil
}

func (kp *ECDSAKeyPair) wipePrivateKey() {
	wipeECDSAScalar(kp.privateKey)
}

type ecDSAKeyPairBuilder struct {
	alg Algorithm
}

// Algorithm returns the algorithm this builder constructs key pairs
// for.
func (b ecDSAKeyPairBuilder) Algorithm() Algorithm {
	return b.alg
}

// Generate generates a new ECDSA key pair, using entropy from rng.
// The rng also becomes the key pair's nonce entropy source.
func (b ecDSAKeyPairBuilder) Generate(rng io.Reader) (KeyPair, error) {
	params := ecdsaAlgorithms[b.alg]
	if params == nil {
		return nil, errors.WithContext(ErrUnsupported, b.alg.String())
	}
	if rng == nil {
		rng = rand.Reader
	}

	privateKey, err := ecdsa.GenerateKey(params.curve, rng)
	if err != nil {
		return nil, ErrRNGFailure
	}

	pkcs8, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		wipeECDSAScalar(privateKey)
		return nil, ErrInvalidKey
	}

	return newECDSAKeyPair(b.alg, params, privateKey, pkcs8, rng), nil
}

// Import imports an ECDSA key pair from its PKCS#8 encoded form.
func (b ecDSAKeyPairBuilder) Import(data []byte, enc KeyPairEncoding) (KeyPair, error) {
	params := ecdsaAlgorithms[b.alg]
	if params == nil {
		return nil, errors.WithContext(ErrUnsupported, b.alg.String())
	}
	if enc != KeyPairEncodingPKCS8 {
		return nil, errors.WithContext(ErrUnsupported, enc.String())
	}

	key, err := x509.ParsePKCS8PrivateKey(data)
	if err != nil {
		return nil, ErrInvalidKey
	}
	privateKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		// Well formed PKCS#8, but not an ECDSA private key.
		return nil, ErrInvalidKey
	}
	if privateKey.Curve != params.curve {
		// Key for a different curve than the algorithm calls for.
		wipeECDSAScalar(privateKey)
		return nil, ErrInvalidKey
	}

	return newECDSAKeyPair(b.alg, params, privateKey, append([]byte{}, data...), rand.Reader), nil
}

func newECDSAKeyPair(alg Algorithm, params *ecdsaParams, privateKey *ecdsa.PrivateKey, pkcs8 []byte, rng io.Reader) *ECDSAKeyPair {
	kp := &ECDSAKeyPair{
		keyPairBase: keyPairBase{
			refs:  sharedRefs{count: 1},
			alg:   alg,
			pkcs8: pkcs8,
			public: PublicKey{
				alg: alg,
				raw: elliptic.Marshal(params.curve, privateKey.X, privateKey.Y),
			},
		},
		params:     params,
		privateKey: privateKey,
		rng:        rng,
	}
	kp.wipeParsed = kp.wipePrivateKey

	return kp
}

// wipeECDSAScalar does a best effort scrub of the private scalar's
// backing words.
func wipeECDSAScalar(privateKey *ecdsa.PrivateKey) {
	bits := privateKey.D.Bits()
	for idx := range bits {
		bits[idx] = 0
	}
	privateKey.D.SetInt64(0)
}

func checkECDSAPublicKey(alg Algorithm, raw []byte) error {
	params := ecdsaAlgorithms[alg]
	if params == nil {
		return errors.WithContext(ErrUnsupported, alg.String())
	}
	if x, _ := elliptic.Unmarshal(params.curve, raw); x == nil {
		return ErrInvalidKey
	}
	return nil
}

func verifyECDSA(alg Algorithm, rawPublicKey, message []byte, sig Signature) error {
	params := ecdsaAlgorithms[alg]
	if params == nil {
		return errors.WithContext(ErrUnsupported, alg.String())
	}
	if len(sig) != 2*params.scalarSize {
		return ErrVerificationFailed
	}

	x, y := elliptic.Unmarshal(params.curve, rawPublicKey)
	if x == nil {
		return ErrVerificationFailed
	}
	publicKey := &ecdsa.PublicKey{
		Curve: params.curve,
		X:     x,
		Y:     y,
	}

	r := new(big.Int).SetBytes(sig[:params.scalarSize])
	s := new(big.Int).SetBytes(sig[params.scalarSize:])
	if !ecdsa.Verify(publicKey, params.digest(message), r, s) {
		return ErrVerificationFailed
	}

	return nil
}
