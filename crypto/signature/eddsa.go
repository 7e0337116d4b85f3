package signature

import (
	goEd25519 "crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"io"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/oasisprotocol/sighost/common/errors"
)

// EdDSAKeyPair is an Ed25519 key pair.
type EdDSAKeyPair struct {
	keyPairBase

	privateKey ed25519.PrivateKey
}

func (kp *EdDSAKeyPair) sign(message []byte) (Signature, error) {
	if len(kp.privateKey) != ed25519.PrivateKeySize {
		return nil, ErrSigningFailure
	}

	return Signature(ed25519.Sign(kp.privateKey, message)), nil
}

func (kp *EdDSAKeyPair) wipePrivateKey() {
	wipeBytes(kp.privateKey)
}

type edDSAKeyPairBuilder struct{}

// Algorithm returns the algorithm this builder constructs key pairs
// for.
func (edDSAKeyPairBuilder) Algorithm() Algorithm {
	return Ed25519
}

// Generate generates a new Ed25519 key pair, using entropy from rng.
func (edDSAKeyPairBuilder) Generate(rng io.Reader) (KeyPair, error) {
	if rng == nil {
		rng = rand.Reader
	}

	_, privateKey, err := ed25519.GenerateKey(rng)
	if err != nil {
		return nil, ErrRNGFailure
	}

	// The PKCS#8 structure wraps the RFC 8032 seed, which the standard
	// library derives from its own key type.
	seed := privateKey.Seed()
	stdKey := goEd25519.NewKeyFromSeed(seed)
	pkcs8, err := x509.MarshalPKCS8PrivateKey(stdKey)
	wipeBytes(stdKey)
	wipeBytes(seed)
	if err != nil {
		wipeBytes(privateKey)
		return nil, ErrInvalidKey
	}

	return newEdDSAKeyPair(privateKey, pkcs8), nil
}

// Import imports an Ed25519 key pair from its PKCS#8 encoded form.
func (edDSAKeyPairBuilder) Import(data []byte, enc KeyPairEncoding) (KeyPair, error) {
	if enc != KeyPairEncodingPKCS8 {
		return nil, errors.WithContext(ErrUnsupported, enc.String())
	}

	key, err := x509.ParsePKCS8PrivateKey(data)
	if err != nil {
		return nil, ErrInvalidKey
	}
	stdKey, ok := key.(goEd25519.PrivateKey)
	if !ok {
		// Well formed PKCS#8, but not an Ed25519 private key.
		return nil, ErrInvalidKey
	}

	privateKey := ed25519.NewKeyFromSeed(stdKey.Seed())
	wipeBytes(stdKey)

	return newEdDSAKeyPair(privateKey, append([]byte{}, data...)), nil
}

func newEdDSAKeyPair(privateKey ed25519.PrivateKey, pkcs8 []byte) *EdDSAKeyPair {
	rawPub := privateKey.Public().(ed25519.PublicKey)

	kp := &EdDSAKeyPair{
		keyPairBase: keyPairBase{
			refs:  sharedRefs{count: 1},
			alg:   Ed25519,
			pkcs8: pkcs8,
			public: PublicKey{
				alg: Ed25519,
				raw: append([]byte{}, rawPub...),
			},
		},
		privateKey: privateKey,
	}
	kp.wipeParsed = kp.wipePrivateKey

	return kp
}

func checkEdDSAPublicKey(raw []byte) error {
	if len(raw) != ed25519.PublicKeySize {
		return ErrInvalidKey
	}
	return nil
}

func verifyEdDSA(rawPublicKey, message []byte, sig Signature) error {
	if len(rawPublicKey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return ErrVerificationFailed
	}
	if !ed25519.Verify(ed25519.PublicKey(rawPublicKey), message, sig) {
		return ErrVerificationFailed
	}
	return nil
}
