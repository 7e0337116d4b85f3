package signature

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/oasisprotocol/sighost/common/errors"
)

var (
	_ KeyPairBuilder = edDSAKeyPairBuilder{}
	_ KeyPairBuilder = ecDSAKeyPairBuilder{}
	_ KeyPair        = (*EdDSAKeyPair)(nil)
	_ KeyPair        = (*ECDSAKeyPair)(nil)
)

// KeyPair is a generated or imported key pair for one of the supported
// algorithms.
//
// Key pairs are reference counted: creation yields one ownership
// share, additional shares are taken with Acquire, and the private key
// material is securely erased exactly once when the final share is
// released.  Key material is immutable after construction.
type KeyPair interface {
	// Algorithm returns the algorithm identifier fixed at construction.
	Algorithm() Algorithm

	// Public returns the public key derived at construction time.
	Public() PublicKey

	// ExportPrivateKey returns a copy of the stored encoded private key
	// material, exactly as produced at generation or import time.  Only
	// KeyPairEncodingPKCS8 is supported.
	ExportPrivateKey(enc KeyPairEncoding) ([]byte, error)

	// String returns the string representation of the key pair, which
	// MUST not include any sensitive information.
	String() string

	// Acquire takes an additional ownership share of the key pair,
	// failing with ErrClosed if all shares have been released.  Every
	// successful Acquire must be paired with exactly one Release.
	Acquire() error

	// Release releases one ownership share of the key pair.  When the
	// final share is released the encoded private key bytes and the
	// parsed private key are overwritten with zeros.
	Release()

	// sign signs the message with the private key, drawing any per
	// signature randomness from the key pair's entropy source.
	sign(message []byte) (Signature, error)
}

// KeyPairBuilder constructs key pairs for a single algorithm family.
type KeyPairBuilder interface {
	// Algorithm returns the algorithm this builder constructs key
	// pairs for.
	Algorithm() Algorithm

	// Generate generates a new key pair, using entropy from rng.  A
	// nil rng uses the system entropy source.
	Generate(rng io.Reader) (KeyPair, error)

	// Import imports a key pair from its encoded form.  Only
	// KeyPairEncodingPKCS8 is supported.
	Import(data []byte, enc KeyPairEncoding) (KeyPair, error)
}

// NewKeyPairBuilder returns the KeyPairBuilder for the given
// algorithm.  Dispatch is a pure function of the identifier.
func NewKeyPairBuilder(alg Algorithm) (KeyPairBuilder, error) {
	switch alg {
	case Ed25519:
		return edDSAKeyPairBuilder{}, nil
	case ECDSAWithP256AndSHA256, ECDSAWithP384AndSHA384:
		return ecDSAKeyPairBuilder{alg: alg}, nil
	default:
		return nil, errors.WithContext(ErrUnsupported, alg.String())
	}
}

// sharedRefs implements the ownership share bookkeeping common to all
// registry-owned objects.
type sharedRefs struct {
	count       int32
	destroyOnce sync.Once
}

func (r *sharedRefs) acquire() error {
	for {
		count := atomic.LoadInt32(&r.count)
		if count <= 0 {
			return ErrClosed
		}
		if atomic.CompareAndSwapInt32(&r.count, count, count+1) {
			return nil
		}
	}
}

func (r *sharedRefs) release(destroy func()) {
	if atomic.AddInt32(&r.count, -1) > 0 {
		return
	}
	r.destroyOnce.Do(destroy)
}

// keyPairBase holds the state shared by every key pair family.
type keyPairBase struct {
	refs sharedRefs

	alg    Algorithm
	pkcs8  []byte
	public PublicKey

	// wipeParsed erases the family's parsed private key, set by the
	// family constructor.
	wipeParsed func()
}

// Algorithm returns the algorithm identifier fixed at construction.
func (kp *keyPairBase) Algorithm() Algorithm {
	return kp.alg
}

// Public returns the public key derived at construction time.
func (kp *keyPairBase) Public() PublicKey {
	return kp.public
}

// ExportPrivateKey returns a copy of the stored encoded private key
// material.
func (kp *keyPairBase) ExportPrivateKey(enc KeyPairEncoding) ([]byte, error) {
	if enc != KeyPairEncodingPKCS8 {
		return nil, errors.WithContext(ErrUnsupported, enc.String())
	}

	// The stored bytes are returned verbatim, no re-derivation.
	return append([]byte{}, kp.pkcs8...), nil
}

// String returns anything but the actual private key backing the key
// pair.
func (kp *keyPairBase) String() string {
	return "[redacted private key]"
}

// Acquire takes an additional ownership share of the key pair.
func (kp *keyPairBase) Acquire() error {
	return kp.refs.acquire()
}

// Release releases one ownership share of the key pair, erasing the
// private key material when the final share is released.
func (kp *keyPairBase) Release() {
	kp.refs.release(kp.destroy)
}

func (kp *keyPairBase) destroy() {
	wipeBytes(kp.pkcs8)
	if kp.wipeParsed != nil {
		kp.wipeParsed()
	}
}

func wipeBytes(b []byte) {
	for idx := range b {
		b[idx] = 0
	}
}
