package signature

import (
	"crypto/rand"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"

	"github.com/oasisprotocol/sighost/common/errors"
)

type batchEntry struct {
	// err is the entry's pre-resolved failure, set at Add time when
	// the entry can never verify.
	err error

	// fast is set for entries included in the Ed25519 batch verifier.
	fast bool

	pub     PublicKey
	message []byte
	sig     Signature
}

// BatchVerifier accumulates (public key, message, signature) tuples
// with Add, before verifying the entire batch with Verify.  Ed25519
// entries share a single batch verification, other algorithms are
// verified per entry.  The zero value is ready for use.
//
// Callers must not mutate added messages or signatures until Verify
// returns.
type BatchVerifier struct {
	verifier *ed25519.BatchVerifier
	entries  []batchEntry
}

// NewBatchVerifier creates an empty BatchVerifier.
func NewBatchVerifier() *BatchVerifier {
	return &BatchVerifier{}
}

// NewBatchVerifierWithCapacity creates an empty BatchVerifier, with
// preallocations done under the assumption that space for n Ed25519
// entries is to be reserved.
func NewBatchVerifierWithCapacity(n int) *BatchVerifier {
	v := &BatchVerifier{}
	if n > 0 {
		v.entries = make([]batchEntry, 0, n)
		v.verifier = ed25519.NewBatchVerifierWithCapacity(n)
	}

	return v
}

// Add adds a (public key, message, signature) tuple to the batch.
func (v *BatchVerifier) Add(pub PublicKey, message []byte, sig Signature) {
	switch pub.alg {
	case Ed25519:
		if len(sig) != ed25519.SignatureSize {
			v.AddError(ErrMalformedSignature)
			return
		}
		if v.verifier == nil {
			v.verifier = ed25519.NewBatchVerifier()
		}
		v.verifier.Add(ed25519.PublicKey(pub.raw), message, sig)
		v.entries = append(v.entries, batchEntry{
			fast:    true,
			pub:     pub,
			message: message,
			sig:     sig,
		})
	case ECDSAWithP256AndSHA256, ECDSAWithP384AndSHA384:
		v.entries = append(v.entries, batchEntry{
			pub:     pub,
			message: message,
			sig:     sig,
		})
	default:
		v.AddError(errors.WithContext(ErrUnsupported, pub.alg.String()))
	}
}

// AddError adds an entry that unconditionally fails with the given
// error, so that batch results stay aligned with Add order.
func (v *BatchVerifier) AddError(err error) {
	v.entries = append(v.entries, batchEntry{err: err})
}

// Verify verifies the batch, returning true iff every entry is valid,
// along with per-entry errors in Add order (nil for valid entries).
func (v *BatchVerifier) Verify() (bool, []error) {
	if len(v.entries) == 0 {
		return true, nil
	}

	// If the Ed25519 batch verifies as a whole, every fast entry is
	// valid.  Otherwise fall back to per-entry verification to
	// attribute the failures.
	batchOk := true
	if v.verifier != nil {
		batchOk = v.verifier.VerifyBatchOnly(rand.Reader)
	}

	allOk := true
	errs := make([]error, 0, len(v.entries))
	for _, entry := range v.entries {
		switch {
		case entry.err != nil:
			allOk = false
			errs = append(errs, entry.err)
		case entry.fast && batchOk:
			errs = append(errs, nil)
		default:
			if err := entry.pub.Verify(entry.message, entry.sig); err != nil {
				allOk = false
				errs = append(errs, err)
			} else {
				errs = append(errs, nil)
			}
		}
	}

	return allOk, errs
}
