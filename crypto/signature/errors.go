package signature

import (
	"github.com/oasisprotocol/sighost/common/errors"
)

// ModuleName is the module name used for error definitions.
const ModuleName = "signature"

var (
	// ErrUnsupported is the error returned when an algorithm, encoding
	// or operation combination is not supported.
	ErrUnsupported = errors.New(ModuleName, 1, "signature: unsupported algorithm or encoding")

	// ErrInvalidKey is the error returned when encoded key material is
	// malformed or structurally invalid.
	ErrInvalidKey = errors.New(ModuleName, 2, "signature: invalid key")

	// ErrRNGFailure is the error returned when the entropy source fails
	// to supply randomness.
	ErrRNGFailure = errors.New(ModuleName, 3, "signature: entropy source failure")

	// ErrSigningFailure is the error returned when the provider rejects
	// a signing request.
	ErrSigningFailure = errors.New(ModuleName, 4, "signature: signing failure")

	// ErrVerificationFailed is the error returned when signature
	// verification fails.  The cause is deliberately undifferentiated:
	// a wrong signature, a tampered message and a wrong public key are
	// indistinguishable to the caller.
	ErrVerificationFailed = errors.New(ModuleName, 5, "signature: signature verification failed")

	// ErrMalformedSignature is the error returned when an encoded
	// signature is structurally invalid.
	ErrMalformedSignature = errors.New(ModuleName, 6, "signature: malformed signature")

	// ErrClosed is the error returned when taking an ownership share of
	// an object whose shares have all been released.
	ErrClosed = errors.New(ModuleName, 7, "signature: object already closed")
)
