package signature

import (
	"sync"
)

// SignState incrementally accumulates a message to be signed with its
// bound key pair.
//
// The state holds its own ownership share of the key pair, so the key
// pair outlives an independent release of the caller's share for as
// long as the state itself is live.  The accumulation buffer only ever
// grows; Sign does not reset or freeze it, and may be called
// repeatedly as the buffer grows.
type SignState struct {
	refs sharedRefs

	kp KeyPair

	mu    sync.Mutex
	input []byte
}

// NewSignState creates a signing state bound to the key pair, taking
// its own ownership share of it.
func NewSignState(kp KeyPair) (*SignState, error) {
	if err := kp.Acquire(); err != nil {
		return nil, err
	}

	return &SignState{
		refs: sharedRefs{count: 1},
		kp:   kp,
	}, nil
}

// Update appends data to the accumulated message.
func (s *SignState) Update(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input = append(s.input, data...)
}

// Sign signs the accumulated message.  For a deterministic scheme the
// signature is byte-identical across calls over an unchanged buffer,
// for ECDSA a fresh nonce is drawn on every call, so repeated
// signatures are each valid but need not be byte-identical.
func (s *SignState) Sign() (Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kp.sign(s.input)
}

// Acquire takes an additional ownership share of the signing state.
func (s *SignState) Acquire() error {
	return s.refs.acquire()
}

// Release releases one ownership share of the signing state.  When the
// final share is released the state's key pair share is released in
// turn, synchronously.
func (s *SignState) Release() {
	s.refs.release(s.destroy)
}

func (s *SignState) destroy() {
	s.kp.Release()
}

// VerifyState incrementally accumulates a message to be verified
// against a candidate signature with its bound public key.
type VerifyState struct {
	refs sharedRefs

	pub PublicKey

	mu    sync.Mutex
	input []byte
}

// NewVerifyState creates a verification state bound to the public key.
func NewVerifyState(pub PublicKey) *VerifyState {
	return &VerifyState{
		refs: sharedRefs{count: 1},
		pub:  pub,
	}
}

// Update appends data to the accumulated message.
func (s *VerifyState) Update(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input = append(s.input, data...)
}

// Verify checks the candidate signature over the accumulated message,
// returning nil on success and ErrVerificationFailed on any mismatch.
// Like Sign, Verify does not reset or freeze the buffer.
func (s *VerifyState) Verify(sig Signature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pub.Verify(s.input, sig)
}

// Acquire takes an additional ownership share of the verification
// state.
func (s *VerifyState) Acquire() error {
	return s.refs.acquire()
}

// Release releases one ownership share of the verification state.
func (s *VerifyState) Release() {
	s.refs.release(func() {})
}
