// Package sighost implements a handle based host for asymmetric
// signature operations.  Callers interact with key pairs and signing
// or verification states exclusively through opaque handles, key
// material only ever crosses the interface in serialized form.
package sighost

import (
	"io"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oasisprotocol/sighost/common/logging"
	"github.com/oasisprotocol/sighost/crypto/signature"
	"github.com/oasisprotocol/sighost/handles"
)

// Flags has the configuration flags.
var Flags = flag.NewFlagSet("", flag.ContinueOnError)

// Every registry object carries shared ownership semantics.
var (
	_ handles.Target = (signature.KeyPair)(nil)
	_ handles.Target = (*signature.SignState)(nil)
	_ handles.Target = (*signature.VerifyState)(nil)
)

// Host dispatches handle based signature operations.  It is safe for
// concurrent use.
type Host struct {
	registry *handles.Registry

	logger *logging.Logger
}

// New creates a new host, with the handle registry drawn from the
// configuration.
func New() *Host {
	return NewWithRegistry(handles.New())
}

// NewWithRegistry creates a new host around an existing handle
// registry.
func NewWithRegistry(registry *handles.Registry) *Host {
	initMetrics()

	return &Host{
		registry: registry,
		logger:   logging.GetLogger("sighost"),
	}
}

// GenerateKeyPair generates a new key pair for the given algorithm and
// returns its handle.  If rng is nil, the default entropy source will
// be used.
func (h *Host) GenerateKeyPair(alg signature.Algorithm, rng io.Reader) (_ handles.Handle, err error) {
	defer recordOperation(opGenerateKeyPair, &err)

	builder, err := signature.NewKeyPairBuilder(alg)
	if err != nil {
		return 0, err
	}
	kp, err := builder.Generate(rng)
	if err != nil {
		return 0, err
	}

	handle, err := h.registry.Register(kp)
	if err != nil {
		kp.Release()
		return 0, err
	}

	h.logger.Debug("generated key pair",
		"algorithm", alg,
		"handle", handle,
	)

	return handle, nil
}

// ImportKeyPair deserializes a key pair for the given algorithm and
// returns its handle.  The caller retains ownership of data.
func (h *Host) ImportKeyPair(alg signature.Algorithm, data []byte, enc signature.KeyPairEncoding) (_ handles.Handle, err error) {
	defer recordOperation(opImportKeyPair, &err)

	builder, err := signature.NewKeyPairBuilder(alg)
	if err != nil {
		return 0, err
	}
	kp, err := builder.Import(data, enc)
	if err != nil {
		return 0, err
	}

	handle, err := h.registry.Register(kp)
	if err != nil {
		kp.Release()
		return 0, err
	}

	h.logger.Debug("imported key pair",
		"algorithm", alg,
		"handle", handle,
	)

	return handle, nil
}

// ExportKeyPair serializes the private key behind the handle.
func (h *Host) ExportKeyPair(handle handles.Handle, enc signature.KeyPairEncoding) (_ []byte, err error) {
	defer recordOperation(opExportKeyPair, &err)

	kp, err := h.keyPair(handle)
	if err != nil {
		return nil, err
	}
	defer kp.Release()

	return kp.ExportPrivateKey(enc)
}

// PublicKey returns the raw public key behind the key pair handle.
func (h *Host) PublicKey(handle handles.Handle) (_ []byte, err error) {
	defer recordOperation(opPublicKey, &err)

	kp, err := h.keyPair(handle)
	if err != nil {
		return nil, err
	}
	defer kp.Release()

	pub := kp.Public()
	return pub.MarshalBinary()
}

// OpenSignState opens a new signing state over the key pair and
// returns its handle.  The state owns its own share of the key pair,
// closing the key pair handle does not invalidate the state.
func (h *Host) OpenSignState(keyPair handles.Handle) (_ handles.Handle, err error) {
	defer recordOperation(opOpenSignState, &err)

	kp, err := h.keyPair(keyPair)
	if err != nil {
		return 0, err
	}
	defer kp.Release()

	st, err := signature.NewSignState(kp)
	if err != nil {
		return 0, err
	}

	handle, err := h.registry.Register(st)
	if err != nil {
		st.Release()
		return 0, err
	}

	return handle, nil
}

// SignUpdate appends data to the signing state's input.
func (h *Host) SignUpdate(handle handles.Handle, data []byte) (err error) {
	defer recordOperation(opSignUpdate, &err)

	st, err := h.signState(handle)
	if err != nil {
		return err
	}
	defer st.Release()

	st.Update(data)
	return nil
}

// SignFinalize signs the signing state's accumulated input.  The state
// stays valid, further updates and finalizations are legal.
func (h *Host) SignFinalize(handle handles.Handle) (_ signature.Signature, err error) {
	defer recordOperation(opSignFinalize, &err)

	st, err := h.signState(handle)
	if err != nil {
		return nil, err
	}
	defer st.Release()

	return st.Sign()
}

// OpenVerifyState opens a new verification state over a raw public key
// and returns its handle.
func (h *Host) OpenVerifyState(alg signature.Algorithm, publicKey []byte) (_ handles.Handle, err error) {
	defer recordOperation(opOpenVerifyState, &err)

	pub, err := signature.NewPublicKey(alg, publicKey)
	if err != nil {
		return 0, err
	}
	st := signature.NewVerifyState(pub)

	handle, err := h.registry.Register(st)
	if err != nil {
		st.Release()
		return 0, err
	}

	return handle, nil
}

// VerifyUpdate appends data to the verification state's input.
func (h *Host) VerifyUpdate(handle handles.Handle, data []byte) (err error) {
	defer recordOperation(opVerifyUpdate, &err)

	st, err := h.verifyState(handle)
	if err != nil {
		return err
	}
	defer st.Release()

	st.Update(data)
	return nil
}

// VerifyFinalize verifies the signature against the verification
// state's accumulated input.  The state stays valid, further updates
// and finalizations are legal.
func (h *Host) VerifyFinalize(handle handles.Handle, sig []byte) (err error) {
	defer recordOperation(opVerifyFinalize, &err)

	st, err := h.verifyState(handle)
	if err != nil {
		return err
	}
	defer st.Release()

	return st.Verify(signature.Signature(sig))
}

// CloseHandle closes the handle, regardless of its kind.  The object
// behind the handle is destroyed synchronously unless live states
// still share it.
func (h *Host) CloseHandle(handle handles.Handle) (err error) {
	defer recordOperation(opCloseHandle, &err)

	return h.registry.Close(handle)
}

// Shutdown closes every live handle.
func (h *Host) Shutdown() {
	h.registry.Shutdown()
	h.logger.Debug("host shut down")
}

func (h *Host) keyPair(handle handles.Handle) (signature.KeyPair, error) {
	target, err := h.registry.Get(handle)
	if err != nil {
		return nil, err
	}
	kp, ok := target.(signature.KeyPair)
	if !ok {
		return nil, handles.ErrInvalidHandle
	}
	if err = kp.Acquire(); err != nil {
		// Lost the race against a concurrent close.
		return nil, handles.ErrInvalidHandle
	}
	return kp, nil
}

func (h *Host) signState(handle handles.Handle) (*signature.SignState, error) {
	target, err := h.registry.Get(handle)
	if err != nil {
		return nil, err
	}
	st, ok := target.(*signature.SignState)
	if !ok {
		return nil, handles.ErrInvalidHandle
	}
	if err = st.Acquire(); err != nil {
		return nil, handles.ErrInvalidHandle
	}
	return st, nil
}

func (h *Host) verifyState(handle handles.Handle) (*signature.VerifyState, error) {
	target, err := h.registry.Get(handle)
	if err != nil {
		return nil, err
	}
	st, ok := target.(*signature.VerifyState)
	if !ok {
		return nil, handles.ErrInvalidHandle
	}
	if err = st.Acquire(); err != nil {
		return nil, handles.ErrInvalidHandle
	}
	return st, nil
}

func init() {
	Flags.AddFlagSet(handles.Flags)

	_ = viper.BindPFlags(Flags)
}
