package sighost

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oasisprotocol/sighost/common/errors"
	"github.com/oasisprotocol/sighost/crypto/signature"
	"github.com/oasisprotocol/sighost/handles"
)

func TestHostSignVerify(t *testing.T) {
	for _, alg := range signature.Algorithms {
		alg := alg
		t.Run(alg.String(), func(t *testing.T) {
			require := require.New(t)

			host := New()
			defer host.Shutdown()

			kp, err := host.GenerateKeyPair(alg, nil)
			require.NoError(err, "GenerateKeyPair")

			rawPub, err := host.PublicKey(kp)
			require.NoError(err, "PublicKey")

			st, err := host.OpenSignState(kp)
			require.NoError(err, "OpenSignState")
			require.NoError(host.SignUpdate(st, []byte{0x01, 0x02}), "SignUpdate")
			require.NoError(host.SignUpdate(st, []byte{0x03}), "SignUpdate (more)")
			sig, err := host.SignFinalize(st)
			require.NoError(err, "SignFinalize")

			vst, err := host.OpenVerifyState(alg, rawPub)
			require.NoError(err, "OpenVerifyState")
			require.NoError(host.VerifyUpdate(vst, []byte{0x01, 0x02, 0x03}), "VerifyUpdate")
			require.NoError(host.VerifyFinalize(vst, sig), "VerifyFinalize")

			// A different message must not verify.
			vst2, err := host.OpenVerifyState(alg, rawPub)
			require.NoError(err, "OpenVerifyState (tampered)")
			require.NoError(host.VerifyUpdate(vst2, []byte{0x01, 0x02, 0x04}), "VerifyUpdate (tampered)")
			err = host.VerifyFinalize(vst2, sig)
			require.True(errors.Is(err, signature.ErrVerificationFailed), "VerifyFinalize (tampered)")

			// Finalize is repeatable, the state's buffer is never
			// consumed.
			sig2, err := host.SignFinalize(st)
			require.NoError(err, "SignFinalize (repeat)")
			require.NoError(host.VerifyFinalize(vst, sig2), "VerifyFinalize (repeat)")

			for _, handle := range []handles.Handle{kp, st, vst, vst2} {
				require.NoError(host.CloseHandle(handle), "CloseHandle")
			}
		})
	}
}

func TestHostInvalidHandles(t *testing.T) {
	require := require.New(t)

	host := New()
	defer host.Shutdown()

	// Operations against handles that were never allocated.
	_, err := host.ExportKeyPair(42, signature.KeyPairEncodingPKCS8)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "ExportKeyPair(unallocated)")
	_, err = host.PublicKey(0)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "PublicKey(0)")
	err = host.SignUpdate(42, nil)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "SignUpdate(unallocated)")
	_, err = host.SignFinalize(42)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "SignFinalize(unallocated)")
	err = host.VerifyUpdate(42, nil)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "VerifyUpdate(unallocated)")
	err = host.VerifyFinalize(42, nil)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "VerifyFinalize(unallocated)")
	err = host.CloseHandle(42)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "CloseHandle(unallocated)")
	_, err = host.OpenSignState(42)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "OpenSignState(unallocated)")

	// Kind confusion: a key pair handle is not a state handle and vice
	// versa.
	kp, err := host.GenerateKeyPair(signature.Ed25519, nil)
	require.NoError(err, "GenerateKeyPair")
	st, err := host.OpenSignState(kp)
	require.NoError(err, "OpenSignState")

	err = host.SignUpdate(kp, []byte("x"))
	require.True(errors.Is(err, handles.ErrInvalidHandle), "SignUpdate(key pair handle)")
	_, err = host.ExportKeyPair(st, signature.KeyPairEncodingPKCS8)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "ExportKeyPair(state handle)")
	_, err = host.OpenSignState(st)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "OpenSignState(state handle)")
	err = host.VerifyUpdate(st, nil)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "VerifyUpdate(sign state handle)")

	// Close invalidates, and a double close reports the same error.
	require.NoError(host.CloseHandle(kp), "CloseHandle")
	err = host.CloseHandle(kp)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "double CloseHandle")
	_, err = host.PublicKey(kp)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "PublicKey after close")

	require.NoError(host.CloseHandle(st), "CloseHandle (state)")
}

func TestHostStateOutlivesKeyPair(t *testing.T) {
	require := require.New(t)

	host := New()
	defer host.Shutdown()

	kp, err := host.GenerateKeyPair(signature.Ed25519, nil)
	require.NoError(err, "GenerateKeyPair")
	rawPub, err := host.PublicKey(kp)
	require.NoError(err, "PublicKey")

	st, err := host.OpenSignState(kp)
	require.NoError(err, "OpenSignState")

	// Closing the key pair handle must not invalidate the state, the
	// state owns its own share of the key pair.
	require.NoError(host.CloseHandle(kp), "CloseHandle (key pair)")

	msg := []byte("the state keeps the key alive")
	require.NoError(host.SignUpdate(st, msg), "SignUpdate")
	sig, err := host.SignFinalize(st)
	require.NoError(err, "SignFinalize")

	vst, err := host.OpenVerifyState(signature.Ed25519, rawPub)
	require.NoError(err, "OpenVerifyState")
	require.NoError(host.VerifyUpdate(vst, msg), "VerifyUpdate")
	require.NoError(host.VerifyFinalize(vst, sig), "VerifyFinalize")
}

func TestHostExportImport(t *testing.T) {
	require := require.New(t)

	host := New()
	defer host.Shutdown()

	kp, err := host.GenerateKeyPair(signature.ECDSAWithP256AndSHA256, nil)
	require.NoError(err, "GenerateKeyPair")

	exported, err := host.ExportKeyPair(kp, signature.KeyPairEncodingPKCS8)
	require.NoError(err, "ExportKeyPair")

	imported, err := host.ImportKeyPair(signature.ECDSAWithP256AndSHA256, exported, signature.KeyPairEncodingPKCS8)
	require.NoError(err, "ImportKeyPair")
	require.NotEqual(kp, imported, "the imported key pair gets a fresh handle")

	pubA, err := host.PublicKey(kp)
	require.NoError(err, "PublicKey (original)")
	pubB, err := host.PublicKey(imported)
	require.NoError(err, "PublicKey (imported)")
	require.Equal(pubA, pubB, "import should preserve the public key")

	// Unsupported parameters and malformed blobs surface the
	// appropriate errors.
	_, err = host.ExportKeyPair(kp, signature.KeyPairEncodingPEM)
	require.True(errors.Is(err, signature.ErrUnsupported), "ExportKeyPair(PEM)")
	_, err = host.ImportKeyPair(signature.ECDSAWithP256AndSHA256, []byte("bogus"), signature.KeyPairEncodingPKCS8)
	require.True(errors.Is(err, signature.ErrInvalidKey), "ImportKeyPair(garbage)")
	_, err = host.GenerateKeyPair(signature.AlgorithmInvalid, nil)
	require.True(errors.Is(err, signature.ErrUnsupported), "GenerateKeyPair(invalid)")
	_, err = host.OpenVerifyState(signature.Ed25519, []byte("short"))
	require.True(errors.Is(err, signature.ErrInvalidKey), "OpenVerifyState(malformed key)")
}

func TestHostCapacity(t *testing.T) {
	require := require.New(t)

	host := NewWithRegistry(handles.NewWithCapacity(1))
	defer host.Shutdown()

	kp, err := host.GenerateKeyPair(signature.Ed25519, nil)
	require.NoError(err, "GenerateKeyPair")

	_, err = host.GenerateKeyPair(signature.Ed25519, nil)
	require.True(errors.Is(err, handles.ErrTooManyHandles), "GenerateKeyPair above capacity")
	_, err = host.OpenSignState(kp)
	require.True(errors.Is(err, handles.ErrTooManyHandles), "OpenSignState above capacity")

	// The key pair stays usable after the rejected registrations, and
	// closing frees capacity.
	_, err = host.PublicKey(kp)
	require.NoError(err, "PublicKey after rejected registrations")
	require.NoError(host.CloseHandle(kp), "CloseHandle")
	_, err = host.GenerateKeyPair(signature.Ed25519, nil)
	require.NoError(err, "GenerateKeyPair after close")
}

func TestHostShutdown(t *testing.T) {
	require := require.New(t)

	host := New()

	kp, err := host.GenerateKeyPair(signature.Ed25519, nil)
	require.NoError(err, "GenerateKeyPair")
	st, err := host.OpenSignState(kp)
	require.NoError(err, "OpenSignState")

	host.Shutdown()

	_, err = host.PublicKey(kp)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "PublicKey after Shutdown")
	_, err = host.SignFinalize(st)
	require.True(errors.Is(err, handles.ErrInvalidHandle), "SignFinalize after Shutdown")

	// The host stays usable after a shutdown.
	kp, err = host.GenerateKeyPair(signature.Ed25519, nil)
	require.NoError(err, "GenerateKeyPair after Shutdown")
	require.NoError(host.CloseHandle(kp), "CloseHandle after Shutdown")
}
