package signature

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oasisprotocol/sighost/common/errors"
)

func mustSign(t *testing.T, kp KeyPair, msg []byte) Signature {
	st, err := NewSignState(kp)
	require.NoError(t, err, "NewSignState")
	defer st.Release()
	st.Update(msg)
	sig, err := st.Sign()
	require.NoError(t, err, "Sign")
	return sig
}

func TestBatchVerifier(t *testing.T) {
	msg := []byte("batch verification test message")

	edBuilder, err := NewKeyPairBuilder(Ed25519)
	require.NoError(t, err, "NewKeyPairBuilder (Ed25519)")
	edKp, err := edBuilder.Generate(nil)
	require.NoError(t, err, "Generate (Ed25519)")
	defer edKp.Release()
	edSig := mustSign(t, edKp, msg)

	ecBuilder, err := NewKeyPairBuilder(ECDSAWithP256AndSHA256)
	require.NoError(t, err, "NewKeyPairBuilder (P-256)")
	ecKp, err := ecBuilder.Generate(nil)
	require.NoError(t, err, "Generate (P-256)")
	defer ecKp.Release()
	ecSig := mustSign(t, ecKp, msg)

	t.Run("EmptyBatch", func(t *testing.T) {
		var v BatchVerifier
		allOk, errs := v.Verify()
		require.True(t, allOk, "v.Verify(empty) - allOk")
		require.Nil(t, errs, "v.Verify(empty) - errs")

		allOk, errs = NewBatchVerifier().Verify()
		require.True(t, allOk, "NewBatchVerifier().Verify() - allOk")
		require.Nil(t, errs, "NewBatchVerifier().Verify() - errs")
	})

	t.Run("GoodBatch", func(t *testing.T) {
		v := NewBatchVerifier()
		v.Add(edKp.Public(), msg, edSig)
		v.Add(edKp.Public(), msg, edSig)
		v.Add(ecKp.Public(), msg, ecSig)

		allOk, errs := v.Verify()
		require.True(t, allOk, "v.Verify(good) - allOk")
		require.Len(t, errs, 3, "v.Verify(good) - errs length")
		for i, err := range errs {
			require.NoError(t, err, "v.Verify(good) - errs[%d]", i)
		}
	})

	t.Run("BadBatch", func(t *testing.T) {
		errTest := fmt.Errorf("signature: test error")

		v := NewBatchVerifierWithCapacity(5)
		v.Add(edKp.Public(), msg, edSig)
		v.AddError(errTest)
		v.Add(edKp.Public(), nil, edSig)
		v.Add(edKp.Public(), msg, edSig[:len(edSig)-1])
		v.Add(ecKp.Public(), msg, edSig) // right length, wrong signature

		allOk, errs := v.Verify()
		require.False(t, allOk, "v.Verify(bad) - allOk")
		require.Len(t, errs, 5, "v.Verify(bad) - errs length")

		expectedErrs := []error{
			nil,
			errTest,
			ErrVerificationFailed,
			ErrMalformedSignature,
			ErrVerificationFailed,
		}
		for i, expected := range expectedErrs {
			require.Equal(t, expected, errs[i], "v.Verify(bad) - errs[%d]", i)
		}
	})

	t.Run("UnsupportedAlgorithm", func(t *testing.T) {
		var v BatchVerifier
		v.Add(PublicKey{}, msg, edSig)

		allOk, errs := v.Verify()
		require.False(t, allOk, "v.Verify(unsupported) - allOk")
		require.Len(t, errs, 1, "v.Verify(unsupported) - errs length")
		require.True(t, errors.Is(errs[0], ErrUnsupported), "v.Verify(unsupported) - errs[0]")
	})
}
