package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingSignatureRoundTrip(t *testing.T) {
	GenerateSecretKey()

	payload := ReadingPayload{ReadingID: "0194fdc2-fa2f-7fc0-81d4-7a0c4da5f7a3", IssuedAt: 1756339200}
	sig, err := GenerateReadingSignature(payload)
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	assert.True(t, ValidateReadingSignature(payload, sig))
}

func TestReadingSignatureRejectsTampering(t *testing.T) {
	GenerateSecretKey()

	payload := ReadingPayload{ReadingID: "0194fdc2-fa2f-7fc0-81d4-7a0c4da5f7a3", IssuedAt: 1756339200}
	sig, err := GenerateReadingSignature(payload)
	require.NoError(t, err)

	tampered := payload
	tampered.ReadingID = "0194fdc2-fa2f-7fc0-81d4-000000000000"
	assert.False(t, ValidateReadingSignature(tampered, sig))

	assert.False(t, ValidateReadingSignature(payload, "not-a-signature"))
	assert.False(t, ValidateReadingSignature(payload, ""))
}
