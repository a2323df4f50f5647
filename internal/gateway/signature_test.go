package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegritySignature(t *testing.T) {
	sum := sha256.Sum256([]byte("SUB-ABC12999900COPsecret"))
	expected := hex.EncodeToString(sum[:])

	got := IntegritySignature("SUB-ABC12", 999900, "COP", "", "secret")
	assert.Equal(t, expected, got)
}

func TestIntegritySignatureWithExpiration(t *testing.T) {
	sum := sha256.Sum256([]byte("INV-XY999900COP2025-06-01T00:00:00Zsecret"))
	expected := hex.EncodeToString(sum[:])

	got := IntegritySignature("INV-XY", 999900, "COP", "2025-06-01T00:00:00Z", "secret")
	assert.Equal(t, expected, got)
}

func TestRetryReferenceDeterministic(t *testing.T) {
	ref := RetryReference("inv_01HXYZABCDEF", 2)
	assert.Equal(t, "RETRY-inv_01HX-2", ref)
	assert.Equal(t, ref, RetryReference("inv_01HXYZABCDEF", 2))
}

func TestRetryReferenceShortID(t *testing.T) {
	assert.Equal(t, "RETRY-abc-1", RetryReference("abc", 1))
}
