package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// IntegritySignature computes the checkout integrity signature over the
// concatenation reference + amount + currency [+ expiration] + secret.
// The gateway recomputes the same digest to detect tampered checkout
// parameters.
func IntegritySignature(reference string, amountInCents int64, currency, expirationTime, secret string) string {
	concat := reference + strconv.FormatInt(amountInCents, 10) + currency
	if expirationTime != "" {
		concat += expirationTime
	}
	concat += secret

	sum := sha256.Sum256([]byte(concat))
	return hex.EncodeToString(sum[:])
}
