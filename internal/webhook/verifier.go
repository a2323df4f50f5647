package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/recibohq/recibo/internal/logger"
)

// SignatureHeaderAliases are the header names the gateway has used for
// the webhook checksum, checked in priority order. The first present
// header wins.
var SignatureHeaderAliases = []string{
	"X-Event-Checksum",
	"X-Gateway-Signature",
	"Gateway-Signature",
}

// Verify reports whether signature is the hex HMAC-SHA256 of rawBody
// under secret. The comparison is constant time. rawBody must be the
// exact bytes received on the wire; re-serializing the parsed payload
// changes the bytes and breaks verification.
func Verify(rawBody []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	presented, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	return hmac.Equal(presented, expected)
}

// Sign returns the hex HMAC-SHA256 of body under secret. Used by tests
// and outbound tooling to produce valid signatures.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// HeaderGetter returns the first value of a request header, "" when
// absent. It matches gin's Context.GetHeader.
type HeaderGetter func(name string) string

// ExtractSignature returns the presented signature from the first
// populated alias header.
func ExtractSignature(getHeader HeaderGetter) string {
	for _, name := range SignatureHeaderAliases {
		if v := getHeader(name); v != "" {
			return v
		}
	}
	return ""
}

// LogRejection emits the structured security entry for a failed
// signature check. It records shape only, never the signature value or
// the secret.
func LogRejection(log *logger.Logger, signature string, bodyLen int, clientIP, userAgent string) {
	log.Warnw("webhook signature rejected",
		"signature_present", signature != "",
		"signature_length", len(signature),
		"body_length", bodyLen,
		"ip", clientIP,
		"user_agent", userAgent,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}
