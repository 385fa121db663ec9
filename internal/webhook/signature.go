package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"net/http"
	"strings"
)

const (
	SignatureHeader       = "X-Hub-Signature-256"
	LegacySignatureHeader = "X-Hub-Signature"
)

// ErrSignatureMismatch is returned when a callback is unsigned or its
// signature does not match the shared secret.
var ErrSignatureMismatch = errors.New("webhook signature mismatch")

// VerifySignature checks the GitHub-style HMAC signature of body. The
// SHA-256 header is preferred; the legacy SHA-1 header is accepted when it
// is the only one present.
func VerifySignature(secret string, body []byte, header http.Header) error {
	if secret == "" {
		return fmt.Errorf("webhook secret is not configured")
	}

	if sig := strings.TrimSpace(header.Get(SignatureHeader)); sig != "" {
		return verify(sha256.New, "sha256=", secret, body, sig)
	}
	if sig := strings.TrimSpace(header.Get(LegacySignatureHeader)); sig != "" {
		return verify(sha1.New, "sha1=", secret, body, sig)
	}
	return fmt.Errorf("%w: no signature header", ErrSignatureMismatch)
}

func verify(h func() hash.Hash, prefix, secret string, body []byte, signature string) error {
	if !strings.HasPrefix(signature, prefix) {
		return fmt.Errorf("%w: expected %s prefix", ErrSignatureMismatch, prefix)
	}
	decoded, err := hex.DecodeString(strings.TrimPrefix(signature, prefix))
	if err != nil {
		return fmt.Errorf("%w: decode hex signature: %v", ErrSignatureMismatch, err)
	}

	mac := hmac.New(h, []byte(secret))
	mac.Write(body)
	if subtle.ConstantTimeCompare(decoded, mac.Sum(nil)) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign returns the X-Hub-Signature-256 value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
