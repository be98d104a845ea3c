package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

// HMACVerifier implements payment.SignatureVerifier with HMAC-SHA256 over the
// callback's order reference, status and notified amount, keyed by the shared
// merchant secret. The signature is base64 encoded.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier keyed with the merchant secret
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Verify recomputes the signature and compares it to the notification's.
// hmac.Equal keeps the comparison constant time.
func (v *HMACVerifier) Verify(n payment.IncomingNotification) error {
	if n.Signature == "" {
		return shared.ErrInvalidSignature
	}

	provided, err := base64.StdEncoding.DecodeString(n.Signature)
	if err != nil {
		return shared.ErrInvalidSignature
	}

	if !hmac.Equal(provided, v.sign(n)) {
		return shared.ErrInvalidSignature
	}
	return nil
}

// Sign computes the expected signature for a notification. Exposed so tests
// and the sandbox provider simulator can produce valid callbacks.
func (v *HMACVerifier) Sign(n payment.IncomingNotification) string {
	return base64.StdEncoding.EncodeToString(v.sign(n))
}

func (v *HMACVerifier) sign(n payment.IncomingNotification) []byte {
	var b strings.Builder
	b.WriteString(n.OrderRef)
	b.WriteString(n.Status)
	b.WriteString(strconv.FormatInt(n.AmountMinor, 10))

	h := hmac.New(sha256.New, v.secret)
	h.Write([]byte(b.String()))
	return h.Sum(nil)
}

var _ payment.SignatureVerifier = (*HMACVerifier)(nil)
