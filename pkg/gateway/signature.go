package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the gateway callback signature: hex-encoded HMAC-SHA256
// over "<orderRef>|<paymentRef>" keyed with the shared secret.
func Signature(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a supplied callback signature in constant time.
func VerifySignature(secret, orderRef, paymentRef, supplied string) bool {
	expected := Signature(secret, orderRef, paymentRef)
	return hmac.Equal([]byte(expected), []byte(supplied))
}
