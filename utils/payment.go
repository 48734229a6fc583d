package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyRazorpaySignature checks the HMAC-SHA256 signature Razorpay sends
// with a payment callback. The signed payload is "order_id|payment_id".
func VerifyRazorpaySignature(orderID, paymentID, signature, secret string) bool {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyGatewayCallback wraps the signature check into the error taxonomy
// used by the recharge flow.
func VerifyGatewayCallback(orderID, paymentID, signature, secret string) error {
	if !VerifyRazorpaySignature(orderID, paymentID, signature, secret) {
		return ErrSignatureMismatch
	}
	return nil
}
