package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signPayload(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifyRazorpaySignature(t *testing.T) {
	secret := "test_secret"
	sig := signPayload("order_123", "pay_456", secret)

	assert.True(t, VerifyRazorpaySignature("order_123", "pay_456", sig, secret))
}

func TestVerifyGatewayCallback(t *testing.T) {
	secret := "test_secret"
	sig := signPayload("order_123", "pay_456", secret)

	assert.NoError(t, VerifyGatewayCallback("order_123", "pay_456", sig, secret))
	assert.ErrorIs(t, VerifyGatewayCallback("order_123", "pay_456", "bad", secret), ErrSignatureMismatch)
}

func TestVerifyRazorpaySignatureRejectsTampering(t *testing.T) {
	secret := "test_secret"
	sig := signPayload("order_123", "pay_456", secret)

	assert.False(t, VerifyRazorpaySignature("order_999", "pay_456", sig, secret), "different order id")
	assert.False(t, VerifyRazorpaySignature("order_123", "pay_999", sig, secret), "different payment id")
	assert.False(t, VerifyRazorpaySignature("order_123", "pay_456", sig, "other_secret"), "different secret")
	assert.False(t, VerifyRazorpaySignature("order_123", "pay_456", "deadbeef", secret), "garbage signature")
	assert.False(t, VerifyRazorpaySignature("order_123", "pay_456", "", secret), "empty signature")
}
