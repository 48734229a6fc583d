package utils

import (
	"testing"

	"github.com/kabaadwala/marketplace/models"
	"github.com/stretchr/testify/assert"
)

func violationTypes(violations []Violation) []string {
	types := make([]string, 0, len(violations))
	for _, v := range violations {
		types = append(types, v.Type)
	}
	return types
}

func TestCheckMessageContentClean(t *testing.T) {
	assert.Empty(t, CheckMessageContent("Is the copper scrap still available?"))
	assert.Empty(t, CheckMessageContent("Can you deliver 50kg by Friday?"))
}

func TestCheckMessageContentContactSharing(t *testing.T) {
	cases := []string{
		"call me on 9876543210",
		"reach me at someone@example.com",
		"message me on WhatsApp",
		"I'm on telegram",
	}
	for _, content := range cases {
		v := CheckMessageContent(content)
		assert.Contains(t, violationTypes(v), models.ViolationContactSharing, "content: %q", content)
	}
}

func TestCheckMessageContentExternalPayment(t *testing.T) {
	cases := []string{
		"I can pay via Paytm instead",
		"send your UPI id",
		"gpay works for me",
		"let's do a bank transfer",
	}
	for _, content := range cases {
		v := CheckMessageContent(content)
		assert.Contains(t, violationTypes(v), models.ViolationExternalPayment, "content: %q", content)
	}
}

func TestCheckMessageContentEscrowBypass(t *testing.T) {
	cases := []string{
		"we can bypass the platform",
		"direct deal, no commission",
		"let's take this off the platform",
	}
	for _, content := range cases {
		v := CheckMessageContent(content)
		assert.Contains(t, violationTypes(v), models.ViolationEscrowBypass, "content: %q", content)
	}
}

func TestCheckMessageContentOneViolationPerGroup(t *testing.T) {
	// Two contact patterns in one message still yield one contact violation
	v := CheckMessageContent("whatsapp me at 9876543210")
	types := violationTypes(v)

	count := 0
	for _, typ := range types {
		if typ == models.ViolationContactSharing {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCheckMessageContentMultipleGroups(t *testing.T) {
	v := CheckMessageContent("whatsapp me on 9876543210, I'll pay by upi, no commission for you")
	types := violationTypes(v)

	assert.Len(t, v, 3)
	assert.Contains(t, types, models.ViolationContactSharing)
	assert.Contains(t, types, models.ViolationExternalPayment)
	assert.Contains(t, types, models.ViolationEscrowBypass)
}
