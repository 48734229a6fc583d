package utils

import (
	"regexp"

	"github.com/kabaadwala/marketplace/models"
)

// Chat moderation filter. Messages are matched against three pattern
// groups: contact sharing, external payment mentions and escrow bypass
// attempts. At most one violation per group is reported per message.

var contactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{10}\b`),
	regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	regexp.MustCompile(`(?i)\bwhatsapp\b`),
	regexp.MustCompile(`(?i)\btelegram\b`),
	regexp.MustCompile(`(?i)\binstagram\b`),
}

var externalPaymentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpaytm\b`),
	regexp.MustCompile(`(?i)\bgpay\b`),
	regexp.MustCompile(`(?i)\bphonepe\b`),
	regexp.MustCompile(`(?i)\bupi\b`),
	regexp.MustCompile(`(?i)\bcash\b`),
	regexp.MustCompile(`(?i)\bdirect\b.*\bpay\b`),
	regexp.MustCompile(`(?i)\boutside\b.*\bapp\b`),
	regexp.MustCompile(`(?i)\bbank\b.*\btransfer\b`),
	regexp.MustCompile(`(?i)\bneft\b`),
	regexp.MustCompile(`(?i)\brtgs\b`),
}

var escrowBypassPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbypass\b`),
	regexp.MustCompile(`(?i)\bavoid\b.*\bfee\b`),
	regexp.MustCompile(`(?i)\bdirect\b.*\bdeal\b`),
	regexp.MustCompile(`(?i)\bno\b.*\bcommission\b`),
	regexp.MustCompile(`(?i)\boff\b.*\bplatform\b`),
	regexp.MustCompile(`(?i)\bmeet\b.*\bperson\b`),
	regexp.MustCompile(`(?i)\bcash\b.*\bdelivery\b`),
}

// Violation is one detected policy breach in a chat message
type Violation struct {
	Type   string
	Detail string
}

// CheckMessageContent runs the moderation patterns over message content and
// returns the violations found, one per pattern group at most.
func CheckMessageContent(content string) []Violation {
	var violations []Violation

	for _, p := range contactPatterns {
		if p.MatchString(content) {
			violations = append(violations, Violation{models.ViolationContactSharing, "Contact information detected"})
			break
		}
	}
	for _, p := range externalPaymentPatterns {
		if p.MatchString(content) {
			violations = append(violations, Violation{models.ViolationExternalPayment, "External payment method detected"})
			break
		}
	}
	for _, p := range escrowBypassPatterns {
		if p.MatchString(content) {
			violations = append(violations, Violation{models.ViolationEscrowBypass, "Escrow bypass attempt detected"})
			break
		}
	}

	return violations
}
