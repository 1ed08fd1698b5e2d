package service

import (
	"regexp"
	"strings"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
)

// MaskedEmail fixed sentinel replacing customer emails for store callers.
const MaskedEmail = "***@***.com"

// brPhonePattern matches an 11-digit Brazilian mobile block (2-digit area
// code + 5 + 4) anywhere in the value, so prefixed or suffixed variants
// like 5511999998888 are still redacted. Masked output never contains 11
// consecutive digits, which keeps the mask idempotent.
var brPhonePattern = regexp.MustCompile(`(\d{2})(\d{5})(\d{4})`)

// maskedPhone fixed sentinel for phone values carrying digits that never
// line up with the expected block shape. Failing closed beats echoing an
// unrecognized number back to a store caller.
const maskedPhone = "(**) *****-****"

var anyDigit = regexp.MustCompile(`\d`)

// MaskPhone redacts the middle block of a phone number, keeping the area
// code and the last four digits: 11999998888 -> (11) *****-8888. Values
// with digits but no recognizable block collapse to a full-redaction
// sentinel.
func MaskPhone(phone string) string {
	if brPhonePattern.MatchString(phone) {
		return brPhonePattern.ReplaceAllString(phone, "($1) *****-$3")
	}
	if strings.Contains(phone, "*") || !anyDigit.MatchString(phone) {
		return phone
	}
	return maskedPhone
}

// MaskClaim redacts the customer contact fields in place. Applied to every
// claim a store-role caller receives; deterministic and idempotent.
func MaskClaim(c *entity.Claim) {
	c.CustomerPhone = MaskPhone(c.CustomerPhone)
	c.CustomerEmail = MaskedEmail
}
