package service

import (
	"testing"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
)

func TestMaskPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"11999998888", "(11) *****-8888"},
		{"21987654321", "(21) *****-4321"},
		// embedded 11-digit block is still redacted
		{"5511999998888", "(55) *****-998888"},
		{"119999988881", "(11) *****-88881"},
		// digits that never form a block fail closed
		{"123", "(**) *****-****"},
		{"(11) 99999-8888", "(**) *****-****"},
		{"", ""},
		{"sem telefone", "sem telefone"},
	}
	for _, tc := range cases {
		if got := MaskPhone(tc.in); got != tc.want {
			t.Errorf("MaskPhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskPhoneNeverExposesRawNumber(t *testing.T) {
	// every value carrying an 11-digit mobile block must come back changed
	for _, in := range []string{"11999998888", "5511999998888", "119999988881", "tel: 11999998888"} {
		if got := MaskPhone(in); got == in {
			t.Errorf("MaskPhone(%q) left the raw value exposed", in)
		}
	}
}

func TestMaskPhoneIdempotent(t *testing.T) {
	for _, in := range []string{"11999998888", "5511999998888", "123", "(11) 99999-8888", ""} {
		once := MaskPhone(in)
		twice := MaskPhone(once)
		if once != twice {
			t.Errorf("Masking %q is not idempotent: %q vs %q", in, once, twice)
		}
	}
}

func TestMaskClaim(t *testing.T) {
	claim := &entity.Claim{
		CustomerName:  "Maria da Silva",
		CustomerPhone: "11999998888",
		CustomerEmail: "maria@example.com",
	}
	MaskClaim(claim)

	if claim.CustomerPhone != "(11) *****-8888" {
		t.Errorf("Unexpected masked phone: %s", claim.CustomerPhone)
	}
	if claim.CustomerEmail != MaskedEmail {
		t.Errorf("Unexpected masked email: %s", claim.CustomerEmail)
	}
	if claim.CustomerName != "Maria da Silva" {
		t.Errorf("Customer name must not be masked: %s", claim.CustomerName)
	}

	// applying the mask again changes nothing
	MaskClaim(claim)
	if claim.CustomerPhone != "(11) *****-8888" || claim.CustomerEmail != MaskedEmail {
		t.Errorf("Second mask pass changed the claim: %s / %s", claim.CustomerPhone, claim.CustomerEmail)
	}
}
