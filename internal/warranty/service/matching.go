package service

import (
	"strings"
	"unicode"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes and drops combining marks, so "Açaí" and "Acai"
// normalize to the same key. Store names self-reported on the public form
// rarely carry the right accents.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeStoreName lowers, trims and de-accents a store name for exact
// matching during intake.
func NormalizeStoreName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// matchStore resolves a free-text store name against the active store
// directory: exact normalized match on trade name, legal name or any
// registered alias. Returns nil when nothing matches; the claim then
// stays PENDING_REVIEW for manual linking.
func matchStore(stores []entity.Store, input string) *entity.Store {
	key := NormalizeStoreName(input)
	if key == "" {
		return nil
	}
	for i := range stores {
		s := &stores[i]
		if NormalizeStoreName(s.TradeName) == key || NormalizeStoreName(s.LegalName) == key {
			return s
		}
		for _, alias := range s.Aliases {
			if NormalizeStoreName(alias) == key {
				return s
			}
		}
	}
	return nil
}
