package utils

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateSKUFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^V-[A-Z2-9]{4}-[A-Z2-9]{4}$`)

	for i := 0; i < 100; i++ {
		sku := GenerateSKU()
		if !pattern.MatchString(sku) {
			t.Fatalf("sku %q does not match expected format", sku)
		}
		for _, r := range sku[2:] {
			if r == '-' {
				continue
			}
			if !strings.ContainsRune(skuAlphabet, r) {
				t.Fatalf("sku %q contains %q outside the allowed alphabet", sku, r)
			}
		}
	}
}

func TestSKUAlphabetExcludesAmbiguousGlyphs(t *testing.T) {
	for _, r := range "0O1IL" {
		if strings.ContainsRune(skuAlphabet, r) {
			t.Errorf("alphabet must not contain ambiguous glyph %q", r)
		}
	}
}

func TestFallbackSKUPrefix(t *testing.T) {
	if sku := FallbackSKU(); !strings.HasPrefix(sku, "V-") {
		t.Errorf("fallback sku %q missing V- prefix", sku)
	}
}
