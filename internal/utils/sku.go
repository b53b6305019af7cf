package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// skuAlphabet leaves out 0/O, 1/I and similar glyphs so printed labels stay
// unambiguous.
const skuAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomSKUPart(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = skuAlphabet[rand.Intn(len(skuAlphabet))]
	}
	return string(b)
}

// GenerateSKU returns a candidate variant SKU like V-K7QM-2XWD. Uniqueness is
// the caller's concern: check against the variants table and regenerate on
// collision.
func GenerateSKU() string {
	return fmt.Sprintf("V-%s-%s", randomSKUPart(4), randomSKUPart(4))
}

// FallbackSKU is used when repeated generation keeps colliding.
func FallbackSKU() string {
	return fmt.Sprintf("V-%d", time.Now().UnixMilli())
}
