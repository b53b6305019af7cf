package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOrderCode builds a human-auditable order code in the form
// POS-YYMMDD-HHMMSS-NN. The two-digit suffix does not guarantee uniqueness on
// its own; callers rely on the unique column constraint and retry on
// collision.
func GenerateOrderCode(t time.Time) string {
	return fmt.Sprintf("POS-%s-%s-%02d", t.Format("060102"), t.Format("150405"), 10+rand.Intn(90))
}
