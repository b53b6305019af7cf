package utils

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestGenerateOrderCodeFormat(t *testing.T) {
	at := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
	pattern := regexp.MustCompile(`^POS-260830-140509-\d{2}$`)

	for i := 0; i < 50; i++ {
		code := GenerateOrderCode(at)
		if !pattern.MatchString(code) {
			t.Fatalf("code %q does not match expected format", code)
		}
		suffix, err := strconv.Atoi(code[strings.LastIndex(code, "-")+1:])
		if err != nil {
			t.Fatalf("suffix of %q is not numeric: %v", code, err)
		}
		if suffix < 10 || suffix > 99 {
			t.Fatalf("suffix %d out of range [10,99]", suffix)
		}
	}
}
