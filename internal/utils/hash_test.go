package utils

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("kopi-enak-123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "kopi-enak-123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "kopi-enak-123") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("wrong password accepted")
	}
}
