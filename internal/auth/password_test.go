package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("pw123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "pw123" {
		t.Fatalf("password stored in clear")
	}
	if !CheckPassword(hash, "pw123") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "pw123") {
		t.Fatalf("malformed hash must not match")
	}
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d (%v)", cost, err)
	}
}

func TestHashAndCheck_LongPassword(t *testing.T) {
	long := strings.Repeat("p", 80)

	hash, err := HashPassword(long, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash of 80-byte password: %v", err)
	}
	if !CheckPassword(hash, long) {
		t.Fatalf("expected long password to match")
	}
	// Differs only past byte 72, which bcrypt alone would ignore.
	if CheckPassword(hash, strings.Repeat("p", 79)+"q") {
		t.Fatalf("expected password differing after byte 72 to fail")
	}
	if CheckPassword(hash, long[:72]) {
		t.Fatalf("expected truncated password to fail")
	}
}
