package security_test

import (
	"testing"

	"github.com/MatviieshynO/auth-service/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("Test123!")

	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if hash == "Test123!" {
		t.Fatal("hash must not equal the plaintext")
	}

	ok, err := security.CheckPassword("Test123!", hash)

	if err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}

	if !ok {
		t.Fatal("expected the original password to verify")
	}

	ok, err = security.CheckPassword("WrongPass1!", hash)

	if err != nil {
		t.Fatalf("CheckPassword with wrong password: %v", err)
	}

	if ok {
		t.Fatal("a wrong password must not verify")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := security.HashPassword("Test123!")

	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	second, err := security.HashPassword("Test123!")

	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same plaintext must differ")
	}

	for _, h := range []string{first, second} {
		ok, err := security.CheckPassword("Test123!", h)
		if err != nil || !ok {
			t.Fatalf("both digests must verify, got ok=%v err=%v", ok, err)
		}
	}
}

func TestCheckPasswordMalformedDigest(t *testing.T) {
	_, err := security.CheckPassword("Test123!", "not-a-bcrypt-digest")

	if err == nil {
		t.Fatal("expected an error for a malformed digest")
	}
}
