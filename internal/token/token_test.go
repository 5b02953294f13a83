package token_test

import (
	"testing"
	"time"

	"github.com/MatviieshynO/auth-service/internal/token"
)

func TestIssueAndParse(t *testing.T) {
	iss := token.NewIssuer("test-secret")

	raw, err := iss.Issue(42, "jane@example.com")

	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := iss.Parse(raw)

	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if claims.UserID != 42 {
		t.Fatalf("UserID = %d, want 42", claims.UserID)
	}

	if claims.UserEmail != "jane@example.com" {
		t.Fatalf("UserEmail = %q, want jane@example.com", claims.UserEmail)
	}

	wantExpiry := time.Now().Add(token.ConfirmationTTL)
	gotExpiry := claims.ExpiresAt.Time

	if gotExpiry.Before(wantExpiry.Add(-time.Minute)) || gotExpiry.After(wantExpiry.Add(time.Minute)) {
		t.Fatalf("expiry %v not within a minute of %v", gotExpiry, wantExpiry)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, err := token.NewIssuer("secret-a").Issue(1, "a@example.com")

	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := token.NewIssuer("secret-b").Parse(raw); err == nil {
		t.Fatal("expected a signature error for a token signed with a different secret")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := token.NewIssuer("secret").Parse("not.a.jwt"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}

func TestGenerateConfirmationCodeRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := token.GenerateConfirmationCode()
		if code < 10_000_000 || code > 99_999_999 {
			t.Fatalf("code %d is not an eight digit number", code)
		}
	}
}

func TestComputeExpiry(t *testing.T) {
	got := token.ComputeExpiry(12)
	want := time.Now().Add(12 * time.Hour)

	if got.Before(want.Add(-time.Minute)) || got.After(want.Add(time.Minute)) {
		t.Fatalf("expiry %v not within a minute of %v", got, want)
	}
}
