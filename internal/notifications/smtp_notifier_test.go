package notifications

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirmationTemplate(t *testing.T) {
	var body bytes.Buffer

	err := confirmationTmpl.Execute(&body, SendConfirmationInput{
		Name:  "Jane",
		Link:  "http://localhost:3000/auth/confirm-email/tok",
		Code:  12345678,
		Email: "jane@example.com",
	})

	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	html := body.String()

	for _, want := range []string{
		"Hello Jane,",
		`href="http://localhost:3000/auth/confirm-email/tok"`,
		"<strong>12345678</strong>",
		"expire in 12 hours",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered mail missing %q:\n%s", want, html)
		}
	}
}

func TestConfirmationTemplateEscapesName(t *testing.T) {
	var body bytes.Buffer

	err := confirmationTmpl.Execute(&body, SendConfirmationInput{
		Name: `<script>alert("x")</script>`,
		Link: "http://localhost:3000/auth/confirm-email/tok",
		Code: 12345678,
	})

	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if strings.Contains(body.String(), "<script>") {
		t.Fatal("template must escape HTML in user-supplied fields")
	}
}
