package jobs

import (
	"encoding/json"
	"time"
)

const TypeEmailConfirmation = "email.confirmation"

// EmailConfirmationPayload carries everything the worker needs to render and
// send the confirmation mail without another users lookup.
type EmailConfirmationPayload struct {
	UserID           int64     `json:"userId"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	VerificationLink string    `json:"verificationLink"`
	ConfirmCode      int       `json:"confirmCode"`
	RequestedAt      time.Time `json:"requestedAt"`
}

func (p EmailConfirmationPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
