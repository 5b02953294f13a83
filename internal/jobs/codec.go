package jobs

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MatviieshynO/auth-service/internal/domain/job"
)

var (
	ErrInvalidJobType      = errors.New("invalid job type")
	ErrInvalidJobPayload   = errors.New("invalid job payload")
	ErrPayloadTypeMismatch = errors.New("payload type mismatch for job type")
)

func IsKnownType(t string) bool {
	return t == TypeEmailConfirmation
}

// EncodePayload marshals a typed payload after checking it matches the job type.
func EncodePayload(t string, payload any) ([]byte, error) {
	if !IsKnownType(t) {
		return nil, ErrInvalidJobType
	}

	switch t {
	case TypeEmailConfirmation:
		switch payload.(type) {
		case EmailConfirmationPayload, *EmailConfirmationPayload:
		default:
			return nil, ErrPayloadTypeMismatch
		}
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals job.Payload into the typed payload for its type.
func DecodePayload(j job.Job) (any, error) {
	if !IsKnownType(j.Type) {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case TypeEmailConfirmation:
		var p EmailConfirmationPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}
