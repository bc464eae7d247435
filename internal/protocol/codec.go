package protocol

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/dkeye/Watch/internal/core"
)

var (
	ErrBadJSON     = errors.New("bad json")
	ErrMissingType = errors.New("missing event type")
	ErrInvalid     = errors.New("invalid payload")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type envelope struct {
	Type string `json:"type"`
}

// EventType peeks at the "type" field of a raw frame.
func EventType(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if env.Type == "" {
		return "", ErrMissingType
	}
	return env.Type, nil
}

// Decode unmarshals data into v and runs its validate tags.
func Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return core.Frame(b), nil
}
