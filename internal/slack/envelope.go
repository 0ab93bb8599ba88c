package slack

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Envelope is the top-level object of a Web API response: the "ok" flag, an
// optional "error" code and the method payload.
type Envelope map[string]json.RawMessage

// ParseEnvelope decodes a raw response body into an Envelope.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrapf(err, "malformed response envelope %q", truncate(raw, 256))
	}
	if env == nil {
		return nil, errors.Errorf("malformed response envelope %q", truncate(raw, 256))
	}
	return env, nil
}

// String renders the envelope as compact JSON.
func (e Envelope) String() string {
	b, err := json.Marshal(map[string]json.RawMessage(e))
	if err != nil {
		return "<unprintable envelope>"
	}
	return string(b)
}

// Field decodes the payload field key into v. A missing or null key is a
// *FieldError.
func (e Envelope) Field(key string, v interface{}) error {
	raw, ok := e[key]
	if !ok || isNull(raw) {
		return &FieldError{Path: key}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "decode field %s", key)
	}
	return nil
}

// HasMore reports whether the response says more pages exist, either with
// "has_more" (history) or a non-empty response_metadata.next_cursor (lists).
// A "has_more" that is not a boolean is an error.
func (e Envelope) HasMore() (bool, error) {
	if raw, ok := e["has_more"]; ok {
		var more bool
		if err := json.Unmarshal(raw, &more); err != nil {
			return false, errors.Errorf("has_more is not a boolean: %s", truncate(raw, 64))
		}
		if more {
			return true, nil
		}
	}
	var meta struct {
		NextCursor string `json:"next_cursor"`
	}
	if raw, ok := e["response_metadata"]; ok && json.Unmarshal(raw, &meta) == nil {
		return meta.NextCursor != "", nil
	}
	return false, nil
}

// EnvelopeError is returned when a response does not carry "ok": true.
// The message includes the whole envelope.
type EnvelopeError struct {
	Envelope Envelope
}

func (e *EnvelopeError) Error() string {
	return "response error -> " + e.Envelope.String()
}

// Code returns the Slack error code ("channel_not_found", "invalid_auth", ...)
// or an empty string.
func (e *EnvelopeError) Code() string {
	var code string
	if raw, ok := e.Envelope["error"]; ok {
		_ = json.Unmarshal(raw, &code)
	}
	return code
}

// ValidateResponse returns env unchanged when its "ok" field is true.
// An absent, false or non-boolean "ok" yields an *EnvelopeError.
func ValidateResponse(env Envelope) (Envelope, error) {
	var ok bool
	raw, found := env["ok"]
	if !found || json.Unmarshal(raw, &ok) != nil || !ok {
		return nil, &EnvelopeError{Envelope: env}
	}
	return env, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
