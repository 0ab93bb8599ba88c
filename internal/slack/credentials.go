// Package slack provides Slack Web API integration: envelope validation, strict
// decoding of response payloads and the user, channel and history fetchers.
package slack

import (
	"github.com/pkg/errors"
)

// ErrNoToken is returned when no bot token was provided.
var ErrNoToken = errors.New("slack bot token is not set (export SLACK_BOT_TOKEN)")

// NewCredentials returns credentials for the given bot token.
// The token is checked before any request is made.
func NewCredentials(token string) (*Credentials, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	return &Credentials{Token: token}, nil
}
