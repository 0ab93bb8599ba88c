package slack

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// FieldError reports a field missing from an otherwise successful response.
type FieldError struct {
	Path string // e.g. members[3].profile.image_72
}

func (e *FieldError) Error() string {
	return "missing field " + e.Path
}

// Wire shapes. Every field is a pointer so absence can be told apart from
// an empty value.

type wireMember struct {
	ID      *string      `json:"id"`
	Name    *string      `json:"name"`
	Profile *wireProfile `json:"profile"`
}

type wireProfile struct {
	DisplayName *string `json:"display_name"`
	Image24     *string `json:"image_24"`
	Image32     *string `json:"image_32"`
	Image72     *string `json:"image_72"`
	Image192    *string `json:"image_192"`
	Image512    *string `json:"image_512"`
}

type wireChannel struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

// parentUserKey marks a thread reply.
const parentUserKey = "parent_user_id"

// DecodeUsers builds the user directory from a users.list envelope.
func DecodeUsers(env Envelope) (UserDirectory, error) {
	var members []wireMember
	if err := env.Field("members", &members); err != nil {
		return nil, err
	}

	users := make(UserDirectory, len(members))
	for i, m := range members {
		path := fmt.Sprintf("members[%d]", i)
		if m.Profile == nil {
			return nil, &FieldError{Path: path + ".profile"}
		}
		p := m.Profile

		fields := []struct {
			name string
			v    *string
		}{
			{"id", m.ID},
			{"name", m.Name},
			{"profile.display_name", p.DisplayName},
			{"profile.image_24", p.Image24},
			{"profile.image_32", p.Image32},
			{"profile.image_72", p.Image72},
			{"profile.image_192", p.Image192},
			{"profile.image_512", p.Image512},
		}
		for _, f := range fields {
			if f.v == nil {
				return nil, &FieldError{Path: path + "." + f.name}
			}
		}

		users[*m.ID] = User{
			ID:          *m.ID,
			Name:        *m.Name,
			DisplayName: *p.DisplayName,
			FaviconImg:  [5]string{*p.Image24, *p.Image32, *p.Image72, *p.Image192, *p.Image512},
		}
	}
	return users, nil
}

// DecodeChannels builds the name -> ID directory from a conversations.list envelope.
func DecodeChannels(env Envelope) (ChannelDirectory, error) {
	var list []wireChannel
	if err := env.Field("channels", &list); err != nil {
		return nil, err
	}

	channels := make(ChannelDirectory, len(list))
	for i, ch := range list {
		if ch.ID == nil {
			return nil, &FieldError{Path: fmt.Sprintf("channels[%d].id", i)}
		}
		if ch.Name == nil {
			return nil, &FieldError{Path: fmt.Sprintf("channels[%d].name", i)}
		}
		channels[*ch.Name] = *ch.ID
	}
	return channels, nil
}

// DecodeHistory extracts top-level messages from a conversations.history
// envelope, keeping the order returned by the API.
func DecodeHistory(env Envelope) ([]Message, error) {
	var raw []map[string]json.RawMessage
	if err := env.Field("messages", &raw); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(raw))
	for i, m := range raw {
		if IsThreadReply(m) {
			continue
		}
		path := fmt.Sprintf("messages[%d]", i)

		var msg Message
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"user", &msg.UserID},
			{"text", &msg.Text},
			{"ts", &msg.Timestamp},
		} {
			v, ok := m[f.key]
			if !ok || isNull(v) {
				return nil, &FieldError{Path: path + "." + f.key}
			}
			if err := json.Unmarshal(v, f.dst); err != nil {
				return nil, errors.Wrapf(err, "decode %s.%s", path, f.key)
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// IsThreadReply reports whether a raw message is a reply inside a thread.
// Replies are recognised by the presence of the parent_user_id key alone.
func IsThreadReply(m map[string]json.RawMessage) bool {
	_, ok := m[parentUserKey]
	return ok
}
