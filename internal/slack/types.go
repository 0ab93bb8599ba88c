package slack

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// PageLimit is the page size requested from every list/fetch call.
// Only the first page is ever read.
const PageLimit = 1000

// FaviconSizes lists the avatar sizes in the order they appear in User.FaviconImg.
var FaviconSizes = [5]int{24, 32, 72, 192, 512}

// Credentials holds authentication data for Slack API access.
type Credentials struct {
	Token string // xoxb-... bot token
}

// User is a workspace member as kept in the user directory.
type User struct {
	ID          string    `json:"-" csv:"-"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	FaviconImg  [5]string `json:"favicon_img"` // ordered as FaviconSizes
}

// Label returns the most human friendly name available for the user.
func (u User) Label() string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.Name != "":
		return u.Name
	}
	return u.ID
}

// UserDirectory maps user IDs to users.
type UserDirectory map[string]User

// Label returns the label of the user with the given ID, or the ID itself
// when the user is not in the directory.
func (d UserDirectory) Label(id string) string {
	if u, ok := d[id]; ok {
		return u.Label()
	}
	return id
}

// ChannelDirectory maps channel names to channel IDs. Archived channels are
// never present.
type ChannelDirectory map[string]string

// Message is a top-level channel message. Thread replies are never represented.
type Message struct {
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Time returns the message timestamp as a time.Time.
func (m Message) Time() (time.Time, error) {
	return ParseTimestamp(m.Timestamp)
}

// ParseTimestamp converts a Slack timestamp such as "1582934400.000200" to a time.
func ParseTimestamp(ts string) (time.Time, error) {
	secs, frac, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp %q", ts)
	}
	var nsec int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		if nsec, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return time.Time{}, errors.Wrapf(err, "invalid timestamp %q", ts)
		}
	}
	return time.Unix(sec, nsec), nil
}

// UnixSeconds returns the whole-second part of a Slack timestamp.
func UnixSeconds(ts string) string {
	secs, _, _ := strings.Cut(ts, ".")
	return secs
}
