package slack

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustEnvelope(t *testing.T, body string) Envelope {
	t.Helper()
	env, err := ParseEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("ParseEnvelope() error = %v", err)
	}
	return env
}

const twoMembers = `{
	"ok": true,
	"members": [
		{
			"id": "U1",
			"name": "alice",
			"profile": {
				"display_name": "Alice",
				"image_24": "https://a/24.png",
				"image_32": "https://a/32.png",
				"image_72": "https://a/72.png",
				"image_192": "https://a/192.png",
				"image_512": "https://a/512.png"
			}
		},
		{
			"id": "U2",
			"name": "bob",
			"profile": {
				"display_name": "",
				"image_24": "https://b/24.png",
				"image_32": "https://b/32.png",
				"image_72": "https://b/72.png",
				"image_192": "https://b/192.png",
				"image_512": "https://b/512.png"
			}
		}
	]
}`

func TestDecodeUsers(t *testing.T) {
	users, err := DecodeUsers(mustEnvelope(t, twoMembers))
	if err != nil {
		t.Fatalf("DecodeUsers() error = %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}

	alice, ok := users["U1"]
	if !ok {
		t.Fatal("expected U1 in directory")
	}
	if alice.Name != "alice" || alice.DisplayName != "Alice" {
		t.Errorf("U1 = %+v", alice)
	}
	wantImgs := [5]string{"https://a/24.png", "https://a/32.png", "https://a/72.png", "https://a/192.png", "https://a/512.png"}
	if alice.FaviconImg != wantImgs {
		t.Errorf("U1 favicons = %v, want %v", alice.FaviconImg, wantImgs)
	}

	bob, ok := users["U2"]
	if !ok {
		t.Fatal("expected U2 in directory")
	}
	if bob.FaviconImg[0] != "https://b/24.png" || bob.FaviconImg[4] != "https://b/512.png" {
		t.Errorf("U2 favicons out of order: %v", bob.FaviconImg)
	}
	if bob.Label() != "bob" {
		t.Errorf("U2 Label() = %q, want bob (empty display name)", bob.Label())
	}
}

func TestDecodeUsers_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
	}{
		{
			name: "missing profile",
			body: `{"ok":true,"members":[{"id":"U1","name":"alice"}]}`,
			path: "members[0].profile",
		},
		{
			name: "missing image",
			body: `{"ok":true,"members":[{"id":"U1","name":"alice","profile":{"display_name":"A","image_24":"x","image_32":"x","image_192":"x","image_512":"x"}}]}`,
			path: "members[0].profile.image_72",
		},
		{
			name: "missing name on second member",
			body: `{"ok":true,"members":[
				{"id":"U1","name":"a","profile":{"display_name":"","image_24":"","image_32":"","image_72":"","image_192":"","image_512":""}},
				{"id":"U2","profile":{"display_name":"","image_24":"","image_32":"","image_72":"","image_192":"","image_512":""}}]}`,
			path: "members[1].name",
		},
		{
			name: "missing members",
			body: `{"ok":true}`,
			path: "members",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := DecodeUsers(mustEnvelope(t, tt.body))
			if err == nil {
				t.Fatalf("DecodeUsers() = %v, expected error", users)
			}
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("error type = %T, want *FieldError", err)
			}
			if fieldErr.Path != tt.path {
				t.Errorf("Path = %q, want %q", fieldErr.Path, tt.path)
			}
		})
	}
}

func TestDecodeChannels(t *testing.T) {
	env := mustEnvelope(t, `{"ok":true,"channels":[{"id":"C1","name":"general"},{"id":"C2","name":"daily-logs"}]}`)

	got, err := DecodeChannels(env)
	if err != nil {
		t.Fatalf("DecodeChannels() error = %v", err)
	}

	want := ChannelDirectory{"general": "C1", "daily-logs": "C2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeChannels() = %v, want %v", got, want)
	}
}

func TestDecodeChannels_MissingFields(t *testing.T) {
	for _, body := range []string{
		`{"ok":true}`,
		`{"ok":true,"channels":[{"id":"C1"}]}`,
		`{"ok":true,"channels":[{"name":"general"}]}`,
	} {
		if _, err := DecodeChannels(mustEnvelope(t, body)); err == nil {
			t.Errorf("DecodeChannels(%s) expected error", body)
		}
	}
}

func TestDecodeHistory_SkipsThreadReplies(t *testing.T) {
	env := mustEnvelope(t, `{
		"ok": true,
		"has_more": false,
		"messages": [
			{"type":"message","user":"U1","text":"first","ts":"1582934300.000100"},
			{"type":"message","user":"U2","text":"reply","ts":"1582934200.000200","thread_ts":"1582934100.000100","parent_user_id":"U1"},
			{"type":"message","user":"U2","text":"third","ts":"1582934100.000100","thread_ts":"1582934100.000100","reply_count":1}
		]
	}`)

	got, err := DecodeHistory(env)
	if err != nil {
		t.Fatalf("DecodeHistory() error = %v", err)
	}

	want := []Message{
		{UserID: "U1", Text: "first", Timestamp: "1582934300.000100"},
		{UserID: "U2", Text: "third", Timestamp: "1582934100.000100"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeHistory() = %+v, want %+v", got, want)
	}
}

func TestDecodeHistory_Empty(t *testing.T) {
	got, err := DecodeHistory(mustEnvelope(t, `{"ok":true,"messages":[]}`))
	if err != nil {
		t.Fatalf("DecodeHistory() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestDecodeHistory_MissingField(t *testing.T) {
	// a bot post without "user"
	env := mustEnvelope(t, `{"ok":true,"messages":[{"type":"message","subtype":"bot_message","bot_id":"B1","text":"hi","ts":"1.2"}]}`)

	_, err := DecodeHistory(env)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("error = %v, want *FieldError", err)
	}
	if fieldErr.Path != "messages[0].user" {
		t.Errorf("Path = %q, want messages[0].user", fieldErr.Path)
	}
}

func TestDecodeHistory_MissingFieldOnReplyIsIgnored(t *testing.T) {
	env := mustEnvelope(t, `{"ok":true,"messages":[{"parent_user_id":"U1","text":"no user, no ts"}]}`)

	got, err := DecodeHistory(env)
	if err != nil {
		t.Fatalf("DecodeHistory() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestIsThreadReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"top level", `{"user":"U1","text":"x","ts":"1.0"}`, false},
		{"thread parent", `{"user":"U1","text":"x","ts":"1.0","thread_ts":"1.0","reply_count":3}`, false},
		{"reply", `{"user":"U2","text":"x","ts":"2.0","thread_ts":"1.0","parent_user_id":"U1"}`, true},
		{"empty parent still counts", `{"parent_user_id":""}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m map[string]json.RawMessage
			if err := json.Unmarshal([]byte(tt.raw), &m); err != nil {
				t.Fatal(err)
			}
			if got := IsThreadReply(m); got != tt.want {
				t.Errorf("IsThreadReply() = %v, want %v", got, tt.want)
			}
		})
	}
}
