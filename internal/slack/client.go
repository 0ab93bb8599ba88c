package slack

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

const (
	// DefaultAPIURL is the base URL of the Slack Web API.
	DefaultAPIURL = "https://slack.com/api/"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Client issues read-only Web API calls. Requests are built by slack-go;
// the raw response envelope is captured and validated here so that an
// "ok": false response or a missing field is never silently decoded into
// zero values.
type Client struct {
	creds      *Credentials
	httpClient *http.Client
	baseURL    string
	log        logrus.FieldLogger
}

// NewClient creates a new Web API client with the given credentials.
func NewClient(creds *Credentials) *Client {
	return &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		baseURL:    DefaultAPIURL,
		log:        logrus.StandardLogger(),
	}
}

// WithBaseURL returns a new Client with the specified base URL.
// Useful for testing with mock servers.
func (c *Client) WithBaseURL(baseURL string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	cp := *c
	cp.baseURL = baseURL
	return &cp
}

// WithHTTPClient returns a new Client with the specified HTTP client.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	cp := *c
	cp.httpClient = client
	return &cp
}

// WithLogger returns a new Client logging to l.
func (c *Client) WithLogger(l logrus.FieldLogger) *Client {
	cp := *c
	cp.log = l
	return &cp
}

// envelopeTap records the body of the last response while handing an
// identical copy to slack-go.
type envelopeTap struct {
	client *http.Client
	body   []byte
}

func (t *envelopeTap) Do(req *http.Request) (*http.Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	t.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// call runs one Web API method through slack-go and returns its validated
// envelope.
func (c *Client) call(ctx context.Context, method string, do func(api *slack.Client) error) (Envelope, error) {
	tap := &envelopeTap{client: c.httpClient}
	api := slack.New(c.creds.Token,
		slack.OptionAPIURL(c.baseURL),
		slack.OptionHTTPClient(tap),
	)

	c.log.WithField("method", method).Debug("calling Slack API")
	callErr := do(api)

	if tap.body == nil {
		if callErr == nil {
			callErr = errors.New("empty response")
		}
		return nil, errors.Wrap(callErr, method)
	}

	env, err := ParseEnvelope(tap.body)
	if err != nil {
		if callErr != nil {
			return nil, errors.Wrap(callErr, method)
		}
		return nil, errors.Wrap(err, method)
	}
	if _, err := ValidateResponse(env); err != nil {
		return nil, errors.Wrap(err, method)
	}
	if callErr != nil {
		return nil, errors.Wrap(callErr, method)
	}
	return env, nil
}
