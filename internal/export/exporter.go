// Package export orchestrates a history run: directory lookups, channel
// resolution, the date window and the per-channel history fetch.
package export

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chrisedwards/slack-history/internal/channels"
	"github.com/chrisedwards/slack-history/internal/config"
	"github.com/chrisedwards/slack-history/internal/slack"
)

// API is the subset of the Slack client used by the Exporter.
type API interface {
	FetchChannels(ctx context.Context) (slack.ChannelDirectory, error)
	FetchUsers(ctx context.Context) (slack.UserDirectory, error)
	FetchHistory(ctx context.Context, channelID, latest, oldest string) ([]slack.Message, error)
}

// ChannelHistory holds the messages fetched for one channel.
type ChannelHistory struct {
	Name     string
	ID       string
	Messages []slack.Message
}

// Report is the result of a run.
type Report struct {
	Window   Window
	Users    slack.UserDirectory
	Channels []ChannelHistory
}

// Exporter orchestrates the history workflow for configured channels.
type Exporter struct {
	cfg *config.Config
	api API
	log logrus.FieldLogger
}

// NewExporter creates an Exporter with the given configuration and API client.
func NewExporter(cfg *config.Config, api API, log logrus.FieldLogger) (*Exporter, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if api == nil {
		return nil, errors.New("nil Slack API client")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Exporter{cfg: cfg, api: api, log: log}, nil
}

// Config returns the exporter's configuration.
func (e *Exporter) Config() *config.Config {
	return e.cfg
}

// Run fetches the channel directory, the user directory and then the
// history of every selected channel within w. Calls are sequential and the
// first error aborts the run.
func (e *Exporter) Run(ctx context.Context, w Window) (*Report, error) {
	dir, err := e.api.FetchChannels(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch channels")
	}
	e.log.WithField("count", len(dir)).Info("channel directory loaded")

	users, err := e.api.FetchUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch users")
	}
	e.log.WithField("count", len(users)).Info("user directory loaded")

	targets, err := channels.NewFilter(e.cfg.Channels, e.cfg.Exclude).Resolve(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve channels")
	}

	report := &Report{Window: w, Users: users}
	for _, target := range targets {
		log := e.log.WithFields(logrus.Fields{
			"channel":    target.Name,
			"channel_id": target.ID,
			"oldest":     w.Oldest,
			"latest":     w.Latest,
		})
		log.Debug("fetching history")

		messages, err := e.api.FetchHistory(ctx, target.ID, w.Latest, w.Oldest)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch history of #%s", target.Name)
		}
		log.WithField("count", len(messages)).Info("history fetched")

		report.Channels = append(report.Channels, ChannelHistory{
			Name:     target.Name,
			ID:       target.ID,
			Messages: messages,
		})
	}
	return report, nil
}
