package slack

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// FetchUsers lists workspace members (first page only) and returns them keyed by ID.
func (c *Client) FetchUsers(ctx context.Context) (UserDirectory, error) {
	env, err := c.call(ctx, "users.list", func(api *slack.Client) error {
		_, err := api.GetUsersPaginated(slack.GetUsersOptionLimit(PageLimit)).Next(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.warnTruncated(env, "users.list", nil)

	users, err := DecodeUsers(env)
	if err != nil {
		return nil, errors.Wrap(err, "users.list")
	}
	c.log.WithField("count", len(users)).Debug("fetched users")
	return users, nil
}

// FetchChannels lists non-archived public channels and returns a name -> ID directory.
func (c *Client) FetchChannels(ctx context.Context) (ChannelDirectory, error) {
	env, err := c.call(ctx, "conversations.list", func(api *slack.Client) error {
		_, _, err := api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			ExcludeArchived: true,
			Types:           []string{"public_channel"},
			Limit:           PageLimit,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	c.warnTruncated(env, "conversations.list", nil)

	channels, err := DecodeChannels(env)
	if err != nil {
		return nil, errors.Wrap(err, "conversations.list")
	}
	c.log.WithField("count", len(channels)).Debug("fetched channels")
	return channels, nil
}

// FetchHistory returns the top-level messages posted in channelID strictly
// between oldest and latest (both Unix-second strings, latest being the newer
// bound). Thread replies are dropped and the API order is kept.
func (c *Client) FetchHistory(ctx context.Context, channelID, latest, oldest string) ([]Message, error) {
	env, err := c.call(ctx, "conversations.history", func(api *slack.Client) error {
		_, err := api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Latest:    latest,
			Oldest:    oldest,
			Limit:     PageLimit,
			Inclusive: false,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	c.warnTruncated(env, "conversations.history", logrus.Fields{"channel_id": channelID})

	messages, err := DecodeHistory(env)
	if err != nil {
		return nil, errors.Wrap(err, "conversations.history")
	}
	return messages, nil
}

func (c *Client) warnTruncated(env Envelope, method string, fields logrus.Fields) {
	more, err := env.HasMore()
	if err != nil {
		c.log.WithFields(fields).WithField("method", method).WithError(err).Debug("cannot tell whether more pages exist")
		return
	}
	if !more {
		return
	}
	c.log.WithFields(fields).WithField("method", method).
		Warnf("more than %d results available, only the first page was read", PageLimit)
}
