package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
)

// notify resolves the recipients' Slack identities, groups them by
// destination channel, and sends one message per channel group with a
// combined mention line. An empty recipient set is a successful no-op.
// Per-channel send failures are attempted independently and joined.
func (uc *UseCases) notify(ctx context.Context, logins []types.GitHubLogin, text string) error {
	recipients := newLoginSet()
	recipients.add(logins...)

	if len(recipients.order) == 0 {
		logging.From(ctx).Info("no recipients, skipping notification")
		return nil
	}

	resolved := uc.resolver.ResolveBatch(ctx, recipients.order, types.PropertySlackID)

	groups := model.NewChannelGroups()
	for _, login := range recipients.order {
		recipient := &model.Recipient{Login: login}
		if value := resolved[login]; value != "" && value != login.String() {
			recipient.SlackID = types.SlackUserID(value)
		}

		channel := uc.router.SelectChannel(ctx, login)
		groups.Add(channel, recipient)
	}

	var errs []error
	for _, channel := range groups.Channels() {
		assigned := groups.Recipients(channel)

		mentions := make([]string, len(assigned))
		for i, r := range assigned {
			mentions[i] = r.Mention()
		}

		message := strings.Join(mentions, ", ") + "\n" + text
		if err := uc.slack.PostMessage(ctx, channel, message); err != nil {
			errs = append(errs, goerr.Wrap(err, "failed to send notification",
				goerr.V("channel", channel), goerr.V("recipients", len(assigned))))
			continue
		}

		logging.From(ctx).Info("notification sent",
			"channel", channel,
			"recipients", len(assigned),
		)
	}

	return errors.Join(errs...)
}
