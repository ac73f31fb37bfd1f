package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
)

// dispatchReview notifies the PR author that a reviewer submitted a verdict
func (uc *UseCases) dispatchReview(ctx context.Context, kind types.EventKind, p *model.Payload) error {
	if p.Review == nil || p.Review.User == nil {
		return goerr.Wrap(ErrInvalidPayload, "missing review object")
	}
	if p.PullRequest == nil {
		return goerr.Wrap(ErrInvalidPayload, "missing pull request object")
	}

	reviewer := p.Review.User.Login
	author := p.PullRequest.Author()

	var recipients []types.GitHubLogin
	if author != "" && author != reviewer {
		recipients = []types.GitHubLogin{author}
	}

	text := reviewText(uc.repoFullName(p), p.PullRequest, reviewer, kind)
	return uc.notify(ctx, recipients, text)
}

// dispatchReviewRequest notifies a requested team (minus the PR author) or a
// single requested reviewer. A team with no notifiable members is a valid
// terminal state, not an error.
func (uc *UseCases) dispatchReviewRequest(ctx context.Context, p *model.Payload) error {
	if p.PullRequest == nil {
		return goerr.Wrap(ErrInvalidPayload, "missing pull request object")
	}

	author := p.PullRequest.Author()
	owner, _ := uc.repoCoords(p)

	var recipients []types.GitHubLogin
	switch {
	case p.RequestedTeam != nil:
		members, err := uc.github.TeamMembers(ctx, owner, p.RequestedTeam.Slug)
		if err != nil {
			logging.From(ctx).Warn("failed to fetch requested team members, treating team as empty",
				"team", p.RequestedTeam.Slug,
				"error", err,
			)
		}

		set := newLoginSet()
		for _, m := range members {
			set.add(m.Login)
		}
		recipients = set.without(author)

		if len(recipients) == 0 {
			logging.From(ctx).Info("requested team has no notifiable members",
				"team", p.RequestedTeam.Slug,
				"pr", p.PullRequest.Number,
			)
			return nil
		}

	case p.RequestedReviewer != nil:
		if p.RequestedReviewer.Login != author {
			recipients = []types.GitHubLogin{p.RequestedReviewer.Login}
		}

	default:
		return goerr.Wrap(ErrInvalidPayload, "missing requested reviewer or team")
	}

	text := reviewRequestText(uc.repoFullName(p), p.PullRequest)
	return uc.notify(ctx, recipients, text)
}
