package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
)

// reviewerStatus is a per-reviewer state line of the scheduled report
type reviewerStatus string

const (
	statusAwaiting         reviewerStatus = "awaiting review"
	statusCommented        reviewerStatus = "commented"
	statusApproved         reviewerStatus = "approved"
	statusChangesRequested reviewerStatus = "changes requested"
)

// dispatchSchedule runs the cron path: it iterates all open non-draft pull
// requests of the repository, renders a per-reviewer status line for each,
// and sends one message per PR to the author's team channel. Per-PR failures
// are collected so one broken PR does not silence the rest.
func (uc *UseCases) dispatchSchedule(ctx context.Context, p *model.Payload) error {
	owner, repo := uc.repoCoords(p)
	fullName := uc.repoFullName(p)

	var errs []error
	reported := 0
	for pr, err := range uc.github.OpenPullRequests(ctx, owner, repo) {
		if err != nil {
			errs = append(errs, err)
			break
		}
		if pr.Draft {
			continue
		}

		reviews, err := uc.github.PullRequestReviews(ctx, owner, repo, pr.Number)
		if err != nil {
			errs = append(errs, goerr.Wrap(err, "skipping pull request in scheduled report",
				goerr.V("number", pr.Number)))
			continue
		}

		lines := uc.reviewerStatusLines(ctx, owner, pr, reviews)
		if len(lines) == 0 {
			continue
		}

		channel := uc.router.SelectChannel(ctx, pr.Author())
		text := fmt.Sprintf("Review status of <%s|%s#%d %s>:\n%s",
			pr.HTMLURL, fullName, pr.Number, pr.Title, strings.Join(lines, "\n"))

		if err := uc.slack.PostMessage(ctx, channel, text); err != nil {
			errs = append(errs, goerr.Wrap(err, "failed to send scheduled report",
				goerr.V("channel", channel), goerr.V("number", pr.Number)))
			continue
		}
		reported++
	}

	logging.From(ctx).Info("scheduled review report finished",
		"repository", fullName,
		"reported", reported,
		"failed", len(errs),
	)

	return errors.Join(errs...)
}

// reviewerStatusLines computes one status line per reviewer of the PR.
// Requested reviewers and requested team members start as awaiting; submitted
// reviews upgrade the state. Decisive verdicts (approved, changes requested)
// overwrite earlier states, a plain comment never demotes a verdict.
func (uc *UseCases) reviewerStatusLines(ctx context.Context, owner string, pr *model.PullRequest, reviews []*model.Review) []string {
	status := map[types.GitHubLogin]reviewerStatus{}
	set := newLoginSet()

	for _, u := range pr.RequestedReviewers {
		if u != nil && u.Login != "" {
			set.add(u.Login)
			status[u.Login] = statusAwaiting
		}
	}

	for _, members := range uc.fetchTeamMembers(ctx, owner, pr.RequestedTeams) {
		for _, login := range members {
			set.add(login)
			if _, ok := status[login]; !ok {
				status[login] = statusAwaiting
			}
		}
	}

	for _, review := range reviews {
		if review.User == nil || review.User.Login == "" {
			continue
		}
		login := review.User.Login
		set.add(login)

		switch strings.ToLower(review.State) {
		case "approved":
			status[login] = statusApproved
		case "changes_requested":
			status[login] = statusChangesRequested
		default:
			if current, ok := status[login]; !ok || current == statusAwaiting {
				status[login] = statusCommented
			}
		}
	}

	author := pr.Author()

	var lines []string
	for _, login := range set.without(author) {
		name := uc.resolver.ResolveOne(ctx, login, types.PropertyRealName)
		lines = append(lines, fmt.Sprintf("- %s: %s", name, status[login]))
	}
	return lines
}
