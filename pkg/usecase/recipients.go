package usecase

import (
	"context"
	"sync"

	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// loginSet is an ordered set of logins. The first occurrence wins, so a
// recipient keeps its most specific source (e.g. an explicit individual
// request over team membership).
type loginSet struct {
	order []types.GitHubLogin
	seen  map[types.GitHubLogin]struct{}
}

func newLoginSet() *loginSet {
	return &loginSet{seen: map[types.GitHubLogin]struct{}{}}
}

func (s *loginSet) add(logins ...types.GitHubLogin) {
	for _, login := range logins {
		if login == "" {
			continue
		}
		if _, ok := s.seen[login]; ok {
			continue
		}
		s.seen[login] = struct{}{}
		s.order = append(s.order, login)
	}
}

func (s *loginSet) contains(login types.GitHubLogin) bool {
	_, ok := s.seen[login]
	return ok
}

// without returns the set contents in insertion order, minus the excluded logins
func (s *loginSet) without(exclude ...types.GitHubLogin) []types.GitHubLogin {
	excluded := map[types.GitHubLogin]struct{}{}
	for _, login := range exclude {
		excluded[login] = struct{}{}
	}

	var out []types.GitHubLogin
	for _, login := range s.order {
		if _, ok := excluded[login]; ok {
			continue
		}
		out = append(out, login)
	}
	return out
}

// threadRecipients computes the recipients of a code-line comment: every
// distinct thread participant except the comment author. A thread with at
// most one distinct participant falls back to the PR author, unless the PR
// author is the comment author.
func (uc *UseCases) threadRecipients(ctx context.Context, owner, repo string, number int, commentID int64, commenter types.GitHubLogin, pr *model.PullRequest) ([]types.GitHubLogin, error) {
	participants, err := uc.github.ThreadParticipants(ctx, owner, repo, number, commentID, true)
	if err != nil {
		return nil, err
	}

	distinct := newLoginSet()
	distinct.add(participants...)

	if len(distinct.order) <= 1 {
		author := pr.Author()
		if author == "" || author == commenter {
			return nil, nil
		}
		return []types.GitHubLogin{author}, nil
	}

	return distinct.without(commenter), nil
}

// prCommentRecipients computes the recipients of a PR-page comment. The
// reviewer set is the union of individually requested reviewers, members of
// requested teams and users who already submitted a review, deduplicated in
// that order. The PR author's own comments go to the reviewer set; anyone
// else's go to the remaining reviewers plus the author if the author is not
// already a reviewer.
func (uc *UseCases) prCommentRecipients(ctx context.Context, owner string, pr *model.PullRequest, reviews []*model.Review, commenter types.GitHubLogin) []types.GitHubLogin {
	reviewers := newLoginSet()

	for _, u := range pr.RequestedReviewers {
		if u != nil {
			reviewers.add(u.Login)
		}
	}

	for _, members := range uc.fetchTeamMembers(ctx, owner, pr.RequestedTeams) {
		reviewers.add(members...)
	}

	for _, review := range reviews {
		if review.User != nil {
			reviewers.add(review.User.Login)
		}
	}

	author := pr.Author()
	if commenter == author {
		return reviewers.without(author)
	}

	recipients := reviewers.without(commenter)
	if author != "" && !reviewers.contains(author) {
		recipients = append(recipients, author)
	}
	return recipients
}

// fetchTeamMembers fetches members of the requested teams concurrently,
// preserving team order. A failed team fetch is isolated to an empty list.
func (uc *UseCases) fetchTeamMembers(ctx context.Context, owner string, teams []*model.Team) [][]types.GitHubLogin {
	results := make([][]types.GitHubLogin, len(teams))

	var mu sync.Mutex
	var eg errgroup.Group
	for i, team := range teams {
		if team == nil {
			continue
		}
		eg.Go(func() error {
			users, err := uc.github.TeamMembers(ctx, owner, team.Slug)
			if err != nil {
				logging.From(ctx).Warn("failed to fetch requested team members, skipping team",
					"team", team.Slug,
					"error", err,
				)
				return nil
			}

			logins := make([]types.GitHubLogin, 0, len(users))
			for _, u := range users {
				logins = append(logins, u.Login)
			}

			mu.Lock()
			results[i] = logins
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	return results
}
