package github

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shurcooL/githubv4"

	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
)

const perPage = 100

// Client provides GitHub directory and pull request data via the REST and
// GraphQL APIs with GitHub App authentication.
type Client struct {
	rest *github.Client
	gql  *githubv4.Client
}

// New creates a new GitHub client using GitHub App authentication.
// privateKey can be a PEM string or a file path to a PEM file.
func New(appID, installationID int64, privateKey string) (*Client, error) {
	var key []byte

	// Try reading as file path first
	// #nosec G304 -- path comes from CLI flag, not user input
	if data, err := os.ReadFile(privateKey); err == nil {
		key = data
	} else {
		// Treat as PEM string
		key = []byte(privateKey)
	}

	tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	httpClient := &http.Client{Transport: tr}

	return &Client{
		rest: github.NewClient(httpClient),
		gql:  githubv4.NewClient(httpClient),
	}, nil
}

// TeamMembers lists the members of an organization team
func (c *Client) TeamMembers(ctx context.Context, org string, slug types.TeamSlug) ([]*model.GitHubUser, error) {
	opts := &github.TeamListTeamMembersOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var members []*model.GitHubUser
	for {
		users, resp, err := c.rest.Teams.ListTeamMembersBySlug(ctx, org, slug.String(), opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list team members",
				goerr.V("org", org), goerr.V("team", slug))
		}

		for _, u := range users {
			members = append(members, &model.GitHubUser{
				Login:    types.GitHubLogin(u.GetLogin()),
				RealName: u.GetName(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return members, nil
}

// PullRequest fetches pull request details
func (c *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	pr, _, err := c.rest.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get pull request",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
	}

	result := &model.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Draft:   pr.GetDraft(),
		HTMLURL: pr.GetHTMLURL(),
		User:    &model.User{Login: types.GitHubLogin(pr.GetUser().GetLogin())},
	}

	for _, u := range pr.RequestedReviewers {
		result.RequestedReviewers = append(result.RequestedReviewers, &model.User{
			Login: types.GitHubLogin(u.GetLogin()),
		})
	}
	for _, t := range pr.RequestedTeams {
		result.RequestedTeams = append(result.RequestedTeams, &model.Team{
			Slug: types.TeamSlug(t.GetSlug()),
			Name: t.GetName(),
		})
	}

	return result, nil
}

// PullRequestReviews lists submitted reviews of a pull request
func (c *Client) PullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*model.Review, error) {
	opts := &github.ListOptions{PerPage: perPage}

	var reviews []*model.Review
	for {
		page, resp, err := c.rest.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list pull request reviews",
				goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
		}

		for _, r := range page {
			reviews = append(reviews, &model.Review{
				State: r.GetState(),
				Body:  r.GetBody(),
				User:  &model.User{Login: types.GitHubLogin(r.GetUser().GetLogin())},
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return reviews, nil
}

// ThreadParticipants returns the distinct authors of the comment thread that
// contains commentID. For code comments the thread is the in-reply-to chain;
// for PR-page comments all issue comment authors participate.
func (c *Client) ThreadParticipants(ctx context.Context, owner, repo string, number int, commentID int64, codeComment bool) ([]types.GitHubLogin, error) {
	if codeComment {
		return c.reviewThreadParticipants(ctx, owner, repo, number, commentID)
	}
	return c.issueCommentParticipants(ctx, owner, repo, number, commentID)
}

func (c *Client) reviewThreadParticipants(ctx context.Context, owner, repo string, number int, commentID int64) ([]types.GitHubLogin, error) {
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var comments []*github.PullRequestComment
	for {
		page, resp, err := c.rest.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list review comments",
				goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
		}
		comments = append(comments, page...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	byID := make(map[int64]*github.PullRequestComment, len(comments))
	for _, cm := range comments {
		byID[cm.GetID()] = cm
	}

	target, ok := byID[commentID]
	if !ok {
		return nil, goerr.Wrap(ErrCommentNotFound, "review comment not in pull request",
			goerr.V("comment_id", commentID), goerr.V("number", number))
	}

	rootID := rootOf(target, byID)

	var participants []types.GitHubLogin
	seen := map[types.GitHubLogin]struct{}{}
	for _, cm := range comments {
		if rootOf(cm, byID) != rootID {
			continue
		}
		login := types.GitHubLogin(cm.GetUser().GetLogin())
		if login == "" {
			continue
		}
		if _, dup := seen[login]; dup {
			continue
		}
		seen[login] = struct{}{}
		participants = append(participants, login)
	}

	return participants, nil
}

// rootOf resolves the root comment ID of an in-reply-to chain. A broken chain
// (parent no longer present) terminates at the last reachable comment.
func rootOf(c *github.PullRequestComment, byID map[int64]*github.PullRequestComment) int64 {
	cur := c
	for cur.GetInReplyTo() != 0 {
		parent, ok := byID[cur.GetInReplyTo()]
		if !ok {
			break
		}
		cur = parent
	}
	return cur.GetID()
}

func (c *Client) issueCommentParticipants(ctx context.Context, owner, repo string, number int, commentID int64) ([]types.GitHubLogin, error) {
	if _, err := c.CommentAuthor(ctx, owner, repo, commentID, false); err != nil {
		return nil, err
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var participants []types.GitHubLogin
	seen := map[types.GitHubLogin]struct{}{}
	for {
		page, resp, err := c.rest.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list issue comments",
				goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
		}

		for _, cm := range page {
			login := types.GitHubLogin(cm.GetUser().GetLogin())
			if login == "" {
				continue
			}
			if _, dup := seen[login]; dup {
				continue
			}
			seen[login] = struct{}{}
			participants = append(participants, login)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return participants, nil
}

// CommentAuthor returns the author login of a single comment
func (c *Client) CommentAuthor(ctx context.Context, owner, repo string, commentID int64, codeComment bool) (types.GitHubLogin, error) {
	if codeComment {
		cm, resp, err := c.rest.PullRequests.GetComment(ctx, owner, repo, commentID)
		if err != nil {
			if isNotFound(resp, err) {
				return "", goerr.Wrap(ErrCommentNotFound, "review comment not found",
					goerr.V("comment_id", commentID))
			}
			return "", goerr.Wrap(err, "failed to get review comment", goerr.V("comment_id", commentID))
		}
		return types.GitHubLogin(cm.GetUser().GetLogin()), nil
	}

	cm, resp, err := c.rest.Issues.GetComment(ctx, owner, repo, commentID)
	if err != nil {
		if isNotFound(resp, err) {
			return "", goerr.Wrap(ErrCommentNotFound, "issue comment not found",
				goerr.V("comment_id", commentID))
		}
		return "", goerr.Wrap(err, "failed to get issue comment", goerr.V("comment_id", commentID))
	}
	return types.GitHubLogin(cm.GetUser().GetLogin()), nil
}

// UserRealName returns the profile name of a GitHub user
func (c *Client) UserRealName(ctx context.Context, login types.GitHubLogin) (string, error) {
	user, _, err := c.rest.Users.Get(ctx, login.String())
	if err != nil {
		return "", goerr.Wrap(err, "failed to get GitHub user", goerr.V("login", login))
	}
	return user.GetName(), nil
}

// WorkflowRun fetches workflow run data
func (c *Client) WorkflowRun(ctx context.Context, owner, repo string, runID int64) (*model.WorkflowRun, error) {
	run, _, err := c.rest.Actions.GetWorkflowRunByID(ctx, owner, repo, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get workflow run",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("run_id", runID))
	}

	return &model.WorkflowRun{
		ID:         run.GetID(),
		Name:       run.GetName(),
		Conclusion: run.GetConclusion(),
		HeadBranch: run.GetHeadBranch(),
		HTMLURL:    run.GetHTMLURL(),
		Actor:      &model.User{Login: types.GitHubLogin(run.GetActor().GetLogin())},
	}, nil
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
