package interfaces

import (
	"context"
	"iter"

	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
)

// GitHubClient provides the GitHub directory and pull request data the
// pipeline consumes. Transport errors are wrapped by the implementation and
// propagated as-is; retry, if any, lives below this interface.
type GitHubClient interface {
	// TeamMembers lists the members of an organization team
	TeamMembers(ctx context.Context, org string, slug types.TeamSlug) ([]*model.GitHubUser, error)

	// PullRequest fetches pull request details
	PullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error)

	// PullRequestReviews lists submitted reviews of a pull request
	PullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*model.Review, error)

	// OpenPullRequests iterates all open non-draft pull requests of a repository
	OpenPullRequests(ctx context.Context, owner, repo string) iter.Seq2[*model.PullRequest, error]

	// ThreadParticipants returns the distinct authors of the comment thread
	// containing commentID, root first, in comment order. Returns
	// github.ErrCommentNotFound if the comment does not exist on that surface.
	ThreadParticipants(ctx context.Context, owner, repo string, number int, commentID int64, codeComment bool) ([]types.GitHubLogin, error)

	// CommentAuthor returns the author login of a single comment
	CommentAuthor(ctx context.Context, owner, repo string, commentID int64, codeComment bool) (types.GitHubLogin, error)

	// UserRealName returns the profile name of a GitHub user
	UserRealName(ctx context.Context, login types.GitHubLogin) (string, error)

	// WorkflowRun fetches workflow run data
	WorkflowRun(ctx context.Context, owner, repo string, runID int64) (*model.WorkflowRun, error)
}
