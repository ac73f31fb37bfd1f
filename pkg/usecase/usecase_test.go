package usecase_test

import (
	"context"
	"iter"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/model/config"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/usecase"
)

// mockGitHub is a mock implementation of interfaces.GitHubClient
type mockGitHub struct {
	teamMembersFn        func(ctx context.Context, org string, slug types.TeamSlug) ([]*model.GitHubUser, error)
	pullRequestFn        func(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error)
	pullRequestReviewsFn func(ctx context.Context, owner, repo string, number int) ([]*model.Review, error)
	openPullRequestsFn   func(ctx context.Context, owner, repo string) iter.Seq2[*model.PullRequest, error]
	threadParticipantsFn func(ctx context.Context, owner, repo string, number int, commentID int64, codeComment bool) ([]types.GitHubLogin, error)
	commentAuthorFn      func(ctx context.Context, owner, repo string, commentID int64, codeComment bool) (types.GitHubLogin, error)
	userRealNameFn       func(ctx context.Context, login types.GitHubLogin) (string, error)
	workflowRunFn        func(ctx context.Context, owner, repo string, runID int64) (*model.WorkflowRun, error)
}

func (m *mockGitHub) TeamMembers(ctx context.Context, org string, slug types.TeamSlug) ([]*model.GitHubUser, error) {
	if m.teamMembersFn != nil {
		return m.teamMembersFn(ctx, org, slug)
	}
	return nil, nil
}

func (m *mockGitHub) PullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	if m.pullRequestFn != nil {
		return m.pullRequestFn(ctx, owner, repo, number)
	}
	return nil, goerr.New("unexpected PullRequest call")
}

func (m *mockGitHub) PullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*model.Review, error) {
	if m.pullRequestReviewsFn != nil {
		return m.pullRequestReviewsFn(ctx, owner, repo, number)
	}
	return nil, nil
}

func (m *mockGitHub) OpenPullRequests(ctx context.Context, owner, repo string) iter.Seq2[*model.PullRequest, error] {
	if m.openPullRequestsFn != nil {
		return m.openPullRequestsFn(ctx, owner, repo)
	}
	return func(yield func(*model.PullRequest, error) bool) {}
}

func (m *mockGitHub) ThreadParticipants(ctx context.Context, owner, repo string, number int, commentID int64, codeComment bool) ([]types.GitHubLogin, error) {
	if m.threadParticipantsFn != nil {
		return m.threadParticipantsFn(ctx, owner, repo, number, commentID, codeComment)
	}
	return nil, nil
}

func (m *mockGitHub) CommentAuthor(ctx context.Context, owner, repo string, commentID int64, codeComment bool) (types.GitHubLogin, error) {
	if m.commentAuthorFn != nil {
		return m.commentAuthorFn(ctx, owner, repo, commentID, codeComment)
	}
	return "", goerr.New("unexpected CommentAuthor call")
}

func (m *mockGitHub) UserRealName(ctx context.Context, login types.GitHubLogin) (string, error) {
	if m.userRealNameFn != nil {
		return m.userRealNameFn(ctx, login)
	}
	return "", goerr.New("no profile")
}

func (m *mockGitHub) WorkflowRun(ctx context.Context, owner, repo string, runID int64) (*model.WorkflowRun, error) {
	if m.workflowRunFn != nil {
		return m.workflowRunFn(ctx, owner, repo, runID)
	}
	return nil, goerr.New("unexpected WorkflowRun call")
}

// mockSlack records posted messages
type mockSlack struct {
	listUsersFn   func(ctx context.Context) ([]*model.SlackUser, error)
	postMessageFn func(ctx context.Context, channel types.ChannelID, text string) error

	mu    sync.Mutex
	posts []postedMessage
}

type postedMessage struct {
	Channel types.ChannelID
	Text    string
}

func (m *mockSlack) ListUsers(ctx context.Context) ([]*model.SlackUser, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockSlack) PostMessage(ctx context.Context, channel types.ChannelID, text string) error {
	if m.postMessageFn != nil {
		if err := m.postMessageFn(ctx, channel, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.posts = append(m.posts, postedMessage{Channel: channel, Text: text})
	m.mu.Unlock()
	return nil
}

func (m *mockSlack) recorded() []postedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]postedMessage(nil), m.posts...)
}

func testRouting() *config.Routing {
	return &config.Routing{
		Organization:   "acme",
		DefaultChannel: "C-default",
		Teams: []config.Team{
			{Slug: "backend", Channel: "C-backend"},
			{Slug: "frontend", Channel: "C-frontend"},
		},
	}
}

// directoryGitHub returns a mockGitHub whose org directory maps team
// membership and profile names for the standard test fixtures
func directoryGitHub() *mockGitHub {
	return &mockGitHub{
		teamMembersFn: func(ctx context.Context, org string, slug types.TeamSlug) ([]*model.GitHubUser, error) {
			switch slug {
			case "backend":
				return []*model.GitHubUser{{Login: "alice"}, {Login: "bob"}}, nil
			case "frontend":
				return []*model.GitHubUser{{Login: "carol"}}, nil
			}
			return nil, nil
		},
		userRealNameFn: func(ctx context.Context, login types.GitHubLogin) (string, error) {
			names := map[types.GitHubLogin]string{
				"alice": "Alice Smith",
				"bob":   "Bob Jones",
				"carol": "Carol White",
				"dave":  "Dave Brown",
			}
			if name, ok := names[login]; ok {
				return name, nil
			}
			return "", goerr.New("unknown user")
		},
	}
}

func directorySlack() *mockSlack {
	return &mockSlack{
		listUsersFn: func(ctx context.Context) ([]*model.SlackUser, error) {
			return []*model.SlackUser{
				{ID: "U-ALICE", RealName: "Alice Smith"},
				{ID: "U-BOB", RealName: "Bob Jones"},
				{ID: "U-CAROL", RealName: "Carol White"},
				{ID: "U-DAVE", RealName: "Dave Brown"},
			}, nil
		},
	}
}

func newTestUseCases(github *mockGitHub, slack *mockSlack) *usecase.UseCases {
	return usecase.New(github, slack, testRouting())
}

func testRepo() *model.Repository {
	return &model.Repository{
		Name:     "api",
		FullName: "acme/api",
		Owner:    &model.User{Login: "acme"},
	}
}
