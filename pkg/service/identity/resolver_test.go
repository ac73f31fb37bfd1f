package identity_test

import (
	"context"
	"iter"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/service/identity"
	"github.com/secmon-lab/prnotify/pkg/service/match"
)

// mockGitHubClient is a mock implementation of interfaces.GitHubClient
type mockGitHubClient struct {
	userRealNameFn func(ctx context.Context, login types.GitHubLogin) (string, error)
}

func (m *mockGitHubClient) TeamMembers(ctx context.Context, org string, slug types.TeamSlug) ([]*model.GitHubUser, error) {
	return nil, nil
}

func (m *mockGitHubClient) PullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	return nil, nil
}

func (m *mockGitHubClient) PullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*model.Review, error) {
	return nil, nil
}

func (m *mockGitHubClient) OpenPullRequests(ctx context.Context, owner, repo string) iter.Seq2[*model.PullRequest, error] {
	return func(yield func(*model.PullRequest, error) bool) {}
}

func (m *mockGitHubClient) ThreadParticipants(ctx context.Context, owner, repo string, number int, commentID int64, codeComment bool) ([]types.GitHubLogin, error) {
	return nil, nil
}

func (m *mockGitHubClient) CommentAuthor(ctx context.Context, owner, repo string, commentID int64, codeComment bool) (types.GitHubLogin, error) {
	return "", nil
}

func (m *mockGitHubClient) UserRealName(ctx context.Context, login types.GitHubLogin) (string, error) {
	if m.userRealNameFn != nil {
		return m.userRealNameFn(ctx, login)
	}
	return "", nil
}

func (m *mockGitHubClient) WorkflowRun(ctx context.Context, owner, repo string, runID int64) (*model.WorkflowRun, error) {
	return nil, nil
}

// mockSlackClient is a mock implementation of interfaces.SlackClient
type mockSlackClient struct {
	listUsersFn   func(ctx context.Context) ([]*model.SlackUser, error)
	listUserCalls atomic.Int32
}

func (m *mockSlackClient) ListUsers(ctx context.Context) ([]*model.SlackUser, error) {
	m.listUserCalls.Add(1)
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockSlackClient) PostMessage(ctx context.Context, channel types.ChannelID, text string) error {
	return nil
}

func newTestResolver(github *mockGitHubClient, slack *mockSlackClient) *identity.Resolver {
	return identity.New(github, slack, match.New(nil, nil))
}

func TestResolveOneSlackID(t *testing.T) {
	ctx := context.Background()

	github := &mockGitHubClient{
		userRealNameFn: func(ctx context.Context, login types.GitHubLogin) (string, error) {
			return "John Doe", nil
		},
	}
	slack := &mockSlackClient{
		listUsersFn: func(ctx context.Context) ([]*model.SlackUser, error) {
			return []*model.SlackUser{
				{ID: "U123", RealName: "John Doe"},
			}, nil
		},
	}

	r := newTestResolver(github, slack)
	gt.Value(t, r.ResolveOne(ctx, "johndoe", types.PropertySlackID)).Equal("U123")
}

func TestResolveOneRealNamePrefersDisplayName(t *testing.T) {
	ctx := context.Background()

	github := &mockGitHubClient{
		userRealNameFn: func(ctx context.Context, login types.GitHubLogin) (string, error) {
			return "John Doe", nil
		},
	}
	slack := &mockSlackClient{
		listUsersFn: func(ctx context.Context) ([]*model.SlackUser, error) {
			return []*model.SlackUser{
				{ID: "U123", RealName: "John Doe", DisplayName: "johnny"},
			}, nil
		},
	}

	r := newTestResolver(github, slack)
	gt.Value(t, r.ResolveOne(ctx, "johndoe", types.PropertyRealName)).Equal("johnny")
}

func TestResolveOneDegradesToLogin(t *testing.T) {
	ctx := context.Background()

	github := &mockGitHubClient{
		userRealNameFn: func(ctx context.Context, login types.GitHubLogin) (string, error) {
			return "", goerr.New("boom")
		},
	}
	slack := &mockSlackClient{}

	r := newTestResolver(github, slack)
	gt.Value(t, r.ResolveOne(ctx, "johndoe", types.PropertySlackID)).Equal("johndoe")
}

func TestResolveOneNoMatchDegradesToLogin(t *testing.T) {
	ctx := context.Background()

	github := &mockGitHubClient{
		userRealNameFn: func(ctx context.Context, login types.GitHubLogin) (string, error) {
			return "Someone Else", nil
		},
	}
	slack := &mockSlackClient{
		listUsersFn: func(ctx context.Context) ([]*model.SlackUser, error) {
			return []*model.SlackUser{
				{ID: "U123", RealName: "John Doe"},
			}, nil
		},
	}

	r := newTestResolver(github, slack)
	gt.Value(t, r.ResolveOne(ctx, "stranger", types.PropertySlackID)).Equal("stranger")
}

func TestResolveOneEmptyLogin(t *testing.T) {
	r := newTestResolver(&mockGitHubClient{}, &mockSlackClient{})
	gt.Value(t, r.ResolveOne(context.Background(), "", types.PropertySlackID)).Equal("")
}

func TestResolveOneMemoized(t *testing.T) {
	ctx := context.Background()

	var lookups atomic.Int32
	github := &mockGitHubClient{
		userRealNameFn: func(ctx context.Context, login types.GitHubLogin) (string, error) {
			lookups.Add(1)
			return "John Doe", nil
		},
	}
	slack := &mockSlackClient{
		listUsersFn: func(ctx context.Context) ([]*model.SlackUser, error) {
			return []*model.SlackUser{
				{ID: "U123", RealName: "John Doe"},
			}, nil
		},
	}

	r := newTestResolver(github, slack)
	for range 3 {
		gt.Value(t, r.ResolveOne(ctx, "johndoe", types.PropertySlackID)).Equal("U123")
	}

	gt.Value(t, lookups.Load()).Equal(int32(1))
	gt.Value(t, slack.listUserCalls.Load()).Equal(int32(1))
}

func TestResolveOnePropertyCachedSeparately(t *testing.T) {
	ctx := context.Background()

	github := &mockGitHubClient{
		userRealNameFn: func(ctx context.Context, login types.GitHubLogin) (string, error) {
			return "John Doe", nil
		},
	}
	slack := &mockSlackClient{
		listUsersFn: func(ctx context.Context) ([]*model.SlackUser, error) {
			return []*model.SlackUser{
				{ID: "U123", RealName: "John Doe"},
			}, nil
		},
	}

	r := newTestResolver(github, slack)
	gt.Value(t, r.ResolveOne(ctx, "johndoe", types.PropertySlackID)).Equal("U123")
	gt.Value(t, r.ResolveOne(ctx, "johndoe", types.PropertyRealName)).Equal("John Doe")
}

func TestResolveBatch(t *testing.T) {
	ctx := context.Background()

	github := &mockGitHubClient{
		userRealNameFn: func(ctx context.Context, login types.GitHubLogin) (string, error) {
			switch login {
			case "alice":
				return "Alice Smith", nil
			case "bob":
				return "", goerr.New("lookup failed")
			}
			return "", nil
		},
	}
	slack := &mockSlackClient{
		listUsersFn: func(ctx context.Context) ([]*model.SlackUser, error) {
			return []*model.SlackUser{
				{ID: "U100", RealName: "Alice Smith"},
			}, nil
		},
	}

	r := newTestResolver(github, slack)
	resolved := r.ResolveBatch(ctx, []types.GitHubLogin{"alice", "bob"}, types.PropertySlackID)

	gt.Value(t, resolved["alice"]).Equal("U100")
	gt.Value(t, resolved["bob"]).Equal("bob")
	gt.Value(t, slack.listUserCalls.Load()).Equal(int32(1))
}

func TestClearDropsCache(t *testing.T) {
	ctx := context.Background()

	github := &mockGitHubClient{
		userRealNameFn: func(ctx context.Context, login types.GitHubLogin) (string, error) {
			return "John Doe", nil
		},
	}
	slack := &mockSlackClient{
		listUsersFn: func(ctx context.Context) ([]*model.SlackUser, error) {
			return []*model.SlackUser{
				{ID: "U123", RealName: "John Doe"},
			}, nil
		},
	}

	r := newTestResolver(github, slack)
	gt.Value(t, r.ResolveOne(ctx, "johndoe", types.PropertySlackID)).Equal("U123")

	r.Clear()
	gt.Value(t, r.ResolveOne(ctx, "johndoe", types.PropertySlackID)).Equal("U123")
	gt.Value(t, slack.listUserCalls.Load()).Equal(int32(2))
}
