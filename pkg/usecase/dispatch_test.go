package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/usecase"
)

func TestDispatchUnknownKind(t *testing.T) {
	uc := newTestUseCases(directoryGitHub(), directorySlack())

	p := &model.Payload{Repository: testRepo()}
	gt.Error(t, uc.Dispatch(context.Background(), types.EventKind("merge"), p)).Is(usecase.ErrUnknownEventKind)
}

func TestDispatchMissingRepository(t *testing.T) {
	uc := newTestUseCases(directoryGitHub(), directorySlack())

	gt.Error(t, uc.Dispatch(context.Background(), types.EventComment, &model.Payload{})).Is(usecase.ErrInvalidPayload)
	gt.Error(t, uc.Dispatch(context.Background(), types.EventComment, nil)).Is(usecase.ErrInvalidPayload)
}

func TestNotifyGroupsByChannel(t *testing.T) {
	ctx := context.Background()

	// bob (backend) and carol (frontend) both requested, dave is unassigned
	github := directoryGitHub()
	github.pullRequestFn = func(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
		return &model.PullRequest{
			Number: 9,
			User:   &model.User{Login: "alice"},
			RequestedReviewers: []*model.User{
				{Login: "bob"},
				{Login: "carol"},
				{Login: "dave"},
			},
		}, nil
	}

	slack := directorySlack()
	uc := newTestUseCases(github, slack)

	p := &model.Payload{
		Repository:  testRepo(),
		PullRequest: &model.PullRequest{Number: 9},
		Comment:     &model.Comment{ID: 400, Body: "ping", User: &model.User{Login: "alice"}},
	}
	gt.NoError(t, uc.Dispatch(ctx, types.EventComment, p))

	posts := slack.recorded()
	gt.Array(t, posts).Length(3)

	byChannel := map[types.ChannelID]string{}
	for _, post := range posts {
		byChannel[post.Channel] = post.Text
	}
	gt.Value(t, strings.Contains(byChannel["C-backend"], "<@U-BOB>")).Equal(true)
	gt.Value(t, strings.Contains(byChannel["C-frontend"], "<@U-CAROL>")).Equal(true)
	gt.Value(t, strings.Contains(byChannel["C-default"], "<@U-DAVE>")).Equal(true)
}

func TestNotifyDegradedRecipientMentionedByLogin(t *testing.T) {
	ctx := context.Background()

	github := directoryGitHub()
	github.pullRequestFn = func(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
		return &model.PullRequest{
			Number:             9,
			User:               &model.User{Login: "alice"},
			RequestedReviewers: []*model.User{{Login: "ghost"}},
		}, nil
	}

	slack := directorySlack()
	uc := newTestUseCases(github, slack)

	p := &model.Payload{
		Repository:  testRepo(),
		PullRequest: &model.PullRequest{Number: 9},
		Comment:     &model.Comment{ID: 401, Body: "ping", User: &model.User{Login: "alice"}},
	}
	gt.NoError(t, uc.Dispatch(ctx, types.EventComment, p))

	posts := slack.recorded()
	gt.Array(t, posts).Length(1)
	gt.Value(t, strings.Contains(posts[0].Text, "@ghost")).Equal(true)
	gt.Value(t, strings.Contains(posts[0].Text, "<@")).Equal(false)
}

func TestNotifyChannelFailureIsIsolated(t *testing.T) {
	ctx := context.Background()

	github := directoryGitHub()
	github.pullRequestFn = func(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
		return &model.PullRequest{
			Number: 9,
			User:   &model.User{Login: "alice"},
			RequestedReviewers: []*model.User{
				{Login: "bob"},
				{Login: "carol"},
			},
		}, nil
	}

	slack := directorySlack()
	slack.postMessageFn = func(ctx context.Context, channel types.ChannelID, text string) error {
		if channel == "C-backend" {
			return goerr.New("channel archived")
		}
		return nil
	}
	uc := newTestUseCases(github, slack)

	p := &model.Payload{
		Repository:  testRepo(),
		PullRequest: &model.PullRequest{Number: 9},
		Comment:     &model.Comment{ID: 402, Body: "ping", User: &model.User{Login: "alice"}},
	}

	// the failing channel surfaces as an error, the other channel still receives
	gt.Error(t, uc.Dispatch(ctx, types.EventComment, p))

	posts := slack.recorded()
	gt.Array(t, posts).Length(1)
	gt.Value(t, posts[0].Channel).Equal(types.ChannelID("C-frontend"))
}
