package identity

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/interfaces"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/service/match"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const directoryKey = "slack-directory"

type cacheKey struct {
	login    types.GitHubLogin
	property types.ResolveProperty
}

// Resolver maps GitHub logins to Slack identities. The Slack directory is
// loaded once per resolver lifetime under a single-flight guard, and resolved
// (login, property) pairs are memoized until Clear.
type Resolver struct {
	github  interfaces.GitHubClient
	slack   interfaces.SlackClient
	matcher *match.Matcher

	group singleflight.Group

	mu     sync.Mutex
	users  []*model.SlackUser
	loaded bool
	cache  map[cacheKey]string
}

// New creates a Resolver with injected collaborators
func New(github interfaces.GitHubClient, slack interfaces.SlackClient, matcher *match.Matcher) *Resolver {
	return &Resolver{
		github:  github,
		slack:   slack,
		matcher: matcher,
		cache:   map[cacheKey]string{},
	}
}

// ResolveOne returns the requested Slack property for the GitHub login. On
// any failure it degrades to the login itself; it never returns an error.
func (r *Resolver) ResolveOne(ctx context.Context, login types.GitHubLogin, property types.ResolveProperty) string {
	if login == "" {
		return ""
	}

	key := cacheKey{login: login, property: property}

	r.mu.Lock()
	if value, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return value
	}
	r.mu.Unlock()

	value, err := r.resolve(ctx, login, property)
	if err != nil {
		logging.From(ctx).Warn("identity resolution degraded to login",
			"login", login,
			"property", property,
			"error", err,
		)
		value = login.String()
	}

	r.mu.Lock()
	r.cache[key] = value
	r.mu.Unlock()

	return value
}

// ResolveBatch resolves multiple logins concurrently. Each login is isolated:
// a failed resolution maps the login to itself and never fails the batch.
func (r *Resolver) ResolveBatch(ctx context.Context, logins []types.GitHubLogin, property types.ResolveProperty) map[types.GitHubLogin]string {
	results := make([]string, len(logins))

	var eg errgroup.Group
	for i, login := range logins {
		eg.Go(func() error {
			results[i] = r.ResolveOne(ctx, login, property)
			return nil
		})
	}
	_ = eg.Wait()

	resolved := make(map[types.GitHubLogin]string, len(logins))
	for i, login := range logins {
		resolved[login] = results[i]
	}
	return resolved
}

// Clear drops the cached directory and all memoized resolutions
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = nil
	r.loaded = false
	r.cache = map[cacheKey]string{}
}

func (r *Resolver) resolve(ctx context.Context, login types.GitHubLogin, property types.ResolveProperty) (string, error) {
	users, err := r.directory(ctx)
	if err != nil {
		return "", err
	}

	realName, err := r.github.UserRealName(ctx, login)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch GitHub user name", goerr.V("login", login))
	}
	if realName == "" {
		return "", goerr.New("GitHub user has no profile name", goerr.V("login", login))
	}

	candidate := r.matcher.FindBestMatch(ctx, users, realName)
	if candidate == nil {
		return "", goerr.New("no Slack identity matched",
			goerr.V("login", login),
			goerr.V("name", realName),
		)
	}

	logging.From(ctx).Debug("resolved identity",
		"login", login,
		"slack_id", candidate.User.ID,
		"matched_name", candidate.MatchedName,
		"match_type", candidate.Type,
	)

	switch property {
	case types.PropertyRealName:
		if candidate.User.DisplayName != "" {
			return candidate.User.DisplayName, nil
		}
		return candidate.User.RealName, nil

	default:
		return candidate.User.ID.String(), nil
	}
}

// directory returns the frozen per-invocation Slack directory snapshot.
// Concurrent first loads share one in-flight fetch.
func (r *Resolver) directory(ctx context.Context) ([]*model.SlackUser, error) {
	r.mu.Lock()
	if r.loaded {
		users := r.users
		r.mu.Unlock()
		return users, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(directoryKey, func() (any, error) {
		users, err := r.slack.ListUsers(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load Slack directory")
		}

		logging.From(ctx).Info("loaded Slack directory", "users", len(users))

		r.mu.Lock()
		r.users = users
		r.loaded = true
		r.mu.Unlock()

		return users, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]*model.SlackUser), nil
}
