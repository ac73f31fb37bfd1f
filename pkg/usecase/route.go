package usecase

import (
	"context"
	"sync"

	"github.com/secmon-lab/prnotify/pkg/domain/interfaces"
	"github.com/secmon-lab/prnotify/pkg/domain/model/config"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const teamMembersKey = "team-members"

// Router maps a GitHub login to its destination channel via team membership.
// Team membership is loaded once per invocation, all teams fetched in
// parallel, guarded by single-flight. Routing never fails: any load error
// falls back to the default channel.
type Router struct {
	github  interfaces.GitHubClient
	routing *config.Routing

	group singleflight.Group

	mu      sync.Mutex
	members map[types.TeamSlug]map[types.GitHubLogin]struct{}
	loaded  bool
}

// NewRouter creates a Router for the configured teams
func NewRouter(github interfaces.GitHubClient, routing *config.Routing) *Router {
	return &Router{
		github:  github,
		routing: routing,
	}
}

// SelectChannel returns the channel of the first configured team containing
// the login, or the default channel when no team matches
func (r *Router) SelectChannel(ctx context.Context, login types.GitHubLogin) types.ChannelID {
	if login == "" {
		return r.routing.DefaultChannel
	}

	if err := r.load(ctx); err != nil {
		logging.From(ctx).Warn("failed to load team membership, using default channel",
			"login", login,
			"error", err,
		)
		return r.routing.DefaultChannel
	}

	r.mu.Lock()
	members := r.members
	r.mu.Unlock()

	for _, slug := range r.routing.TeamSlugs() {
		if _, ok := members[slug][login]; ok {
			if channel, ok := r.routing.TeamChannel(slug); ok {
				return channel
			}
		}
	}

	return r.routing.DefaultChannel
}

// load fetches all configured teams' members concurrently. A failed team
// fetch is isolated: that team gets an empty member set and routing falls
// through to the next team or the default channel.
func (r *Router) load(ctx context.Context) error {
	r.mu.Lock()
	if r.loaded {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	_, err, _ := r.group.Do(teamMembersKey, func() (any, error) {
		slugs := r.routing.TeamSlugs()
		members := make(map[types.TeamSlug]map[types.GitHubLogin]struct{}, len(slugs))
		var membersMu sync.Mutex

		var eg errgroup.Group
		for _, slug := range slugs {
			eg.Go(func() error {
				set := map[types.GitHubLogin]struct{}{}

				users, err := r.github.TeamMembers(ctx, r.routing.Organization, slug)
				if err != nil {
					logging.From(ctx).Warn("failed to fetch team members, treating team as empty",
						"team", slug,
						"error", err,
					)
				} else {
					for _, u := range users {
						set[u.Login] = struct{}{}
					}
				}

				membersMu.Lock()
				members[slug] = set
				membersMu.Unlock()
				return nil
			})
		}
		_ = eg.Wait()

		r.mu.Lock()
		r.members = members
		r.loaded = true
		r.mu.Unlock()

		return nil, nil
	})

	return err
}
