package config

import "github.com/secmon-lab/prnotify/pkg/domain/types"

// Team binds a GitHub team to its notification channel
type Team struct {
	Slug    types.TeamSlug
	Channel types.ChannelID
}

// Routing is the operator-supplied notification routing configuration. Team
// order is the channel-selection priority: a user belongs to the first team
// that contains them.
type Routing struct {
	Organization   string
	DefaultChannel types.ChannelID
	Teams          []Team
	SkipUsers      []string
	Priority       map[string]string
}

// TeamSlugs returns the configured team slugs in priority order
func (r *Routing) TeamSlugs() []types.TeamSlug {
	slugs := make([]types.TeamSlug, len(r.Teams))
	for i, t := range r.Teams {
		slugs[i] = t.Slug
	}
	return slugs
}

// TeamChannel returns the channel configured for the team slug
func (r *Routing) TeamChannel(slug types.TeamSlug) (types.ChannelID, bool) {
	for _, t := range r.Teams {
		if t.Slug == slug {
			return t.Channel, true
		}
	}
	return "", false
}
