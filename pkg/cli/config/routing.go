package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/prnotify/pkg/domain/model/config"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
)

// RoutingConfig is the operator-supplied notification routing table. Team
// order in the file is the channel-selection priority order.
type RoutingConfig struct {
	Organization   string            `toml:"organization"`
	DefaultChannel string            `toml:"default_channel"`
	Teams          []TeamConfig      `toml:"team"`
	SkipUsers      []string          `toml:"skip_users"`
	Priority       map[string]string `toml:"priority"`
}

// TeamConfig binds a GitHub team slug to its notification channel
type TeamConfig struct {
	Slug    string `toml:"slug"`
	Channel string `toml:"channel"`
}

// Validate checks if the TeamConfig is valid
func (t *TeamConfig) Validate() error {
	if t.Slug == "" {
		return goerr.New("team slug is required")
	}
	if t.Channel == "" {
		return goerr.New("team channel is required", goerr.V("slug", t.Slug))
	}
	return nil
}

// Validate checks if the RoutingConfig is valid
func (r *RoutingConfig) Validate() error {
	if r.Organization == "" {
		return goerr.New("organization is required")
	}
	if r.DefaultChannel == "" {
		return goerr.New("default_channel is required")
	}

	slugs := make(map[string]bool)
	for _, team := range r.Teams {
		if err := team.Validate(); err != nil {
			return goerr.Wrap(err, "invalid team")
		}
		if slugs[team.Slug] {
			return goerr.New("duplicate team slug", goerr.V("slug", team.Slug))
		}
		slugs[team.Slug] = true
	}

	for target, preferred := range r.Priority {
		if target == "" || preferred == "" {
			return goerr.New("priority entries must map a name to a name",
				goerr.V("target", target), goerr.V("preferred", preferred))
		}
	}

	return nil
}

// LoadRoutingConfig loads the routing configuration from a TOML file
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read routing config", goerr.V("path", path))
	}

	var config RoutingConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "routing config validation failed", goerr.V("path", path))
	}

	return &config, nil
}

// ToRouting converts the file representation to the domain routing model
func (r *RoutingConfig) ToRouting() *domainConfig.Routing {
	teams := make([]domainConfig.Team, len(r.Teams))
	for i, team := range r.Teams {
		teams[i] = domainConfig.Team{
			Slug:    types.TeamSlug(team.Slug),
			Channel: types.ChannelID(team.Channel),
		}
	}

	return &domainConfig.Routing{
		Organization:   r.Organization,
		DefaultChannel: types.ChannelID(r.DefaultChannel),
		Teams:          teams,
		SkipUsers:      append([]string(nil), r.SkipUsers...),
		Priority:       r.Priority,
	}
}
