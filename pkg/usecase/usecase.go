package usecase

import (
	"github.com/secmon-lab/prnotify/pkg/domain/interfaces"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/model/config"
	"github.com/secmon-lab/prnotify/pkg/service/identity"
	"github.com/secmon-lab/prnotify/pkg/service/match"
)

// UseCases wires the notification pipeline: event dispatch, recipient
// aggregation, identity resolution, channel routing and message delivery.
// All caches live inside the injected collaborators and last one invocation.
type UseCases struct {
	github   interfaces.GitHubClient
	slack    interfaces.SlackClient
	routing  *config.Routing
	resolver *identity.Resolver
	router   *Router
}

// New creates the use cases with injected collaborators
func New(github interfaces.GitHubClient, slack interfaces.SlackClient, routing *config.Routing) *UseCases {
	matcher := match.New(routing.SkipUsers, routing.Priority)

	return &UseCases{
		github:   github,
		slack:    slack,
		routing:  routing,
		resolver: identity.New(github, slack, matcher),
		router:   NewRouter(github, routing),
	}
}

// repoCoords extracts owner and repository name from a payload, falling back
// to the configured organization when the payload omits the owner
func (uc *UseCases) repoCoords(p *model.Payload) (string, string) {
	owner := p.Repository.OwnerName()
	if owner == "" {
		owner = uc.routing.Organization
	}
	return owner, p.Repository.Name
}

func (uc *UseCases) repoFullName(p *model.Payload) string {
	if p.Repository.FullName != "" {
		return p.Repository.FullName
	}
	owner, repo := uc.repoCoords(p)
	return owner + "/" + repo
}
