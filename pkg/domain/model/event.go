package model

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
)

// Payload is the webhook-shaped body of an inbound event. Only the fields the
// dispatch pipeline reads are modeled; everything else passes through
// untouched.
type Payload struct {
	Action            string            `json:"action"`
	Repository        *Repository       `json:"repository"`
	Sender            *User             `json:"sender"`
	Comment           *Comment          `json:"comment"`
	PullRequest       *PullRequest      `json:"pull_request"`
	Review            *Review           `json:"review"`
	RequestedReviewer *User             `json:"requested_reviewer"`
	RequestedTeam     *Team             `json:"requested_team"`
	WorkflowRun       *WorkflowRun      `json:"workflow_run"`
	Deployment        *Deployment       `json:"deployment"`
	DeploymentStatus  *DeploymentStatus `json:"deployment_status"`
}

// Repository identifies the repository an event belongs to
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    *User  `json:"owner"`
}

// OwnerName returns the repository owner login, derived from the owner object
// or the full name
func (r *Repository) OwnerName() string {
	if r.Owner != nil && r.Owner.Login != "" {
		return string(r.Owner.Login)
	}
	if owner, _, ok := strings.Cut(r.FullName, "/"); ok {
		return owner
	}
	return ""
}

// User is a GitHub account reference inside a payload
type User struct {
	Login types.GitHubLogin `json:"login"`
}

// Team is a GitHub team reference inside a payload
type Team struct {
	Slug types.TeamSlug `json:"slug"`
	Name string         `json:"name"`
}

// Comment is a PR comment, either on a code line or on the PR page
type Comment struct {
	ID             int64  `json:"id"`
	Body           string `json:"body"`
	User           *User  `json:"user"`
	InReplyTo      int64  `json:"in_reply_to_id"`
	DiffHunk       string `json:"diff_hunk"`
	Path           string `json:"path"`
	HTMLURL        string `json:"html_url"`
	PullRequestURL string `json:"pull_request_url"`
}

// IsCodeComment reports whether the comment carries a diff marker, i.e. it is
// attached to a code line rather than the PR page
func (c *Comment) IsCodeComment() bool {
	return c.DiffHunk != "" || c.Path != ""
}

// PullRequest is a pull request, populated either from a payload or from a
// GitHub API fetch
type PullRequest struct {
	Number             int     `json:"number"`
	Title              string  `json:"title"`
	Draft              bool    `json:"draft"`
	User               *User   `json:"user"`
	RequestedReviewers []*User `json:"requested_reviewers"`
	RequestedTeams     []*Team `json:"requested_teams"`
	HTMLURL            string  `json:"html_url"`
}

// Author returns the PR author login, or empty if unknown
func (p *PullRequest) Author() types.GitHubLogin {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.Login
}

// Review is a submitted pull request review
type Review struct {
	State string `json:"state"`
	Body  string `json:"body"`
	User  *User  `json:"user"`
}

// WorkflowRun is a CI workflow run reference
type WorkflowRun struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Conclusion string `json:"conclusion"`
	HeadBranch string `json:"head_branch"`
	HTMLURL    string `json:"html_url"`
	Actor      *User  `json:"actor"`
}

// Deployment is a deployment reference
type Deployment struct {
	Environment string `json:"environment"`
	Ref         string `json:"ref"`
	Creator     *User  `json:"creator"`
}

// DeploymentStatus carries the state of a deployment
type DeploymentStatus struct {
	State string `json:"state"`
}

// PRNumber determines the pull request number from an embedded PR object or
// the comment's pull request URL. Missing number is terminal for the event.
func (p *Payload) PRNumber() (int, error) {
	if p.PullRequest != nil && p.PullRequest.Number > 0 {
		return p.PullRequest.Number, nil
	}

	if p.Comment != nil && p.Comment.PullRequestURL != "" {
		raw := strings.TrimSuffix(p.Comment.PullRequestURL, "/")
		if idx := strings.LastIndex(raw, "/"); idx >= 0 {
			if n, err := strconv.Atoi(raw[idx+1:]); err == nil && n > 0 {
				return n, nil
			}
		}
		return 0, goerr.New("pull request URL has no parsable number",
			goerr.V("url", p.Comment.PullRequestURL))
	}

	return 0, goerr.New("payload has no pull request number")
}

// EventKindOf maps an inbound event name to a dispatchable kind. It accepts
// both canonical kinds (CLI usage) and GitHub webhook event names combined
// with payload fields (server usage).
func EventKindOf(event string, p *Payload) (types.EventKind, error) {
	if kind := types.EventKind(event); kind.Validate() == nil {
		return kind, nil
	}

	switch event {
	case "issue_comment", "pull_request_review_comment", "commit_comment":
		return types.EventComment, nil

	case "pull_request_review":
		state := ""
		if p != nil && p.Review != nil {
			state = strings.ToLower(p.Review.State)
		}
		switch state {
		case "approved":
			return types.EventApprove, nil
		case "changes_requested":
			return types.EventChangesRequested, nil
		default:
			return types.EventComment, nil
		}

	case "pull_request":
		if p != nil && p.Action == "review_requested" {
			return types.EventReviewRequested, nil
		}

	case "workflow_run":
		return types.EventCI, nil

	case "deployment", "deployment_status":
		return types.EventDeploy, nil
	}

	return "", goerr.New("no event kind for webhook event",
		goerr.V("event", event),
		goerr.V("supported", types.SupportedEventKinds()),
	)
}
