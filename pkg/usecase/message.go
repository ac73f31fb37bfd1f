package usecase

import (
	"fmt"

	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
)

const maxQuotedBody = 400

func prLink(fullName string, pr *model.PullRequest) string {
	if pr.HTMLURL == "" {
		return fmt.Sprintf("%s#%d %s", fullName, pr.Number, pr.Title)
	}
	return fmt.Sprintf("<%s|%s#%d %s>", pr.HTMLURL, fullName, pr.Number, pr.Title)
}

func commentText(fullName string, pr *model.PullRequest, commenter types.GitHubLogin, body string) string {
	return fmt.Sprintf("%s commented on %s:\n> %s",
		commenter, prLink(fullName, pr), truncate(body, maxQuotedBody))
}

func reviewText(fullName string, pr *model.PullRequest, reviewer types.GitHubLogin, kind types.EventKind) string {
	verb := "reviewed"
	switch kind {
	case types.EventApprove:
		verb = "approved"
	case types.EventChangesRequested:
		verb = "requested changes on"
	}
	return fmt.Sprintf("%s %s %s", reviewer, verb, prLink(fullName, pr))
}

func reviewRequestText(fullName string, pr *model.PullRequest) string {
	return fmt.Sprintf("Your review is requested on %s", prLink(fullName, pr))
}

func workflowText(fullName string, run *model.WorkflowRun) string {
	link := run.Name
	if run.HTMLURL != "" {
		link = fmt.Sprintf("<%s|%s>", run.HTMLURL, run.Name)
	}
	return fmt.Sprintf("Workflow %s on %s (%s) finished: %s",
		link, fullName, run.HeadBranch, run.Conclusion)
}

func deployText(fullName string, d *model.Deployment, state string) string {
	return fmt.Sprintf("Deployment of %s to %s (%s): %s",
		fullName, d.Environment, d.Ref, state)
}

// truncate shortens s to at most n runes, appending an ellipsis when cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
