package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	githubsvc "github.com/secmon-lab/prnotify/pkg/service/github"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
)

// dispatchComment handles both code-line comments and PR-page comments. A
// comment carrying a diff marker is tried as a code comment first; if the
// thread lookup reports the comment missing it is re-classified as a PR-page
// comment and retried exactly once.
func (uc *UseCases) dispatchComment(ctx context.Context, p *model.Payload) error {
	comment := p.Comment
	if comment == nil && p.Review != nil {
		// a review submitted with state "commented" arrives without a comment
		// object; its body is the comment text
		if p.Review.Body == "" || p.Review.User == nil {
			logging.From(ctx).Info("review has no comment body, nothing to notify")
			return nil
		}
		comment = &model.Comment{Body: p.Review.Body, User: p.Review.User}
	}
	if comment == nil {
		return goerr.Wrap(ErrInvalidPayload, "missing comment object")
	}

	owner, repo := uc.repoCoords(p)

	number, err := p.PRNumber()
	if err != nil {
		return goerr.Wrap(ErrInvalidPayload, "cannot determine pull request number",
			goerr.V("reason", err.Error()))
	}

	commenter, err := uc.commentAuthor(ctx, owner, repo, comment)
	if err != nil {
		return err
	}

	pr, err := uc.github.PullRequest(ctx, owner, repo, number)
	if err != nil {
		return err
	}

	codeComment := comment.IsCodeComment()

	var recipients []types.GitHubLogin
	if codeComment {
		recipients, err = uc.threadRecipients(ctx, owner, repo, number, comment.ID, commenter, pr)
		if err != nil {
			if !errors.Is(err, githubsvc.ErrCommentNotFound) {
				return err
			}
			logging.From(ctx).Info("comment not found on code surface, retrying as PR-page comment",
				"comment_id", comment.ID,
			)
			codeComment = false
		}
	}

	if !codeComment {
		reviews, err := uc.github.PullRequestReviews(ctx, owner, repo, number)
		if err != nil {
			return err
		}
		recipients = uc.prCommentRecipients(ctx, owner, pr, reviews, commenter)
	}

	text := commentText(uc.repoFullName(p), pr, commenter, comment.Body)
	return uc.notify(ctx, recipients, text)
}

// commentAuthor prefers the author embedded in the payload and falls back to
// a comment fetch when the payload omits it
func (uc *UseCases) commentAuthor(ctx context.Context, owner, repo string, comment *model.Comment) (types.GitHubLogin, error) {
	if comment.User != nil && comment.User.Login != "" {
		return comment.User.Login, nil
	}

	login, err := uc.github.CommentAuthor(ctx, owner, repo, comment.ID, comment.IsCodeComment())
	if err != nil {
		return "", goerr.Wrap(err, "failed to determine comment author",
			goerr.V("comment_id", comment.ID))
	}
	return login, nil
}
