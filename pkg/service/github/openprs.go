package github

import (
	"context"
	"fmt"
	"iter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/shurcooL/githubv4"

	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
)

// OpenPullRequests iterates all open non-draft pull requests of a repository
// using GitHub GraphQL search, paginating lazily.
func (c *Client) OpenPullRequests(ctx context.Context, owner, repo string) iter.Seq2[*model.PullRequest, error] {
	return func(yield func(*model.PullRequest, error) bool) {
		query := fmt.Sprintf("repo:%s/%s is:pr is:open draft:false sort:created-asc", owner, repo)
		var cursor *githubv4.String

		for {
			var q openPRQuery
			variables := map[string]interface{}{
				"query":  githubv4.String(query),
				"first":  githubv4.Int(50),
				"cursor": cursor,
			}

			if err := c.gql.Query(ctx, &q, variables); err != nil {
				yield(nil, goerr.Wrap(err, "failed to search open pull requests",
					goerr.V("owner", owner), goerr.V("repo", repo)))
				return
			}

			for _, edge := range q.Search.Edges {
				pr := edge.Node.PullRequest
				if bool(pr.IsDraft) {
					continue
				}

				if !yield(convertOpenPR(pr), nil) {
					return
				}
			}

			if !q.Search.PageInfo.HasNextPage {
				return
			}
			cursor = &q.Search.PageInfo.EndCursor
		}
	}
}

func convertOpenPR(pr openPRFragment) *model.PullRequest {
	result := &model.PullRequest{
		Number:  int(pr.Number),
		Title:   string(pr.Title),
		Draft:   bool(pr.IsDraft),
		HTMLURL: string(pr.URL),
		User:    &model.User{Login: types.GitHubLogin(pr.Author.Login)},
	}

	for _, node := range pr.ReviewRequests.Nodes {
		if login := string(node.RequestedReviewer.User.Login); login != "" {
			result.RequestedReviewers = append(result.RequestedReviewers, &model.User{
				Login: types.GitHubLogin(login),
			})
		}
		if slug := string(node.RequestedReviewer.Team.Slug); slug != "" {
			result.RequestedTeams = append(result.RequestedTeams, &model.Team{
				Slug: types.TeamSlug(slug),
			})
		}
	}

	return result
}

// GraphQL query types

type openPRQuery struct {
	Search struct {
		Edges []struct {
			Node struct {
				PullRequest openPRFragment `graphql:"... on PullRequest"`
			}
		}
		PageInfo pageInfo
	} `graphql:"search(query: $query, type: ISSUE, first: $first, after: $cursor)"`
}

type openPRFragment struct {
	Number  githubv4.Int
	Title   githubv4.String
	IsDraft githubv4.Boolean
	URL     githubv4.String
	Author  struct {
		Login githubv4.String
	}
	ReviewRequests struct {
		Nodes []struct {
			RequestedReviewer struct {
				User struct {
					Login githubv4.String
				} `graphql:"... on User"`
				Team struct {
					Slug githubv4.String
				} `graphql:"... on Team"`
			}
		}
	} `graphql:"reviewRequests(first: 50)"`
}

type pageInfo struct {
	HasNextPage githubv4.Boolean
	EndCursor   githubv4.String
}
