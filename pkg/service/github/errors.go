package github

import "github.com/m-mizutani/goerr/v2"

// ErrCommentNotFound indicates the comment does not exist on the queried
// surface (code comment vs PR-page comment). The dispatch pipeline uses it to
// re-classify a comment once.
var ErrCommentNotFound = goerr.New("comment not found")
