package types

// GitHubLogin is a GitHub account login, the stable key of the GitHub side
type GitHubLogin string

// String returns the string representation of GitHubLogin
func (l GitHubLogin) String() string {
	return string(l)
}

// SlackUserID is a Slack workspace member ID (e.g. "U012ABCDEF")
type SlackUserID string

// String returns the string representation of SlackUserID
func (i SlackUserID) String() string {
	return string(i)
}

// ChannelID is a Slack channel ID used as a notification destination
type ChannelID string

// String returns the string representation of ChannelID
func (c ChannelID) String() string {
	return string(c)
}

// TeamSlug is a GitHub team slug within the configured organization
type TeamSlug string

// String returns the string representation of TeamSlug
func (t TeamSlug) String() string {
	return string(t)
}

// ResolveProperty selects which Slack property an identity resolution returns
type ResolveProperty string

const (
	// PropertySlackID resolves to the Slack user ID for mentions
	PropertySlackID ResolveProperty = "id"
	// PropertyRealName resolves to the human-readable Slack name
	PropertyRealName ResolveProperty = "realName"
)
