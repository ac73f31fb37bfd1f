package model

import (
	"github.com/secmon-lab/prnotify/pkg/domain/types"
)

// GitHubUser is a person as known to the GitHub organization directory
type GitHubUser struct {
	Login    types.GitHubLogin
	RealName string
}

// SlackUser is a person as known to the Slack workspace directory. The
// directory snapshot is loaded once per invocation and treated as read-only.
type SlackUser struct {
	ID          types.SlackUserID
	RealName    string
	DisplayName string
	Deleted     bool
}

// CandidateNames returns the raw names to match against, display name first
func (u *SlackUser) CandidateNames() []string {
	var names []string
	if u.DisplayName != "" {
		names = append(names, u.DisplayName)
	}
	if u.RealName != "" {
		names = append(names, u.RealName)
	}
	return names
}

// MatchType classifies how a candidate name matched the target key
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchPrefix MatchType = "prefix"
)

// MatchCandidate is a transient result of name matching, never persisted
type MatchCandidate struct {
	User        *SlackUser
	MatchedName string
	Type        MatchType
}

// Recipient is a GitHub-identified person with a resolved Slack mention
// target. SlackID is empty when resolution degraded to the raw login.
type Recipient struct {
	Login   types.GitHubLogin
	SlackID types.SlackUserID
}

// Mention returns the Slack mention text for the recipient. Unresolved
// recipients are shown by their GitHub login verbatim.
func (r *Recipient) Mention() string {
	if r.SlackID != "" {
		return "<@" + r.SlackID.String() + ">"
	}
	return "@" + r.Login.String()
}

// ChannelGroups partitions recipients by destination channel. Insertion order
// is preserved both across channels and within each channel so that mention
// lists are stable.
type ChannelGroups struct {
	order  []types.ChannelID
	groups map[types.ChannelID][]*Recipient
}

// NewChannelGroups creates an empty ChannelGroups
func NewChannelGroups() *ChannelGroups {
	return &ChannelGroups{
		groups: map[types.ChannelID][]*Recipient{},
	}
}

// Add assigns a recipient to a channel
func (g *ChannelGroups) Add(ch types.ChannelID, r *Recipient) {
	if _, ok := g.groups[ch]; !ok {
		g.order = append(g.order, ch)
	}
	g.groups[ch] = append(g.groups[ch], r)
}

// Channels returns the destination channels in first-assignment order
func (g *ChannelGroups) Channels() []types.ChannelID {
	return g.order
}

// Recipients returns the recipients assigned to the channel
func (g *ChannelGroups) Recipients(ch types.ChannelID) []*Recipient {
	return g.groups[ch]
}

// Len returns the number of channel groups
func (g *ChannelGroups) Len() int {
	return len(g.order)
}
