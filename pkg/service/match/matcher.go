package match

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
)

// minPrefixKeyLen is the minimum key length (in runes) for prefix matching.
// Single-character keys would match large parts of the directory.
const minPrefixKeyLen = 2

// Matcher finds the Slack identity that corresponds to a human name. It never
// guesses between ambiguous candidates: either exactly one match survives, an
// operator-configured priority entry disambiguates, or it returns nil.
type Matcher struct {
	skip     map[string]struct{}
	priority map[string]string
}

// New creates a Matcher. skipUsers entries are compared by exact normalized
// key only; priority maps an original (un-normalized) target name to the raw
// candidate name that should win when multiple prefix matches exist.
func New(skipUsers []string, priority map[string]string) *Matcher {
	skip := make(map[string]struct{}, len(skipUsers))
	for _, name := range skipUsers {
		if key := Normalize(name); key != "" {
			skip[key] = struct{}{}
		}
	}

	if priority == nil {
		priority = map[string]string{}
	}

	return &Matcher{skip: skip, priority: priority}
}

// FindBestMatch returns the best candidate for the target name, or nil when
// no unambiguous match exists.
func (m *Matcher) FindBestMatch(ctx context.Context, candidates []*model.SlackUser, target string) *model.MatchCandidate {
	logger := logging.From(ctx)

	key := Normalize(target)
	if key == "" {
		logger.Debug("normalized name is empty", "target", target)
		return nil
	}

	if _, ok := m.skip[key]; ok {
		logger.Info("search target is a skip user", "target", target)
		return nil
	}

	var exacts, prefixes []*model.MatchCandidate
	for _, user := range candidates {
		if user.Deleted || m.isSkipUser(user) {
			continue
		}

		if c := classify(user, key); c != nil {
			switch c.Type {
			case model.MatchExact:
				exacts = append(exacts, c)
			case model.MatchPrefix:
				prefixes = append(prefixes, c)
			}
		}
	}

	switch {
	case len(exacts) > 0:
		if len(exacts) > 1 {
			logger.Warn("multiple exact matches, using the first",
				"target", target,
				"chosen", exacts[0].MatchedName,
				"count", len(exacts),
			)
		}
		return exacts[0]

	case len(prefixes) == 1:
		return prefixes[0]

	case len(prefixes) > 1:
		preferred, ok := m.priority[target]
		if !ok {
			logger.Warn("multiple matches without priority mapping",
				"target", target,
				"candidates", matchedNames(prefixes),
			)
			return nil
		}
		for _, c := range prefixes {
			if c.MatchedName == preferred {
				return c
			}
		}
		logger.Warn("priority-mapped user not found",
			"target", target,
			"preferred", preferred,
			"candidates", matchedNames(prefixes),
		)
		return nil

	default:
		logger.Info("no matching identity", "target", target)
		return nil
	}
}

// classify compares each candidate name of a user against the key. An exact
// hit on any name wins over a prefix hit on another.
func classify(user *model.SlackUser, key string) *model.MatchCandidate {
	var prefix *model.MatchCandidate

	for _, name := range user.CandidateNames() {
		candidateKey := Normalize(name)
		if candidateKey == "" {
			continue
		}

		if candidateKey == key {
			return &model.MatchCandidate{User: user, MatchedName: name, Type: model.MatchExact}
		}

		if prefix == nil &&
			utf8.RuneCountInString(key) >= minPrefixKeyLen &&
			strings.HasPrefix(candidateKey, key) {
			prefix = &model.MatchCandidate{User: user, MatchedName: name, Type: model.MatchPrefix}
		}
	}

	return prefix
}

// isSkipUser reports whether any of the user's names equals a skip entry
// after normalization. Substring containment is intentionally not checked.
func (m *Matcher) isSkipUser(user *model.SlackUser) bool {
	for _, name := range user.CandidateNames() {
		if _, ok := m.skip[Normalize(name)]; ok {
			return true
		}
	}
	return false
}

func matchedNames(candidates []*model.MatchCandidate) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.MatchedName
	}
	return names
}
