package match_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/service/match"
)

func TestFindBestMatchExact(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "John Doe"},
		{ID: "U002", RealName: "John Doering"},
	}

	got := m.FindBestMatch(ctx, candidates, "John Doe")
	gt.Value(t, got).NotNil()
	gt.Value(t, got.User.ID.String()).Equal("U001")
	gt.Value(t, got.Type).Equal(model.MatchExact)
}

func TestFindBestMatchExactBeatsPrefix(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "Kim Heeyeon Longer"},
		{ID: "U002", RealName: "Kim Heeyeon"},
	}

	got := m.FindBestMatch(ctx, candidates, "Kim Heeyeon")
	gt.Value(t, got).NotNil()
	gt.Value(t, got.User.ID.String()).Equal("U002")
	gt.Value(t, got.Type).Equal(model.MatchExact)
}

func TestFindBestMatchMultipleExactUsesFirst(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "Jane Park"},
		{ID: "U002", RealName: "jane park"},
	}

	got := m.FindBestMatch(ctx, candidates, "Jane Park")
	gt.Value(t, got).NotNil()
	gt.Value(t, got.User.ID.String()).Equal("U001")
}

func TestFindBestMatchSinglePrefix(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "김희연 (개발자)"},
		{ID: "U002", RealName: "박지민"},
	}

	got := m.FindBestMatch(ctx, candidates, "김희")
	gt.Value(t, got).NotNil()
	gt.Value(t, got.User.ID.String()).Equal("U001")
	gt.Value(t, got.Type).Equal(model.MatchPrefix)
}

func TestFindBestMatchPrefixFloor(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "김희연"},
	}

	// single-rune keys never prefix match
	gt.Value(t, m.FindBestMatch(ctx, candidates, "김")).Nil()
}

func TestFindBestMatchAmbiguousWithoutPriority(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "김희연 A"},
		{ID: "U002", RealName: "김희연 B"},
	}

	gt.Value(t, m.FindBestMatch(ctx, candidates, "김희연")).Nil()
}

func TestFindBestMatchPriorityOverride(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, map[string]string{
		"김희연": "김희연 A",
	})

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "김희연 B"},
		{ID: "U002", RealName: "김희연 A"},
	}

	got := m.FindBestMatch(ctx, candidates, "김희연")
	gt.Value(t, got).NotNil()
	gt.Value(t, got.User.ID.String()).Equal("U002")
	gt.Value(t, got.MatchedName).Equal("김희연 A")
}

func TestFindBestMatchPriorityMissEntry(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, map[string]string{
		"김희연": "김희연 C",
	})

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "김희연 A"},
		{ID: "U002", RealName: "김희연 B"},
	}

	// mapped name is not among the candidates
	gt.Value(t, m.FindBestMatch(ctx, candidates, "김희연")).Nil()
}

func TestFindBestMatchSkipIsExactOnly(t *testing.T) {
	ctx := context.Background()
	m := match.New([]string{"john"}, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "John"},
		{ID: "U002", RealName: "Johnny"},
	}

	// "johnny" starts with the skip key "john" but is not skipped
	got := m.FindBestMatch(ctx, candidates, "Johnny")
	gt.Value(t, got).NotNil()
	gt.Value(t, got.User.ID.String()).Equal("U002")

	// the exact skip user is excluded from candidates
	gt.Value(t, m.FindBestMatch(ctx, candidates, "John")).Nil()
}

func TestFindBestMatchTargetIsSkipUser(t *testing.T) {
	ctx := context.Background()
	m := match.New([]string{"CI Bot"}, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "CI Bot"},
	}

	gt.Value(t, m.FindBestMatch(ctx, candidates, "ci bot")).Nil()
}

func TestFindBestMatchDeletedExcluded(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "Gone Person", Deleted: true},
	}

	gt.Value(t, m.FindBestMatch(ctx, candidates, "Gone Person")).Nil()
}

func TestFindBestMatchDisplayNamePreferred(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "Real Name", DisplayName: "주현석_dobby"},
	}

	got := m.FindBestMatch(ctx, candidates, "주현석")
	gt.Value(t, got).NotNil()
	gt.Value(t, got.MatchedName).Equal("주현석_dobby")
	gt.Value(t, got.Type).Equal(model.MatchExact)
}

func TestFindBestMatchEmptyTarget(t *testing.T) {
	ctx := context.Background()
	m := match.New(nil, nil)

	candidates := []*model.SlackUser{
		{ID: "U001", RealName: "Someone"},
	}

	gt.Value(t, m.FindBestMatch(ctx, candidates, "   ")).Nil()
}
