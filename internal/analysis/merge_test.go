package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contribhub/contrib-insights/internal/models"
)

func TestMergeCountMaps(t *testing.T) {
	a := map[string]int{"x": 1, "y": 2}
	b := map[string]int{"y": 3, "z": 4}

	t.Run("sums per key over union", func(t *testing.T) {
		assert.Equal(t, map[string]int{"x": 1, "y": 5, "z": 4}, MergeCountMaps(a, b))
	})

	t.Run("commutative", func(t *testing.T) {
		assert.Equal(t, MergeCountMaps(a, b), MergeCountMaps(b, a))
	})

	t.Run("associative", func(t *testing.T) {
		c := map[string]int{"x": 7, "z": 1}
		assert.Equal(t,
			MergeCountMaps(MergeCountMaps(a, b), c),
			MergeCountMaps(a, MergeCountMaps(b, c)))
	})

	t.Run("empty is identity", func(t *testing.T) {
		assert.Equal(t, a, MergeCountMaps(a, map[string]int{}))
		assert.Equal(t, a, MergeCountMaps(a, nil))
	})

	t.Run("does not mutate inputs", func(t *testing.T) {
		MergeCountMaps(a, b)
		assert.Equal(t, map[string]int{"x": 1, "y": 2}, a)
		assert.Equal(t, map[string]int{"y": 3, "z": 4}, b)
	})
}

func TestMergeLineChangeMaps(t *testing.T) {
	a := map[string]models.LineChange{"2025-01-01": {Additions: 1, Deletions: 2}}
	b := map[string]models.LineChange{
		"2025-01-01": {Additions: 10, Deletions: 20},
		"2025-01-02": {Additions: 5},
	}

	merged := MergeLineChangeMaps(a, b)

	assert.Equal(t, models.LineChange{Additions: 11, Deletions: 22}, merged["2025-01-01"])
	assert.Equal(t, models.LineChange{Additions: 5}, merged["2025-01-02"])
	assert.Equal(t, models.LineChange{Additions: 1, Deletions: 2}, a["2025-01-01"])
}

func makeStat(key string, commits int, matched bool) *models.ContributorStat {
	return &models.ContributorStat{
		Key:             key,
		Commits:         commits,
		IsMatched:       matched,
		CommitsByDay:    map[string]int{"2025-01-01": commits},
		CommitsByBranch: map[string]int{"main": commits},
	}
}

func TestMergeUserStats(t *testing.T) {
	t.Run("empty new returns prev deep-equal but not same reference", func(t *testing.T) {
		prev := []*models.ContributorStat{makeStat("login:alice", 5, true)}

		merged := MergeUserStats(prev, nil)

		require.Len(t, merged, 1)
		assert.Equal(t, prev[0], merged[0])
		assert.NotSame(t, prev[0], merged[0])

		// Mutating the result must not leak into prev.
		merged[0].CommitsByDay["2025-01-01"] = 99
		assert.Equal(t, 5, prev[0].CommitsByDay["2025-01-01"])
	})

	t.Run("empty prev returns new as-is", func(t *testing.T) {
		next := []*models.ContributorStat{makeStat("login:bob", 3, false)}

		merged := MergeUserStats(nil, next)

		require.Len(t, merged, 1)
		assert.Same(t, next[0], merged[0])
	})

	t.Run("overlapping keys are summed", func(t *testing.T) {
		first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		newer := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

		prev := makeStat("login:alice", 5, false)
		prev.Additions = 10
		prev.FirstCommitAt = &first
		prev.LastCommitAt = &last

		next := makeStat("login:alice", 3, true)
		next.Additions = 7
		next.FirstCommitAt = &last
		next.LastCommitAt = &newer
		userID := "user-1"
		next.MappedUserID = &userID

		merged := MergeUserStats(
			[]*models.ContributorStat{prev},
			[]*models.ContributorStat{next},
		)

		require.Len(t, merged, 1)
		row := merged[0]
		assert.Equal(t, 8, row.Commits)
		assert.Equal(t, 17, row.Additions)
		assert.Equal(t, map[string]int{"2025-01-01": 8}, row.CommitsByDay)
		assert.True(t, row.IsMatched)
		require.NotNil(t, row.MappedUserID)
		assert.Equal(t, "user-1", *row.MappedUserID)
		assert.True(t, row.FirstCommitAt.Equal(first))
		assert.True(t, row.LastCommitAt.Equal(newer))
	})

	t.Run("once matched stays matched", func(t *testing.T) {
		prev := makeStat("login:alice", 1, true)
		next := makeStat("login:alice", 1, false)

		merged := MergeUserStats(
			[]*models.ContributorStat{prev},
			[]*models.ContributorStat{next},
		)

		assert.True(t, merged[0].IsMatched)
	})

	t.Run("disjoint keys are unioned", func(t *testing.T) {
		merged := MergeUserStats(
			[]*models.ContributorStat{makeStat("login:alice", 5, true)},
			[]*models.ContributorStat{makeStat("login:bob", 3, false)},
		)
		assert.Len(t, merged, 2)
	})
}

func TestComputeRepoStat(t *testing.T) {
	rows := []*models.ContributorStat{
		makeStat("login:alice", 5, true),
		makeStat("login:bob", 3, false),
		makeStat(models.UnmatchedContributorKey, 2, false),
	}
	rows[0].Additions, rows[0].Deletions = 100, 40
	rows[1].Additions = 10

	stat := ComputeRepoStat(rows, map[string]int{"2025-01-01": 10}, map[string]int{"main": 10}, 7)

	assert.Equal(t, 10, stat.TotalCommits)
	assert.Equal(t, 110, stat.TotalAdditions)
	assert.Equal(t, 40, stat.TotalDeletions)
	assert.Equal(t, 3, stat.TotalContributors)
	assert.Equal(t, 1, stat.MatchedContributors)
	assert.Equal(t, 2, stat.UnmatchedContributors)
	assert.Equal(t, 5, stat.UnmatchedCommits)
	assert.Equal(t, 7, stat.DefaultBranchCommits)
	assert.Equal(t, stat.TotalContributors, stat.MatchedContributors+stat.UnmatchedContributors)
}

func TestMergeIdentityRoundTrip(t *testing.T) {
	// Merging a snapshot's own rows with an empty new run must reproduce
	// identical totals.
	rows := []*models.ContributorStat{
		makeStat("login:alice", 5, true),
		makeStat("email:bob@example.com", 3, false),
	}
	before := ComputeRepoStat(rows, map[string]int{"2025-01-01": 8}, map[string]int{"main": 8}, 8)

	merged := MergeUserStats(rows, nil)
	after := ComputeRepoStat(merged, MergeCountMaps(before.CommitsByDay, nil), MergeCountMaps(before.CommitsByBranch, nil), before.DefaultBranchCommits)

	assert.Equal(t, before, after)
}

func TestMergeSampleCommits(t *testing.T) {
	date := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("new commits first, oldest previous dropped", func(t *testing.T) {
		prev := make([]models.SampleCommit, 200)
		for i := range prev {
			prev[i] = models.SampleCommit{SHA: fmt.Sprintf("old-%03d", i)}
		}
		newCommits := make([]*models.Commit, 10)
		for i := range newCommits {
			newCommits[i] = &models.Commit{SHA: fmt.Sprintf("new-%02d", i), AuthorDate: &date}
		}

		merged := MergeSampleCommits(prev, newCommits, 200)

		require.Len(t, merged, 200)
		assert.Equal(t, "new-00", merged[0].SHA)
		assert.Equal(t, "new-09", merged[9].SHA)
		assert.Equal(t, "old-000", merged[10].SHA)
		assert.Equal(t, "old-189", merged[199].SHA)
	})

	t.Run("deduplicates by sha", func(t *testing.T) {
		prev := []models.SampleCommit{{SHA: "dup"}, {SHA: "keep"}}
		newCommits := []*models.Commit{{SHA: "dup", AuthorDate: &date}}

		merged := MergeSampleCommits(prev, newCommits, 200)

		require.Len(t, merged, 2)
		assert.Equal(t, "dup", merged[0].SHA)
		assert.Equal(t, "2025-06-01T10:00:00Z", merged[0].Date)
		assert.Equal(t, "keep", merged[1].SHA)
	})
}
