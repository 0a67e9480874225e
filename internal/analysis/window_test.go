package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contribhub/contrib-insights/internal/models"
)

func snapshotWith(totalCommits int, commitsByDay map[string]int) *models.Snapshot {
	return &models.Snapshot{
		AnalysedAt: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
		RepoStat: models.RepoStat{
			TotalCommits: totalCommits,
			CommitsByDay: commitsByDay,
		},
	}
}

func TestHasUsableRepoCommitsByDay(t *testing.T) {
	tests := []struct {
		name string
		prev *models.Snapshot
		want bool
	}{
		{"nil snapshot", nil, false},
		{"zero commits empty histogram", snapshotWith(0, map[string]int{}), true},
		{"commits with histogram", snapshotWith(5, map[string]int{"2025-03-01": 5}), true},
		{"commits but empty histogram", snapshotWith(10, map[string]int{}), false},
		{"commits but nil histogram", snapshotWith(10, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasUsableRepoCommitsByDay(tt.prev))
		})
	}
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("usable baseline opens window at its analysis time", func(t *testing.T) {
		prev := snapshotWith(5, map[string]int{"2025-03-01": 5})

		baseline, since := ResolveWindow(prev, now, 90)

		require.NotNil(t, baseline)
		assert.True(t, since.Equal(prev.AnalysedAt))
	})

	t.Run("degenerate baseline is discarded for the fixed lookback", func(t *testing.T) {
		prev := snapshotWith(10, map[string]int{})

		baseline, since := ResolveWindow(prev, now, 90)

		assert.Nil(t, baseline)
		assert.True(t, since.Equal(now.AddDate(0, 0, -90)))
	})

	t.Run("no previous snapshot", func(t *testing.T) {
		baseline, since := ResolveWindow(nil, now, 90)

		assert.Nil(t, baseline)
		assert.True(t, since.Equal(now.AddDate(0, 0, -90)))
	})
}

func TestFilterCommitsAfter(t *testing.T) {
	cutoff := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	commits := []*models.Commit{
		{SHA: "before", AuthorDate: timePtr(cutoff.Add(-time.Hour))},
		{SHA: "exact", AuthorDate: timePtr(cutoff)},
		{SHA: "after", AuthorDate: timePtr(cutoff.Add(time.Second))},
		{SHA: "undated"},
	}

	filtered := FilterCommitsAfter(commits, cutoff)

	shas := make([]string, 0, len(filtered))
	for _, commit := range filtered {
		shas = append(shas, commit.SHA)
	}
	assert.Equal(t, []string{"after", "undated"}, shas)
}
