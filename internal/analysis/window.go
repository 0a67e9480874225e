package analysis

import (
	"time"

	"github.com/contribhub/contrib-insights/internal/models"
)

// HasUsableRepoCommitsByDay reports whether a previous snapshot can serve as
// the baseline for an incremental run. A baseline is usable iff its repo stat
// has zero commits or a non-empty day histogram: snapshots written by an old
// bug carry commits with an empty histogram, and folding onto them would
// corrupt the cumulative day counts, so those force a full re-scan instead.
func HasUsableRepoCommitsByDay(prev *models.Snapshot) bool {
	if prev == nil {
		return false
	}
	return prev.RepoStat.TotalCommits == 0 || len(prev.RepoStat.CommitsByDay) > 0
}

// ResolveWindow picks the analysis baseline and the window start. With a
// usable baseline the window opens at its analysis time; otherwise the
// baseline is discarded and the window falls back to a fixed lookback.
func ResolveWindow(prev *models.Snapshot, now time.Time, fallbackLookbackDays int) (*models.Snapshot, time.Time) {
	if HasUsableRepoCommitsByDay(prev) {
		return prev, prev.AnalysedAt
	}
	return nil, now.AddDate(0, 0, -fallbackLookbackDays)
}

// FilterCommitsAfter drops commits at or before the cutoff, guarding against
// duplicate inclusion at the window boundary. Commits without a parseable
// date pass through; the aggregator skips them anyway.
func FilterCommitsAfter(commits []*models.Commit, cutoff time.Time) []*models.Commit {
	filtered := make([]*models.Commit, 0, len(commits))
	for _, commit := range commits {
		if commit.AuthorDate != nil && !commit.AuthorDate.After(cutoff) {
			continue
		}
		filtered = append(filtered, commit)
	}
	return filtered
}
