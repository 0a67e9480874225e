package analysis

import (
	"time"

	"github.com/contribhub/contrib-insights/internal/models"
)

// The merge functions below are pure: they never mutate their arguments and
// treat nil inputs as empty, so a first-ever run merges cleanly against an
// absent baseline.

// MergeCountMaps sums two count maps per key over the union of keys.
func MergeCountMaps(a, b map[string]int) map[string]int {
	merged := make(map[string]int, len(a)+len(b))
	for key, count := range a {
		merged[key] = count
	}
	for key, count := range b {
		merged[key] += count
	}
	return merged
}

// MergeLineChangeMaps sums additions and deletions independently per key.
func MergeLineChangeMaps(a, b map[string]models.LineChange) map[string]models.LineChange {
	merged := make(map[string]models.LineChange, len(a)+len(b))
	for key, change := range a {
		merged[key] = change
	}
	for key, change := range b {
		entry := merged[key]
		entry.Additions += change.Additions
		entry.Deletions += change.Deletions
		merged[key] = entry
	}
	return merged
}

func copyCountMap(m map[string]int) map[string]int {
	copied := make(map[string]int, len(m))
	for key, count := range m {
		copied[key] = count
	}
	return copied
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

func copyInt64Ptr(i *int64) *int64 {
	if i == nil {
		return nil
	}
	copied := *i
	return &copied
}

func copyContributorStat(stat *models.ContributorStat) *models.ContributorStat {
	return &models.ContributorStat{
		Key:             stat.Key,
		GithubUserID:    copyInt64Ptr(stat.GithubUserID),
		GithubLogin:     copyStringPtr(stat.GithubLogin),
		AuthorEmail:     copyStringPtr(stat.AuthorEmail),
		Commits:         stat.Commits,
		Additions:       stat.Additions,
		Deletions:       stat.Deletions,
		FirstCommitAt:   copyTimePtr(stat.FirstCommitAt),
		LastCommitAt:    copyTimePtr(stat.LastCommitAt),
		CommitsByDay:    copyCountMap(stat.CommitsByDay),
		CommitsByBranch: copyCountMap(stat.CommitsByBranch),
		MappedUserID:    copyStringPtr(stat.MappedUserID),
		IsMatched:       stat.IsMatched,
	}
}

func mergeContributorPair(prev, next *models.ContributorStat) *models.ContributorStat {
	merged := copyContributorStat(prev)
	merged.Commits += next.Commits
	merged.Additions += next.Additions
	merged.Deletions += next.Deletions
	merged.CommitsByDay = MergeCountMaps(prev.CommitsByDay, next.CommitsByDay)
	merged.CommitsByBranch = MergeCountMaps(prev.CommitsByBranch, next.CommitsByBranch)

	// Once matched, a contributor stays matched.
	merged.IsMatched = prev.IsMatched || next.IsMatched

	// Newest non-nil identity fields win.
	if next.MappedUserID != nil {
		merged.MappedUserID = copyStringPtr(next.MappedUserID)
	}
	if next.GithubLogin != nil {
		merged.GithubLogin = copyStringPtr(next.GithubLogin)
	}
	if next.GithubUserID != nil {
		merged.GithubUserID = copyInt64Ptr(next.GithubUserID)
	}
	if next.AuthorEmail != nil {
		merged.AuthorEmail = copyStringPtr(next.AuthorEmail)
	}

	if next.FirstCommitAt != nil && (merged.FirstCommitAt == nil || next.FirstCommitAt.Before(*merged.FirstCommitAt)) {
		merged.FirstCommitAt = copyTimePtr(next.FirstCommitAt)
	}
	if next.LastCommitAt != nil && (merged.LastCommitAt == nil || next.LastCommitAt.After(*merged.LastCommitAt)) {
		merged.LastCommitAt = copyTimePtr(next.LastCommitAt)
	}

	return merged
}

// MergeUserStats combines the previous cumulative contributor rows with the
// stats of a fresh run, keyed by contributor key. Rows only in prev are
// carried forward as deep copies; rows only in the new run are taken as-is.
func MergeUserStats(prev, next []*models.ContributorStat) []*models.ContributorStat {
	nextByKey := make(map[string]*models.ContributorStat, len(next))
	for _, stat := range next {
		nextByKey[stat.Key] = stat
	}

	merged := make([]*models.ContributorStat, 0, len(prev)+len(next))
	seen := make(map[string]bool, len(prev))

	for _, prevStat := range prev {
		seen[prevStat.Key] = true
		if nextStat, ok := nextByKey[prevStat.Key]; ok {
			merged = append(merged, mergeContributorPair(prevStat, nextStat))
		} else {
			merged = append(merged, copyContributorStat(prevStat))
		}
	}

	for _, nextStat := range next {
		if !seen[nextStat.Key] {
			merged = append(merged, nextStat)
		}
	}

	return merged
}

// MergeSampleCommits keeps at most max sample commits, newest-first and
// de-duplicated by SHA: the new run's commits are taken first, then previous
// samples fill the remaining slots.
func MergeSampleCommits(prev []models.SampleCommit, newCommits []*models.Commit, max int) []models.SampleCommit {
	if max <= 0 {
		max = 200
	}

	merged := make([]models.SampleCommit, 0, max)
	seen := make(map[string]bool, max)

	for _, commit := range newCommits {
		if len(merged) >= max {
			break
		}
		if commit.SHA == "" || seen[commit.SHA] {
			continue
		}
		sample := models.SampleCommit{
			SHA:   commit.SHA,
			Login: commit.AuthorLogin,
			Email: commit.AuthorEmail,
		}
		if commit.AuthorDate != nil {
			sample.Date = commit.AuthorDate.UTC().Format(time.RFC3339)
		}
		merged = append(merged, sample)
		seen[commit.SHA] = true
	}

	for _, sample := range prev {
		if len(merged) >= max {
			break
		}
		if sample.SHA == "" || seen[sample.SHA] {
			continue
		}
		merged = append(merged, sample)
		seen[sample.SHA] = true
	}

	return merged
}

// ComputeRepoStat recomputes repository-level totals by summing the merged
// contributor rows rather than adding old and new totals, so the totals stay
// consistent with the row list even when a key's matched status changed
// between runs.
func ComputeRepoStat(rows []*models.ContributorStat, commitsByDay, commitsByBranch map[string]int, defaultBranchCommits int) models.RepoStat {
	stat := models.RepoStat{
		DefaultBranchCommits: defaultBranchCommits,
		CommitsByDay:         copyCountMap(commitsByDay),
		CommitsByBranch:      copyCountMap(commitsByBranch),
	}

	for _, row := range rows {
		stat.TotalCommits += row.Commits
		stat.TotalAdditions += row.Additions
		stat.TotalDeletions += row.Deletions
		stat.TotalContributors++
		if row.IsMatched {
			stat.MatchedContributors++
		} else {
			stat.UnmatchedContributors++
			stat.UnmatchedCommits += row.Commits
		}
	}

	return stat
}
