package analysis

import (
	"strings"
	"time"

	"github.com/contribhub/contrib-insights/internal/models"
)

const mergePullRequestPrefix = "merge pull request"

// ContributorKeyFromCommit derives the grouping key for a commit's author.
// Login takes priority over email, so two commits sharing an email but
// carrying different logins land in different buckets.
func ContributorKeyFromCommit(commit *models.Commit) string {
	if commit.AuthorLogin != "" {
		return "login:" + strings.ToLower(commit.AuthorLogin)
	}
	if commit.AuthorEmail != "" {
		return "email:" + strings.ToLower(commit.AuthorEmail)
	}
	return models.UnmatchedContributorKey
}

// IsMergePullRequestCommit reports whether the commit message starts with
// "merge pull request", case-insensitive.
func IsMergePullRequestCommit(commit *models.Commit) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(commit.Message)), mergePullRequestPrefix)
}

// DayKey formats a timestamp as its UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// AggregateResult is the outcome of one aggregation pass over a commit list.
type AggregateResult struct {
	Contributors        map[string]*models.ContributorStat
	RepoCommitsByDay    map[string]int
	RepoCommitsByBranch map[string]int
}

// Aggregate folds a commit list into per-contributor and repository-wide
// counters. Commits without a parseable author date are skipped entirely.
//
// Note: branch counts are always booked under defaultBranchName, no matter
// which branch the commit list was fetched from. The original engine behaves
// this way and callers that need true per-branch counts compute them
// separately, so the behaviour is kept on purpose.
func Aggregate(commits []*models.Commit, defaultBranchName string) *AggregateResult {
	result := &AggregateResult{
		Contributors:        make(map[string]*models.ContributorStat),
		RepoCommitsByDay:    make(map[string]int),
		RepoCommitsByBranch: make(map[string]int),
	}

	for _, commit := range commits {
		if commit.AuthorDate == nil {
			continue
		}

		key := ContributorKeyFromCommit(commit)
		day := DayKey(*commit.AuthorDate)

		stat, ok := result.Contributors[key]
		if !ok {
			stat = &models.ContributorStat{
				Key:             key,
				CommitsByDay:    make(map[string]int),
				CommitsByBranch: make(map[string]int),
			}
			if commit.AuthorLogin != "" {
				login := commit.AuthorLogin
				stat.GithubLogin = &login
				if commit.AuthorID != 0 {
					id := commit.AuthorID
					stat.GithubUserID = &id
				}
			}
			if commit.AuthorEmail != "" {
				email := commit.AuthorEmail
				stat.AuthorEmail = &email
			}
			result.Contributors[key] = stat
		}

		stat.Commits++
		stat.CommitsByDay[day]++
		stat.CommitsByBranch[defaultBranchName]++

		date := *commit.AuthorDate
		if stat.FirstCommitAt == nil || date.Before(*stat.FirstCommitAt) {
			first := date
			stat.FirstCommitAt = &first
		}
		if stat.LastCommitAt == nil || date.After(*stat.LastCommitAt) {
			last := date
			stat.LastCommitAt = &last
		}

		result.RepoCommitsByDay[day]++
		result.RepoCommitsByBranch[defaultBranchName]++
	}

	return result
}

// JoinCommitStats attaches line-change stats onto the aggregated contributor
// rows by mapping each commit SHA to its contributor key. Stats are fetched
// in a second round trip, so commits missing from the map count as zero.
func JoinCommitStats(contributors map[string]*models.ContributorStat, commits []*models.Commit, stats map[string]models.CommitStats) {
	for _, commit := range commits {
		commitStats, ok := stats[commit.SHA]
		if !ok {
			continue
		}
		stat, ok := contributors[ContributorKeyFromCommit(commit)]
		if !ok {
			continue
		}
		stat.Additions += commitStats.Additions
		stat.Deletions += commitStats.Deletions
	}
}

// LineChangesByDay folds per-commit stats into a day-keyed line-change
// series. Commits without a date or without fetched stats contribute nothing.
func LineChangesByDay(commits []*models.Commit, stats map[string]models.CommitStats) map[string]models.LineChange {
	series := make(map[string]models.LineChange)
	for _, commit := range commits {
		if commit.AuthorDate == nil {
			continue
		}
		commitStats, ok := stats[commit.SHA]
		if !ok {
			continue
		}
		day := DayKey(*commit.AuthorDate)
		entry := series[day]
		entry.Additions += commitStats.Additions
		entry.Deletions += commitStats.Deletions
		series[day] = entry
	}
	return series
}
