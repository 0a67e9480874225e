package models

import "time"

// UnmatchedContributorKey is the grouping key for commits that carry neither
// an author login nor an author email.
const UnmatchedContributorKey = "unmatched"

// ContributorStat holds the aggregated statistics of one contributor, keyed
// by contributor key (login:<login>, email:<email> or the unmatched sentinel).
type ContributorStat struct {
	Key             string         `json:"key"`
	GithubUserID    *int64         `json:"github_user_id,omitempty"`
	GithubLogin     *string        `json:"github_login,omitempty"`
	AuthorEmail     *string        `json:"author_email,omitempty"`
	Commits         int            `json:"commits"`
	Additions       int            `json:"additions"`
	Deletions       int            `json:"deletions"`
	FirstCommitAt   *time.Time     `json:"first_commit_at,omitempty"`
	LastCommitAt    *time.Time     `json:"last_commit_at,omitempty"`
	CommitsByDay    map[string]int `json:"commits_by_day"`
	CommitsByBranch map[string]int `json:"commits_by_branch"`
	MappedUserID    *string        `json:"mapped_user_id,omitempty"`
	IsMatched       bool           `json:"is_matched"`
}

// RepoStat holds the cumulative repository-level statistics of one snapshot.
//
// Invariants: TotalContributors = MatchedContributors + UnmatchedContributors
// and TotalCommits equals the sum of Commits over all contributor rows.
type RepoStat struct {
	TotalCommits          int            `json:"total_commits"`
	TotalAdditions        int            `json:"total_additions"`
	TotalDeletions        int            `json:"total_deletions"`
	TotalContributors     int            `json:"total_contributors"`
	MatchedContributors   int            `json:"matched_contributors"`
	UnmatchedContributors int            `json:"unmatched_contributors"`
	UnmatchedCommits      int            `json:"unmatched_commits"`
	DefaultBranchCommits  int            `json:"default_branch_commits"`
	CommitsByDay          map[string]int `json:"commits_by_day"`
	CommitsByBranch       map[string]int `json:"commits_by_branch"`
}
