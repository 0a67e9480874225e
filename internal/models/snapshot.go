package models

import "time"

// RepositoryDescriptor identifies the analysed repository inside a snapshot
// payload.
type RepositoryDescriptor struct {
	ID            int64  `json:"id"`
	FullName      string `json:"fullName"`
	HTMLURL       string `json:"htmlUrl"`
	OwnerLogin    string `json:"ownerLogin"`
	DefaultBranch string `json:"defaultBranch"`
}

// AnalysedWindow is the time window one analysis run covered, ISO-8601.
type AnalysedWindow struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

// LineChangeSeries is a day-keyed time series of line changes.
type LineChangeSeries struct {
	LineChangesByDay map[string]LineChange `json:"lineChangesByDay"`
}

// TimeSeries carries the line-change series for both branch scopes.
type TimeSeries struct {
	DefaultBranch LineChangeSeries `json:"defaultBranch"`
	AllBranches   LineChangeSeries `json:"allBranches"`
}

// CommitStatsCoverage records how many commits got detailed diff stats out of
// how many were requested. Commits past the detail cap are simply absent.
type CommitStatsCoverage struct {
	DetailedCommitCount  int `json:"detailedCommitCount"`
	RequestedCommitCount int `json:"requestedCommitCount"`
}

// DefaultBranchScope holds the cumulative totals for the default branch only.
type DefaultBranchScope struct {
	Branch         string `json:"branch"`
	TotalCommits   int    `json:"totalCommits"`
	TotalAdditions int    `json:"totalAdditions"`
	TotalDeletions int    `json:"totalDeletions"`
}

// AllBranchesScope holds the cumulative totals across every branch.
type AllBranchesScope struct {
	BranchCount         int                 `json:"branchCount"`
	TotalCommits        int                 `json:"totalCommits"`
	TotalAdditions      int                 `json:"totalAdditions"`
	TotalDeletions      int                 `json:"totalDeletions"`
	CommitsByBranch     map[string]int      `json:"commitsByBranch"`
	CommitStatsCoverage CommitStatsCoverage `json:"commitStatsCoverage"`
}

// BranchScopeStats tracks the two branch scopes side by side.
type BranchScopeStats struct {
	DefaultBranch DefaultBranchScope `json:"defaultBranch"`
	AllBranches   AllBranchesScope   `json:"allBranches"`
}

// SampleCommit is a compact commit reference kept inside the snapshot payload.
type SampleCommit struct {
	SHA   string `json:"sha"`
	Date  string `json:"date"`
	Login string `json:"login"`
	Email string `json:"email"`
}

// SnapshotPayload is the detailed JSON document persisted with each snapshot.
// Its shape must survive a marshal/unmarshal round trip unchanged.
type SnapshotPayload struct {
	Repository          RepositoryDescriptor `json:"repository"`
	AnalysedWindow      AnalysedWindow       `json:"analysedWindow"`
	TimeSeries          TimeSeries           `json:"timeSeries"`
	CommitCount         int                  `json:"commitCount"`
	CommitStatsCoverage CommitStatsCoverage  `json:"commitStatsCoverage"`
	BranchScopeStats    BranchScopeStats     `json:"branchScopeStats"`
	SampleCommits       []SampleCommit       `json:"sampleCommits"`
}

// Snapshot is the immutable, append-only record of one analysis run. A new
// snapshot is inserted per run; existing snapshots are never updated. The most
// recent snapshot of a link is the baseline for the next run when usable.
type Snapshot struct {
	ID           int64              `json:"id"`
	LinkID       int64              `json:"link_id"`
	RequestedBy  string             `json:"requested_by"`
	AnalysedAt   time.Time          `json:"analysed_at"`
	Since        time.Time          `json:"since"`
	Until        time.Time          `json:"until"`
	Payload      SnapshotPayload    `json:"payload"`
	Contributors []*ContributorStat `json:"contributors"`
	RepoStat     RepoStat           `json:"repo_stat"`
	CreatedAt    time.Time          `json:"created_at"`
}
