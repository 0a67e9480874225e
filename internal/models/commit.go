package models

import "time"

// Commit is a single commit as returned by the GitHub API. Commits are
// read-only upstream data and are never mutated locally.
type Commit struct {
	SHA         string     `json:"sha"`
	Message     string     `json:"message"`
	AuthorID    int64      `json:"author_id,omitempty"`
	AuthorLogin string     `json:"author_login,omitempty"`
	AuthorEmail string     `json:"author_email,omitempty"`
	AuthorDate  *time.Time `json:"author_date,omitempty"`
	Parents     []string   `json:"parents,omitempty"`
	CommitURL   string     `json:"html_url,omitempty"`
}

// CommitStats holds the line-change numbers of a single commit.
type CommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// LineChange is a per-day pair of added/deleted line totals.
type LineChange struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}
