package models

import "time"

// RepositoryLink binds one GitHub repository to one project.
type RepositoryLink struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"project_id"`
	GithubRepoID  int64     `json:"github_repo_id"`
	FullName      string    `json:"full_name"`
	HTMLURL       string    `json:"html_url"`
	OwnerLogin    string    `json:"owner_login"`
	DefaultBranch string    `json:"default_branch"`
	SyncInterval  int       `json:"sync_interval_minutes"`
	CreatedAt     time.Time `json:"created_at"`
}

// GithubAccount is a platform user's linked GitHub account with OAuth tokens.
type GithubAccount struct {
	UserID           string     `json:"user_id"`
	GithubLogin      string     `json:"github_login"`
	AccessToken      string     `json:"-"`
	RefreshToken     string     `json:"-"`
	TokenExpiresAt   *time.Time `json:"token_expires_at,omitempty"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
}

// IdentityCandidate is one project member's known GitHub identity, used when
// matching contributors to platform users.
type IdentityCandidate struct {
	UserID      string `json:"user_id"`
	GithubLogin string `json:"github_login,omitempty"`
	GithubEmail string `json:"github_email,omitempty"`
}
