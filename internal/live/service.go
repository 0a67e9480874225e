package live

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/contribhub/contrib-insights/internal/analysis"
	"github.com/contribhub/contrib-insights/internal/config"
	apperrors "github.com/contribhub/contrib-insights/internal/errors"
	"github.com/contribhub/contrib-insights/internal/models"
)

// Fetcher is the slice of the GitHub client the live queries consume.
type Fetcher interface {
	ListBranchesDetailed(ctx context.Context) ([]models.Branch, error)
	CompareBranches(ctx context.Context, base, branch string) models.BranchComparison
	FetchRecentCommits(ctx context.Context, branch string, limit int) ([]*models.Commit, error)
	FetchCommitStats(ctx context.Context, shas []string, maxDetailed int) map[string]models.CommitStats
	FetchUserCommitsPage(ctx context.Context, author string, page, perPage int) ([]*models.Commit, error)
	FetchAllUserCommits(ctx context.Context, author string) ([]*models.Commit, error)
}

// Store is the persistence contract the live queries consume.
type Store interface {
	FindLinkByID(ctx context.Context, id int64) (*models.RepositoryLink, error)
	IsUserInProject(ctx context.Context, userID string, projectID int64) (bool, error)
	FindAccountByUser(ctx context.Context, userID string) (*models.GithubAccount, error)
}

// TokenProvider resolves a usable access token for a linked account.
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context, account *models.GithubAccount) (string, error)
}

// ClientFactory builds a fetcher for one token and repository.
type ClientFactory func(token, fullName string) Fetcher

// RecentCommit is a commit decorated with its diff stats and browse URL.
type RecentCommit struct {
	*models.Commit
	Stats *models.CommitStats `json:"stats,omitempty"`
}

// MyCommitTotals is the all-history aggregate of the caller's own commits,
// split by merge-PR classification.
type MyCommitTotals struct {
	TotalCommits            int     `json:"total_commits"`
	MergePullRequestCommits int     `json:"merge_pull_request_commits"`
	Additions               int     `json:"additions"`
	Deletions               int     `json:"deletions"`
	AdditionsExcludingMerge int     `json:"additions_excluding_merge_pr"`
	DeletionsExcludingMerge int     `json:"deletions_excluding_merge_pr"`
	DetailedCommitCount     int     `json:"detailed_commit_count"`
	StatsCoverage           float64 `json:"stats_coverage"`
}

// MyCommitsResult is one page of the caller's commits, with totals when
// explicitly requested.
type MyCommitsResult struct {
	Login   string           `json:"login"`
	Page    int              `json:"page"`
	Commits []*models.Commit `json:"commits"`
	Totals  *MyCommitTotals  `json:"totals,omitempty"`
}

// Service serves the on-demand, non-persisted repository queries. Each call
// re-validates membership, account and token the same way the analysis
// pipeline does, then talks to the GitHub client directly with no merge step.
type Service struct {
	store     Store
	tokens    TokenProvider
	newClient ClientFactory
	logger    *logrus.Logger
	cfg       *config.AnalysisConfig
	github    *config.GitHubConfig
}

// NewService creates a new live query service
func NewService(store Store, tokens TokenProvider, newClient ClientFactory, logger *logrus.Logger, cfg *config.AnalysisConfig, github *config.GitHubConfig) *Service {
	return &Service{
		store:     store,
		tokens:    tokens,
		newClient: newClient,
		logger:    logger,
		cfg:       cfg,
		github:    github,
	}
}

func (s *Service) resolveAccess(ctx context.Context, linkID int64, userID string) (*models.RepositoryLink, *models.GithubAccount, Fetcher, error) {
	link, err := s.store.FindLinkByID(ctx, linkID)
	if err != nil {
		return nil, nil, nil, err
	}
	if link == nil {
		return nil, nil, nil, apperrors.NewNotFoundError("repository link not found", nil)
	}

	member, err := s.store.IsUserInProject(ctx, userID, link.ProjectID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !member {
		return nil, nil, nil, apperrors.NewForbiddenError("user is not a member of the project", nil)
	}

	account, err := s.store.FindAccountByUser(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if account == nil {
		return nil, nil, nil, apperrors.NewUnauthorizedError("no linked github account", nil)
	}

	token, err := s.tokens.GetValidAccessToken(ctx, account)
	if err != nil {
		return nil, nil, nil, err
	}

	return link, account, s.newClient(token, link.FullName), nil
}

// ListBranches lists the repository's branches with ahead/behind comparison
// against the default branch, default branch first, the rest alphabetical.
func (s *Service) ListBranches(ctx context.Context, linkID int64, userID string) ([]models.BranchWithCompare, error) {
	link, _, client, err := s.resolveAccess(ctx, linkID, userID)
	if err != nil {
		return nil, err
	}

	branches, err := client.ListBranchesDetailed(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.BranchWithCompare, len(branches))

	// All compares fire at once; the compare helper never fails, it degrades
	// to nil fields instead.
	var wg sync.WaitGroup
	for i, branch := range branches {
		wg.Add(1)
		go func(i int, branch models.Branch) {
			defer wg.Done()
			result[i] = models.BranchWithCompare{
				Branch:    branch,
				IsDefault: branch.Name == link.DefaultBranch,
				Compare:   client.CompareBranches(ctx, link.DefaultBranch, branch.Name),
			}
		}(i, branch)
	}
	wg.Wait()

	sort.Slice(result, func(i, j int) bool {
		if result[i].IsDefault != result[j].IsDefault {
			return result[i].IsDefault
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// ListRecentCommits returns the newest commits on one branch together with
// their diff stats and browse URLs.
func (s *Service) ListRecentCommits(ctx context.Context, linkID int64, userID string, branch string) ([]RecentCommit, error) {
	link, _, client, err := s.resolveAccess(ctx, linkID, userID)
	if err != nil {
		return nil, err
	}
	if branch == "" {
		branch = link.DefaultBranch
	}

	commits, err := client.FetchRecentCommits(ctx, branch, s.cfg.RecentCommitLimit)
	if err != nil {
		return nil, err
	}

	stats := client.FetchCommitStats(ctx, commitSHAs(commits), s.github.MaxDetailedCommits)

	result := make([]RecentCommit, 0, len(commits))
	for _, commit := range commits {
		decorated := RecentCommit{Commit: commit}
		if commit.CommitURL == "" {
			commit.CommitURL = fmt.Sprintf("https://github.com/%s/commit/%s", link.FullName, commit.SHA)
		}
		if entry, ok := stats[commit.SHA]; ok {
			statCopy := entry
			decorated.Stats = &statCopy
		}
		result = append(result, decorated)
	}

	return result, nil
}

// MyCommits returns one page of the caller's own commits. When includeTotals
// is set it additionally walks the caller's entire commit history and
// aggregates totals split by merge-PR classification; that is expensive and
// only runs on explicit request.
func (s *Service) MyCommits(ctx context.Context, linkID int64, userID string, page int, includeTotals bool) (*MyCommitsResult, error) {
	link, account, client, err := s.resolveAccess(ctx, linkID, userID)
	if err != nil {
		return nil, err
	}
	if account.GithubLogin == "" {
		return nil, apperrors.NewUnauthorizedError("linked github account has no login", nil)
	}
	if page < 1 {
		page = 1
	}

	commits, err := client.FetchUserCommitsPage(ctx, account.GithubLogin, page, s.cfg.MyCommitsPageSize)
	if err != nil {
		return nil, err
	}

	result := &MyCommitsResult{
		Login:   account.GithubLogin,
		Page:    page,
		Commits: commits,
	}

	if includeTotals {
		totals, err := s.computeMyTotals(ctx, client, account.GithubLogin, link.FullName)
		if err != nil {
			return nil, err
		}
		result.Totals = totals
	}

	return result, nil
}

func (s *Service) computeMyTotals(ctx context.Context, client Fetcher, login, fullName string) (*MyCommitTotals, error) {
	history, err := client.FetchAllUserCommits(ctx, login)
	if err != nil {
		return nil, err
	}

	stats := client.FetchCommitStats(ctx, commitSHAs(history), s.github.MaxDetailedCommits)

	totals := &MyCommitTotals{
		TotalCommits:        len(history),
		DetailedCommitCount: len(stats),
	}
	for _, commit := range history {
		isMerge := analysis.IsMergePullRequestCommit(commit)
		if isMerge {
			totals.MergePullRequestCommits++
		}
		entry, ok := stats[commit.SHA]
		if !ok {
			continue
		}
		totals.Additions += entry.Additions
		totals.Deletions += entry.Deletions
		if !isMerge {
			totals.AdditionsExcludingMerge += entry.Additions
			totals.DeletionsExcludingMerge += entry.Deletions
		}
	}
	if totals.TotalCommits > 0 {
		totals.StatsCoverage = float64(totals.DetailedCommitCount) / float64(totals.TotalCommits)
	}

	s.logger.WithFields(logrus.Fields{
		"repository": fullName,
		"login":      login,
		"commits":    totals.TotalCommits,
		"detailed":   totals.DetailedCommitCount,
	}).Debug("Computed all-history commit totals")

	return totals, nil
}

func commitSHAs(commits []*models.Commit) []string {
	shas := make([]string, 0, len(commits))
	for _, commit := range commits {
		shas = append(shas, commit.SHA)
	}
	return shas
}
