package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/contribhub/contrib-insights/internal/config"
	apperrors "github.com/contribhub/contrib-insights/internal/errors"
	"github.com/contribhub/contrib-insights/internal/models"
)

// RepoFetcher is the slice of the GitHub client the orchestrator consumes.
type RepoFetcher interface {
	FetchCommits(ctx context.Context, branch string, since time.Time) ([]*models.Commit, error)
	ListBranchNames(ctx context.Context) []string
	FetchCommitStats(ctx context.Context, shas []string, maxDetailed int) map[string]models.CommitStats
}

// Store is the persistence contract the orchestrator consumes.
type Store interface {
	FindLinkByID(ctx context.Context, id int64) (*models.RepositoryLink, error)
	IsUserInProject(ctx context.Context, userID string, projectID int64) (bool, error)
	FindAccountByUser(ctx context.Context, userID string) (*models.GithubAccount, error)
	ListIdentityCandidates(ctx context.Context, projectID int64) ([]models.IdentityCandidate, error)
	FindLatestSnapshot(ctx context.Context, linkID int64) (*models.Snapshot, error)
	CreateSnapshot(ctx context.Context, snapshot *models.Snapshot) (*models.Snapshot, error)
}

// TokenProvider resolves a usable access token for a linked account,
// refreshing when near expiry.
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context, account *models.GithubAccount) (string, error)
}

// ClientFactory builds a repository fetcher for one token and repository.
type ClientFactory func(token, fullName string) RepoFetcher

// Service drives one "analyse repository" run end to end: window resolution,
// fetching, aggregation, identity matching, incremental merge and the single
// snapshot insert. A run either completes and persists one new snapshot or
// fails and persists nothing.
type Service struct {
	store     Store
	tokens    TokenProvider
	newClient ClientFactory
	logger    *logrus.Logger
	cfg       *config.AnalysisConfig
	github    *config.GitHubConfig
	now       func() time.Time
}

// NewService creates a new analysis service
func NewService(store Store, tokens TokenProvider, newClient ClientFactory, logger *logrus.Logger, cfg *config.AnalysisConfig, github *config.GitHubConfig) *Service {
	return &Service{
		store:     store,
		tokens:    tokens,
		newClient: newClient,
		logger:    logger,
		cfg:       cfg,
		github:    github,
		now:       time.Now,
	}
}

// AnalyseRepository runs one full analysis for a repository link on behalf of
// a project member and returns the newly persisted snapshot.
func (s *Service) AnalyseRepository(ctx context.Context, linkID int64, userID string) (*models.Snapshot, error) {
	link, client, err := s.resolveAccess(ctx, linkID, userID)
	if err != nil {
		return nil, err
	}

	logger := s.logger.WithFields(logrus.Fields{
		"link_id":    linkID,
		"repository": link.FullName,
		"user_id":    userID,
	})

	prev, err := s.store.FindLatestSnapshot(ctx, linkID)
	if err != nil {
		return nil, err
	}

	until := s.now()
	baseline, since := s.resolveBaseline(prev, until, logger)

	defaultCommits, err := client.FetchCommits(ctx, link.DefaultBranch, since)
	if err != nil {
		return nil, err
	}
	if baseline != nil {
		defaultCommits = FilterCommitsAfter(defaultCommits, baseline.AnalysedAt)
	}

	branches := client.ListBranchNames(ctx)
	if len(branches) == 0 {
		branches = []string{link.DefaultBranch}
	}

	allCommits, commitsByBranch, err := s.collectAllBranchCommits(ctx, client, branches, link.DefaultBranch, defaultCommits, since, baseline)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"since":                  since,
		"default_branch_commits": len(defaultCommits),
		"all_branch_commits":     len(allCommits),
		"branches":               len(branches),
	}).Info("Fetched commit window")

	defaultStats := client.FetchCommitStats(ctx, commitSHAs(defaultCommits), s.github.MaxDetailedCommits)
	allStats := client.FetchCommitStats(ctx, commitSHAs(allCommits), s.github.MaxDetailedCommits)

	aggregated := Aggregate(defaultCommits, link.DefaultBranch)

	candidates, err := s.store.ListIdentityCandidates(ctx, link.ProjectID)
	if err != nil {
		return nil, err
	}
	MatchContributors(aggregated.Contributors, candidates)
	JoinCommitStats(aggregated.Contributors, defaultCommits, defaultStats)

	snapshot := s.mergeWithBaseline(link, userID, baseline, aggregated, mergeInputs{
		since:          since,
		until:          until,
		branches:       branches,
		defaultCommits: defaultCommits,
		allCommits:     allCommits,
		byBranch:       commitsByBranch,
		defaultStats:   defaultStats,
		allStats:       allStats,
	})

	created, err := s.store.CreateSnapshot(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"snapshot_id":   created.ID,
		"total_commits": created.RepoStat.TotalCommits,
		"contributors":  len(created.Contributors),
	}).Info("Analysis completed")

	return created, nil
}

// resolveAccess performs the link/membership/token checks every operation
// starts with and returns a client bound to the link's repository.
func (s *Service) resolveAccess(ctx context.Context, linkID int64, userID string) (*models.RepositoryLink, RepoFetcher, error) {
	link, err := s.store.FindLinkByID(ctx, linkID)
	if err != nil {
		return nil, nil, err
	}
	if link == nil {
		return nil, nil, apperrors.NewNotFoundError("repository link not found", nil)
	}

	member, err := s.store.IsUserInProject(ctx, userID, link.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if !member {
		return nil, nil, apperrors.NewForbiddenError("user is not a member of the project", nil)
	}

	account, err := s.store.FindAccountByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, apperrors.NewUnauthorizedError("no linked github account", nil)
	}

	token, err := s.tokens.GetValidAccessToken(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	return link, s.newClient(token, link.FullName), nil
}

func (s *Service) resolveBaseline(prev *models.Snapshot, now time.Time, logger *logrus.Entry) (*models.Snapshot, time.Time) {
	baseline, since := ResolveWindow(prev, now, s.cfg.FallbackLookbackDays)
	if prev != nil && baseline == nil {
		logger.WithField("snapshot_id", prev.ID).
			Warn("Previous snapshot unusable as baseline, falling back to full lookback window")
	}
	return baseline, since
}

// collectAllBranchCommits fetches every branch's commit window and folds it
// into a SHA-deduplicated set (first occurrence wins) plus a per-branch
// count. The per-branch counts are computed here because the aggregator books
// everything under the default branch.
func (s *Service) collectAllBranchCommits(ctx context.Context, client RepoFetcher, branches []string, defaultBranch string, defaultCommits []*models.Commit, since time.Time, baseline *models.Snapshot) ([]*models.Commit, map[string]int, error) {
	var all []*models.Commit
	seen := make(map[string]bool)
	byBranch := make(map[string]int, len(branches))

	for _, branch := range branches {
		var commits []*models.Commit
		if branch == defaultBranch {
			commits = defaultCommits
		} else {
			fetched, err := client.FetchCommits(ctx, branch, since)
			if err != nil {
				return nil, nil, err
			}
			if baseline != nil {
				fetched = FilterCommitsAfter(fetched, baseline.AnalysedAt)
			}
			commits = fetched
		}

		byBranch[branch] = len(commits)
		for _, commit := range commits {
			if seen[commit.SHA] {
				continue
			}
			seen[commit.SHA] = true
			all = append(all, commit)
		}
	}

	return all, byBranch, nil
}

func commitSHAs(commits []*models.Commit) []string {
	shas := make([]string, 0, len(commits))
	for _, commit := range commits {
		shas = append(shas, commit.SHA)
	}
	return shas
}

func sortedContributors(contributors map[string]*models.ContributorStat) []*models.ContributorStat {
	rows := make([]*models.ContributorStat, 0, len(contributors))
	for _, stat := range contributors {
		rows = append(rows, stat)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Commits != rows[j].Commits {
			return rows[i].Commits > rows[j].Commits
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}
