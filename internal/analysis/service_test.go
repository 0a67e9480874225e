package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contribhub/contrib-insights/internal/config"
	apperrors "github.com/contribhub/contrib-insights/internal/errors"
	"github.com/contribhub/contrib-insights/internal/models"
)

type fakeStore struct {
	link       *models.RepositoryLink
	member     bool
	account    *models.GithubAccount
	candidates []models.IdentityCandidate
	latest     *models.Snapshot
	created    []*models.Snapshot
}

func (f *fakeStore) FindLinkByID(ctx context.Context, id int64) (*models.RepositoryLink, error) {
	return f.link, nil
}

func (f *fakeStore) IsUserInProject(ctx context.Context, userID string, projectID int64) (bool, error) {
	return f.member, nil
}

func (f *fakeStore) FindAccountByUser(ctx context.Context, userID string) (*models.GithubAccount, error) {
	return f.account, nil
}

func (f *fakeStore) ListIdentityCandidates(ctx context.Context, projectID int64) ([]models.IdentityCandidate, error) {
	return f.candidates, nil
}

func (f *fakeStore) FindLatestSnapshot(ctx context.Context, linkID int64) (*models.Snapshot, error) {
	return f.latest, nil
}

func (f *fakeStore) CreateSnapshot(ctx context.Context, snapshot *models.Snapshot) (*models.Snapshot, error) {
	created := *snapshot
	created.ID = int64(len(f.created) + 1)
	f.created = append(f.created, &created)
	return &created, nil
}

type fakeFetcher struct {
	commits   map[string][]*models.Commit
	branches  []string
	stats     map[string]models.CommitStats
	fetchErr  error
	lastSince time.Time
}

func (f *fakeFetcher) FetchCommits(ctx context.Context, branch string, since time.Time) ([]*models.Commit, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.lastSince = since
	return f.commits[branch], nil
}

func (f *fakeFetcher) ListBranchNames(ctx context.Context) []string {
	return f.branches
}

func (f *fakeFetcher) FetchCommitStats(ctx context.Context, shas []string, maxDetailed int) map[string]models.CommitStats {
	result := make(map[string]models.CommitStats)
	for i, sha := range shas {
		if i >= maxDetailed {
			break
		}
		if stats, ok := f.stats[sha]; ok {
			result[sha] = stats
		}
	}
	return result
}

type fakeTokens struct{}

func (fakeTokens) GetValidAccessToken(ctx context.Context, account *models.GithubAccount) (string, error) {
	return "test-token", nil
}

func testLink() *models.RepositoryLink {
	return &models.RepositoryLink{
		ID:            1,
		ProjectID:     10,
		GithubRepoID:  555,
		FullName:      "acme/rocket",
		HTMLURL:       "https://github.com/acme/rocket",
		OwnerLogin:    "acme",
		DefaultBranch: "main",
	}
}

func newTestService(store *fakeStore, fetcher *fakeFetcher, now time.Time) *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc := NewService(store, fakeTokens{}, func(token, fullName string) RepoFetcher {
		return fetcher
	}, logger, config.DefaultAnalysisConfig(), config.DefaultGitHubConfig())
	svc.now = func() time.Time { return now }
	return svc
}

func commitAt(sha, login string, at time.Time) *models.Commit {
	return &models.Commit{SHA: sha, AuthorLogin: login, AuthorDate: &at}
}

func TestAnalyseRepositoryAccessChecks(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("missing link", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, &fakeFetcher{}, now)

		_, err := svc.AnalyseRepository(ctx, 1, "user-1")
		assert.True(t, apperrors.IsNotFound(err))
		assert.Empty(t, store.created)
	})

	t.Run("not a project member", func(t *testing.T) {
		store := &fakeStore{link: testLink()}
		svc := newTestService(store, &fakeFetcher{}, now)

		_, err := svc.AnalyseRepository(ctx, 1, "user-1")
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("no linked account", func(t *testing.T) {
		store := &fakeStore{link: testLink(), member: true}
		svc := newTestService(store, &fakeFetcher{}, now)

		_, err := svc.AnalyseRepository(ctx, 1, "user-1")
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("fetch failure persists nothing", func(t *testing.T) {
		store := &fakeStore{
			link:    testLink(),
			member:  true,
			account: &models.GithubAccount{UserID: "user-1", GithubLogin: "alice"},
		}
		fetcher := &fakeFetcher{fetchErr: apperrors.NewUpstreamError("boom", nil)}
		svc := newTestService(store, fetcher, now)

		_, err := svc.AnalyseRepository(ctx, 1, "user-1")
		assert.True(t, apperrors.IsUpstream(err))
		assert.Empty(t, store.created)
	})
}

func TestAnalyseRepositoryTwoConsecutiveRuns(t *testing.T) {
	ctx := context.Background()
	run1Now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store := &fakeStore{
		link:    testLink(),
		member:  true,
		account: &models.GithubAccount{UserID: "user-1", GithubLogin: "alice"},
		candidates: []models.IdentityCandidate{
			{UserID: "user-1", GithubLogin: "alice"},
		},
	}

	run1Commits := []*models.Commit{
		commitAt("r1-1", "alice", run1Now.Add(-72*time.Hour)),
		commitAt("r1-2", "alice", run1Now.Add(-48*time.Hour)),
		commitAt("r1-3", "alice", run1Now.Add(-24*time.Hour)),
		commitAt("r1-4", "bob", run1Now.Add(-12*time.Hour)),
		commitAt("r1-5", "bob", run1Now.Add(-6*time.Hour)),
	}
	fetcher := &fakeFetcher{
		commits:  map[string][]*models.Commit{"main": run1Commits},
		branches: []string{"main"},
		stats: map[string]models.CommitStats{
			"r1-1": {Additions: 10, Deletions: 1},
			"r1-4": {Additions: 5, Deletions: 2},
		},
	}

	svc := newTestService(store, fetcher, run1Now)

	first, err := svc.AnalyseRepository(ctx, 1, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 5, first.RepoStat.TotalCommits)
	assert.Equal(t, 2, first.RepoStat.TotalContributors)
	assert.Equal(t, 1, first.RepoStat.MatchedContributors)
	assert.Equal(t, 2, first.RepoStat.UnmatchedCommits)
	assert.Equal(t, 15, first.RepoStat.TotalAdditions)
	// No baseline: the window falls back to the fixed lookback.
	assert.True(t, fetcher.lastSince.Equal(run1Now.AddDate(0, 0, -90)))

	// Second run three weeks later with three new commits, none overlapping.
	run2Now := run1Now.Add(21 * 24 * time.Hour)
	store.latest = first
	fetcher.commits = map[string][]*models.Commit{"main": {
		commitAt("r2-1", "alice", run1Now.Add(24*time.Hour)),
		commitAt("r2-2", "carol", run1Now.Add(48*time.Hour)),
		commitAt("r2-3", "carol", run1Now.Add(72*time.Hour)),
	}}
	svc.now = func() time.Time { return run2Now }

	second, err := svc.AnalyseRepository(ctx, 1, "user-1")
	require.NoError(t, err)

	// Incremental window opens at the baseline's analysis time.
	assert.True(t, fetcher.lastSince.Equal(first.AnalysedAt))

	assert.Equal(t, 8, second.RepoStat.TotalCommits)
	assert.Len(t, second.Contributors, 3)
	assert.Equal(t, 3, second.RepoStat.TotalContributors)

	byKey := make(map[string]*models.ContributorStat)
	for _, row := range second.Contributors {
		byKey[row.Key] = row
	}
	assert.Equal(t, 4, byKey["login:alice"].Commits)
	assert.Equal(t, 2, byKey["login:bob"].Commits)
	assert.Equal(t, 2, byKey["login:carol"].Commits)
	assert.True(t, byKey["login:alice"].IsMatched)

	// Payload accumulates across runs.
	assert.Equal(t, 8, second.Payload.BranchScopeStats.AllBranches.TotalCommits)
	assert.Equal(t, 8, second.Payload.CommitCount)
	assert.Len(t, second.Payload.SampleCommits, 8)
	assert.Equal(t, "r2-1", second.Payload.SampleCommits[0].SHA)

	// Snapshots are append-only: both runs inserted a new one.
	assert.Len(t, store.created, 2)
}

func TestAnalyseRepositoryDiscardsDegenerateBaseline(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store := &fakeStore{
		link:    testLink(),
		member:  true,
		account: &models.GithubAccount{UserID: "user-1"},
		latest: &models.Snapshot{
			AnalysedAt: now.Add(-24 * time.Hour),
			RepoStat:   models.RepoStat{TotalCommits: 10, CommitsByDay: map[string]int{}},
		},
	}
	fetcher := &fakeFetcher{branches: []string{"main"}}
	svc := newTestService(store, fetcher, now)

	_, err := svc.AnalyseRepository(ctx, 1, "user-1")
	require.NoError(t, err)

	// The degenerate baseline is ignored in favour of the 90-day fallback.
	assert.True(t, fetcher.lastSince.Equal(now.AddDate(0, 0, -90)))
}

func TestAnalyseRepositoryDeduplicatesAcrossBranches(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	shared := commitAt("shared", "alice", now.Add(-time.Hour))
	store := &fakeStore{
		link:    testLink(),
		member:  true,
		account: &models.GithubAccount{UserID: "user-1"},
	}
	fetcher := &fakeFetcher{
		branches: []string{"main", "feature"},
		commits: map[string][]*models.Commit{
			"main":    {shared},
			"feature": {shared, commitAt("only-feature", "alice", now.Add(-30*time.Minute))},
		},
	}
	svc := newTestService(store, fetcher, now)

	snapshot, err := svc.AnalyseRepository(ctx, 1, "user-1")
	require.NoError(t, err)

	all := snapshot.Payload.BranchScopeStats.AllBranches
	assert.Equal(t, 2, all.TotalCommits, "shared commit counted once in the deduplicated set")
	assert.Equal(t, map[string]int{"main": 1, "feature": 2}, all.CommitsByBranch)
	assert.Equal(t, 2, all.BranchCount)
}
