package db

import (
	"context"
	"time"

	"github.com/contribhub/contrib-insights/internal/models"
)

// Store defines the interface for database operations
type Store interface {
	// Link operations
	FindLinkByID(ctx context.Context, id int64) (*models.RepositoryLink, error)
	ListLinksByProject(ctx context.Context, projectID int64) ([]*models.RepositoryLink, error)

	// Membership and identity operations
	IsUserInProject(ctx context.Context, userID string, projectID int64) (bool, error)
	FindAccountByUser(ctx context.Context, userID string) (*models.GithubAccount, error)
	ListIdentityCandidates(ctx context.Context, projectID int64) ([]models.IdentityCandidate, error)

	// Snapshot operations. Snapshots are append-only: there is no update.
	FindLatestSnapshot(ctx context.Context, linkID int64) (*models.Snapshot, error)
	CreateSnapshot(ctx context.Context, snapshot *models.Snapshot) (*models.Snapshot, error)
	ListSnapshots(ctx context.Context, linkID int64, limit int) ([]*models.Snapshot, error)
}

// snapshotRow mirrors the analysis_snapshots table with its JSON columns.
type snapshotRow struct {
	ID           int64
	LinkID       int64
	RequestedBy  string
	AnalysedAt   time.Time
	Since        time.Time
	Until        time.Time
	PayloadJSON  []byte
	ContribJSON  []byte
	RepoStatJSON []byte
	CreatedAt    time.Time
}
