package db

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/contribhub/contrib-insights/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// PostgresStore implements Store on top of Postgres.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Migrate() error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) FindLinkByID(ctx context.Context, id int64) (*models.RepositoryLink, error) {
	var link models.RepositoryLink
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, github_repo_id, full_name, html_url, owner_login, default_branch, sync_interval_minutes, created_at
		FROM repository_links WHERE id = $1
	`, id).Scan(&link.ID, &link.ProjectID, &link.GithubRepoID, &link.FullName, &link.HTMLURL,
		&link.OwnerLogin, &link.DefaultBranch, &link.SyncInterval, &link.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get repository link: %w", err)
	}

	return &link, nil
}

func (s *PostgresStore) ListLinksByProject(ctx context.Context, projectID int64) ([]*models.RepositoryLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, github_repo_id, full_name, html_url, owner_login, default_branch, sync_interval_minutes, created_at
		FROM repository_links WHERE project_id = $1 ORDER BY id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list repository links: %w", err)
	}
	defer rows.Close()

	var links []*models.RepositoryLink
	for rows.Next() {
		var link models.RepositoryLink
		if err := rows.Scan(&link.ID, &link.ProjectID, &link.GithubRepoID, &link.FullName, &link.HTMLURL,
			&link.OwnerLogin, &link.DefaultBranch, &link.SyncInterval, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan repository link: %w", err)
		}
		links = append(links, &link)
	}

	return links, rows.Err()
}

func (s *PostgresStore) IsUserInProject(ctx context.Context, userID string, projectID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM project_members WHERE user_id = $1 AND project_id = $2)
	`, userID, projectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check project membership: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) FindAccountByUser(ctx context.Context, userID string) (*models.GithubAccount, error) {
	var account models.GithubAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, github_login, access_token, refresh_token, token_expires_at, refresh_expires_at
		FROM github_accounts WHERE user_id = $1
	`, userID).Scan(&account.UserID, &account.GithubLogin, &account.AccessToken,
		&account.RefreshToken, &account.TokenExpiresAt, &account.RefreshExpiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get github account: %w", err)
	}

	return &account, nil
}

func (s *PostgresStore) ListIdentityCandidates(ctx context.Context, projectID int64) ([]models.IdentityCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.user_id, COALESCE(a.github_login, ''), COALESCE(a.github_email, '')
		FROM project_members m
		LEFT JOIN github_accounts a ON a.user_id = m.user_id
		WHERE m.project_id = $1
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list identity candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.IdentityCandidate
	for rows.Next() {
		var candidate models.IdentityCandidate
		if err := rows.Scan(&candidate.UserID, &candidate.GithubLogin, &candidate.GithubEmail); err != nil {
			return nil, fmt.Errorf("failed to scan identity candidate: %w", err)
		}
		candidates = append(candidates, candidate)
	}

	return candidates, rows.Err()
}

func (s *PostgresStore) FindLatestSnapshot(ctx context.Context, linkID int64) (*models.Snapshot, error) {
	var row snapshotRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, link_id, requested_by, analysed_at, since, until, payload, contributors, repo_stat, created_at
		FROM analysis_snapshots WHERE link_id = $1
		ORDER BY analysed_at DESC LIMIT 1
	`, linkID).Scan(&row.ID, &row.LinkID, &row.RequestedBy, &row.AnalysedAt, &row.Since,
		&row.Until, &row.PayloadJSON, &row.ContribJSON, &row.RepoStatJSON, &row.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return decodeSnapshotRow(&row)
}

func (s *PostgresStore) CreateSnapshot(ctx context.Context, snapshot *models.Snapshot) (*models.Snapshot, error) {
	payloadJSON, err := json.Marshal(snapshot.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}
	contribJSON, err := json.Marshal(snapshot.Contributors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contributor stats: %w", err)
	}
	repoStatJSON, err := json.Marshal(snapshot.RepoStat)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal repo stat: %w", err)
	}

	created := *snapshot
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO analysis_snapshots (link_id, requested_by, analysed_at, since, until, payload, contributors, repo_stat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, snapshot.LinkID, snapshot.RequestedBy, snapshot.AnalysedAt, snapshot.Since, snapshot.Until,
		payloadJSON, contribJSON, repoStatJSON).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return &created, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, linkID int64, limit int) ([]*models.Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, link_id, requested_by, analysed_at, since, until, payload, contributors, repo_stat, created_at
		FROM analysis_snapshots WHERE link_id = $1
		ORDER BY analysed_at DESC LIMIT $2
	`, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		var row snapshotRow
		if err := rows.Scan(&row.ID, &row.LinkID, &row.RequestedBy, &row.AnalysedAt, &row.Since,
			&row.Until, &row.PayloadJSON, &row.ContribJSON, &row.RepoStatJSON, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshot, err := decodeSnapshotRow(&row)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

func decodeSnapshotRow(row *snapshotRow) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{
		ID:          row.ID,
		LinkID:      row.LinkID,
		RequestedBy: row.RequestedBy,
		AnalysedAt:  row.AnalysedAt,
		Since:       row.Since,
		Until:       row.Until,
		CreatedAt:   row.CreatedAt,
	}

	if err := json.Unmarshal(row.PayloadJSON, &snapshot.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot payload: %w", err)
	}
	if err := json.Unmarshal(row.ContribJSON, &snapshot.Contributors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contributor stats: %w", err)
	}
	if err := json.Unmarshal(row.RepoStatJSON, &snapshot.RepoStat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal repo stat: %w", err)
	}

	return snapshot, nil
}
