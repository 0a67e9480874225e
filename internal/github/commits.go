package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/contribhub/contrib-insights/internal/models"
)

type commitItem struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Email string `json:"email"`
			Date  string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
	} `json:"author"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
	HTMLURL string `json:"html_url"`
}

func (item commitItem) toModel() *models.Commit {
	commit := &models.Commit{
		SHA:         item.SHA,
		Message:     item.Commit.Message,
		AuthorEmail: item.Commit.Author.Email,
		CommitURL:   item.HTMLURL,
	}
	if item.Author != nil {
		commit.AuthorID = item.Author.ID
		commit.AuthorLogin = item.Author.Login
	}
	if item.Commit.Author.Date != "" {
		if date, err := time.Parse(time.RFC3339, item.Commit.Author.Date); err == nil {
			commit.AuthorDate = &date
		}
	}
	for _, parent := range item.Parents {
		commit.Parents = append(commit.Parents, parent.SHA)
	}
	return commit
}

func toModels(items []commitItem) []*models.Commit {
	commits := make([]*models.Commit, 0, len(items))
	for _, item := range items {
		commits = append(commits, item.toModel())
	}
	return commits
}

// FetchCommits fetches the commits of one branch since the given time,
// paginating until a short page or the page ceiling is hit. An HTTP 409 means
// an empty repository or branch and yields an empty list, not an error.
func (c *Client) FetchCommits(ctx context.Context, branch string, since time.Time) ([]*models.Commit, error) {
	var all []*models.Commit

	for page := 1; page <= c.cfg.CommitPageLimit; page++ {
		query := url.Values{}
		query.Set("sha", branch)
		query.Set("per_page", strconv.Itoa(c.cfg.CommitPageSize))
		query.Set("page", strconv.Itoa(page))
		if !since.IsZero() {
			query.Set("since", since.UTC().Format(time.RFC3339))
		}

		var items []commitItem
		status, err := c.getJSON(ctx, "/repos/"+c.fullName+"/commits", query, &items)
		if err != nil {
			return nil, err
		}
		if status == http.StatusConflict {
			return all, nil
		}
		if err := mapStatus(status, "failed to list commits for "+c.fullName); err != nil {
			return nil, err
		}

		all = append(all, toModels(items)...)

		c.logger.WithFields(logrus.Fields{
			"repository": c.fullName,
			"branch":     branch,
			"page":       page,
			"commits":    len(items),
		}).Debug("Fetched commits page")

		if len(items) < c.cfg.CommitPageSize {
			break
		}
	}

	return all, nil
}

// FetchRecentCommits fetches a single page of the newest commits on a branch.
// The limit is clamped to 50.
func (c *Client) FetchRecentCommits(ctx context.Context, branch string, limit int) ([]*models.Commit, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	query := url.Values{}
	query.Set("sha", branch)
	query.Set("per_page", strconv.Itoa(limit))

	var items []commitItem
	status, err := c.getJSON(ctx, "/repos/"+c.fullName+"/commits", query, &items)
	if err != nil {
		return nil, err
	}
	if status == http.StatusConflict {
		return nil, nil
	}
	if err := mapStatus(status, fmt.Sprintf("failed to list recent commits on %s", branch)); err != nil {
		return nil, err
	}

	return toModels(items), nil
}

// FetchUserCommitsPage fetches one page of commits authored by the given
// login. perPage is clamped to 100.
func (c *Client) FetchUserCommitsPage(ctx context.Context, author string, page, perPage int) ([]*models.Commit, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}

	query := url.Values{}
	query.Set("author", author)
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))

	var items []commitItem
	status, err := c.getJSON(ctx, "/repos/"+c.fullName+"/commits", query, &items)
	if err != nil {
		return nil, err
	}
	if status == http.StatusConflict {
		return nil, nil
	}
	if err := mapStatus(status, "failed to list commits for author "+author); err != nil {
		return nil, err
	}

	return toModels(items), nil
}

// FetchAllUserCommits pages through the entire commit history of one author,
// bounded by the user-commit page ceiling.
func (c *Client) FetchAllUserCommits(ctx context.Context, author string) ([]*models.Commit, error) {
	var all []*models.Commit

	for page := 1; page <= c.cfg.UserCommitPageLimit; page++ {
		commits, err := c.FetchUserCommitsPage(ctx, author, page, 100)
		if err != nil {
			return nil, err
		}
		all = append(all, commits...)
		if len(commits) < 100 {
			break
		}
	}

	return all, nil
}
