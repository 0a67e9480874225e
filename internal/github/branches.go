package github

import (
	"context"
	"net/url"
	"strconv"

	"github.com/contribhub/contrib-insights/internal/models"
)

type branchItem struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
	Commit    struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

func (c *Client) fetchBranchPage(ctx context.Context, page int) ([]branchItem, int, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.cfg.BranchPageSize))
	query.Set("page", strconv.Itoa(page))

	var items []branchItem
	status, err := c.getJSON(ctx, "/repos/"+c.fullName+"/branches", query, &items)
	return items, status, err
}

// ListBranchNames lists branch names, best-effort: failures return whatever
// was collected so far instead of an error.
func (c *Client) ListBranchNames(ctx context.Context) []string {
	var names []string

	for page := 1; page <= c.cfg.BranchPageLimit; page++ {
		items, status, err := c.fetchBranchPage(ctx, page)
		if err != nil {
			c.logger.WithError(err).WithField("repository", c.fullName).
				Warn("Branch name listing failed, returning partial result")
			return names
		}
		if err := mapStatus(status, "failed to list branches"); err != nil {
			c.logger.WithError(err).WithField("repository", c.fullName).
				Warn("Branch name listing failed, returning partial result")
			return names
		}

		for _, item := range items {
			names = append(names, item.Name)
		}
		if len(items) < c.cfg.BranchPageSize {
			break
		}
	}

	return names
}

// ListBranchesDetailed lists branches with protection flag and head SHA.
// Unlike ListBranchNames, failures propagate.
func (c *Client) ListBranchesDetailed(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch

	for page := 1; page <= c.cfg.BranchPageLimit; page++ {
		items, status, err := c.fetchBranchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if err := mapStatus(status, "failed to list branches for "+c.fullName); err != nil {
			return nil, err
		}

		for _, item := range items {
			branches = append(branches, models.Branch{
				Name:      item.Name,
				Protected: item.Protected,
				HeadSHA:   item.Commit.SHA,
			})
		}
		if len(items) < c.cfg.BranchPageSize {
			break
		}
	}

	return branches, nil
}

// CompareBranches computes how far a branch is ahead of and behind a base
// branch. Identical names short-circuit without a network call, and any
// upstream failure yields a comparison with nil fields instead of an error.
func (c *Client) CompareBranches(ctx context.Context, base, branch string) models.BranchComparison {
	if base == branch {
		zero := 0
		status := "identical"
		return models.BranchComparison{AheadBy: &zero, BehindBy: &zero, Status: &status}
	}

	var result struct {
		AheadBy  int    `json:"ahead_by"`
		BehindBy int    `json:"behind_by"`
		Status   string `json:"status"`
	}

	path := "/repos/" + c.fullName + "/compare/" + url.PathEscape(base) + "..." + url.PathEscape(branch)
	status, err := c.getJSON(ctx, path, nil, &result)
	if err != nil || mapStatus(status, "compare failed") != nil {
		c.logger.WithFields(map[string]interface{}{
			"repository": c.fullName,
			"base":       base,
			"branch":     branch,
			"status":     status,
		}).Debug("Branch compare unavailable")
		return models.BranchComparison{}
	}

	return models.BranchComparison{
		AheadBy:  &result.AheadBy,
		BehindBy: &result.BehindBy,
		Status:   &result.Status,
	}
}
