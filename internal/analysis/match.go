package analysis

import (
	"strings"

	"github.com/contribhub/contrib-insights/internal/models"
)

// MatchContributors resolves each contributor to a platform user using the
// project's identity candidates. Matching is exact and case-insensitive, with
// login taking priority over email; no fuzzy matching.
func MatchContributors(contributors map[string]*models.ContributorStat, candidates []models.IdentityCandidate) {
	byLogin := make(map[string]string, len(candidates))
	byEmail := make(map[string]string, len(candidates))
	for _, candidate := range candidates {
		if candidate.GithubLogin != "" {
			byLogin[strings.ToLower(candidate.GithubLogin)] = candidate.UserID
		}
		if candidate.GithubEmail != "" {
			byEmail[strings.ToLower(candidate.GithubEmail)] = candidate.UserID
		}
	}

	for _, stat := range contributors {
		var userID string
		var found bool
		if stat.GithubLogin != nil {
			userID, found = byLogin[strings.ToLower(*stat.GithubLogin)]
		}
		if !found && stat.AuthorEmail != nil {
			userID, found = byEmail[strings.ToLower(*stat.AuthorEmail)]
		}

		if found {
			id := userID
			stat.MappedUserID = &id
			stat.IsMatched = true
		} else {
			stat.MappedUserID = nil
			stat.IsMatched = false
		}
	}
}
