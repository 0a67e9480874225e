package analysis

import (
	"time"

	"github.com/contribhub/contrib-insights/internal/models"
)

type mergeInputs struct {
	since          time.Time
	until          time.Time
	branches       []string
	defaultCommits []*models.Commit
	allCommits     []*models.Commit
	byBranch       map[string]int
	defaultStats   map[string]models.CommitStats
	allStats       map[string]models.CommitStats
}

func sumStats(stats map[string]models.CommitStats) (additions, deletions int) {
	for _, entry := range stats {
		additions += entry.Additions
		deletions += entry.Deletions
	}
	return additions, deletions
}

// mergeWithBaseline folds this run's aggregated stats onto the baseline
// snapshot (or onto empty state for a first run) and assembles the new
// snapshot. Baseline payload fields may be absent; zero values merge as
// empty.
func (s *Service) mergeWithBaseline(link *models.RepositoryLink, userID string, baseline *models.Snapshot, aggregated *AggregateResult, in mergeInputs) *models.Snapshot {
	var prevRows []*models.ContributorStat
	var prevStat models.RepoStat
	var prevPayload models.SnapshotPayload
	if baseline != nil {
		prevRows = baseline.Contributors
		prevStat = baseline.RepoStat
		prevPayload = baseline.Payload
	}

	mergedRows := MergeUserStats(prevRows, sortedContributors(aggregated.Contributors))

	mergedByDay := MergeCountMaps(prevStat.CommitsByDay, aggregated.RepoCommitsByDay)
	mergedByBranch := MergeCountMaps(prevStat.CommitsByBranch, aggregated.RepoCommitsByBranch)

	countedDefault := 0
	for _, count := range aggregated.RepoCommitsByDay {
		countedDefault += count
	}

	repoStat := ComputeRepoStat(mergedRows, mergedByDay, mergedByBranch, prevStat.DefaultBranchCommits+countedDefault)

	defaultAdditions, defaultDeletions := sumStats(in.defaultStats)
	allAdditions, allDeletions := sumStats(in.allStats)

	defaultScope := models.DefaultBranchScope{
		Branch:         link.DefaultBranch,
		TotalCommits:   prevPayload.BranchScopeStats.DefaultBranch.TotalCommits + len(in.defaultCommits),
		TotalAdditions: prevPayload.BranchScopeStats.DefaultBranch.TotalAdditions + defaultAdditions,
		TotalDeletions: prevPayload.BranchScopeStats.DefaultBranch.TotalDeletions + defaultDeletions,
	}

	allScope := models.AllBranchesScope{
		BranchCount:     len(in.branches),
		TotalCommits:    prevPayload.BranchScopeStats.AllBranches.TotalCommits + len(in.allCommits),
		TotalAdditions:  prevPayload.BranchScopeStats.AllBranches.TotalAdditions + allAdditions,
		TotalDeletions:  prevPayload.BranchScopeStats.AllBranches.TotalDeletions + allDeletions,
		CommitsByBranch: MergeCountMaps(prevPayload.BranchScopeStats.AllBranches.CommitsByBranch, in.byBranch),
		CommitStatsCoverage: models.CommitStatsCoverage{
			DetailedCommitCount:  prevPayload.BranchScopeStats.AllBranches.CommitStatsCoverage.DetailedCommitCount + len(in.allStats),
			RequestedCommitCount: prevPayload.BranchScopeStats.AllBranches.CommitStatsCoverage.RequestedCommitCount + len(in.allCommits),
		},
	}

	payload := models.SnapshotPayload{
		Repository: models.RepositoryDescriptor{
			ID:            link.GithubRepoID,
			FullName:      link.FullName,
			HTMLURL:       link.HTMLURL,
			OwnerLogin:    link.OwnerLogin,
			DefaultBranch: link.DefaultBranch,
		},
		AnalysedWindow: models.AnalysedWindow{
			Since: in.since.UTC().Format(time.RFC3339),
			Until: in.until.UTC().Format(time.RFC3339),
		},
		TimeSeries: models.TimeSeries{
			DefaultBranch: models.LineChangeSeries{
				LineChangesByDay: MergeLineChangeMaps(
					prevPayload.TimeSeries.DefaultBranch.LineChangesByDay,
					LineChangesByDay(in.defaultCommits, in.defaultStats),
				),
			},
			AllBranches: models.LineChangeSeries{
				LineChangesByDay: MergeLineChangeMaps(
					prevPayload.TimeSeries.AllBranches.LineChangesByDay,
					LineChangesByDay(in.allCommits, in.allStats),
				),
			},
		},
		CommitCount: allScope.TotalCommits,
		CommitStatsCoverage: models.CommitStatsCoverage{
			DetailedCommitCount:  prevPayload.CommitStatsCoverage.DetailedCommitCount + len(in.defaultStats),
			RequestedCommitCount: prevPayload.CommitStatsCoverage.RequestedCommitCount + len(in.defaultCommits),
		},
		BranchScopeStats: models.BranchScopeStats{
			DefaultBranch: defaultScope,
			AllBranches:   allScope,
		},
		SampleCommits: MergeSampleCommits(prevPayload.SampleCommits, in.allCommits, s.cfg.MaxSampleCommits),
	}

	return &models.Snapshot{
		LinkID:       link.ID,
		RequestedBy:  userID,
		AnalysedAt:   in.until,
		Since:        in.since,
		Until:        in.until,
		Payload:      payload,
		Contributors: mergedRows,
		RepoStat:     repoStat,
	}
}
