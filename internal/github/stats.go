package github

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/contribhub/contrib-insights/internal/models"
)

// FetchCommitStats resolves per-commit line-change stats for up to
// maxDetailed of the given SHAs. The cache is consulted first; misses are
// fetched by a bounded pool of workers each claiming a disjoint index. A 403
// or 429 from upstream stops further requests for this call but keeps what
// was already fetched. SHAs past the cap are absent from the result, not
// zeroed.
func (c *Client) FetchCommitStats(ctx context.Context, shas []string, maxDetailed int) map[string]models.CommitStats {
	if maxDetailed <= 0 {
		maxDetailed = c.cfg.MaxDetailedCommits
	}
	if len(shas) > maxDetailed {
		shas = shas[:maxDetailed]
	}

	results := make(map[string]models.CommitStats, len(shas))
	var misses []string
	for _, sha := range shas {
		if stats, ok := c.statsCache.Get(c.fullName, sha); ok {
			results[sha] = stats
		} else {
			misses = append(misses, sha)
		}
	}
	if len(misses) == 0 {
		return results
	}

	workers := c.cfg.StatsWorkers
	if workers > len(misses) {
		workers = len(misses)
	}

	var (
		mu      sync.Mutex
		next    atomic.Int64
		stopped atomic.Bool
		wg      sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if stopped.Load() || ctx.Err() != nil {
					return
				}
				idx := int(next.Add(1)) - 1
				if idx >= len(misses) {
					return
				}

				sha := misses[idx]
				stats, status, err := c.fetchSingleCommitStats(ctx, sha)
				if err != nil {
					c.logger.WithError(err).WithField("sha", sha).Debug("Commit stats fetch failed")
					continue
				}
				if isRateLimited(status) {
					c.logger.WithFields(logrus.Fields{
						"repository": c.fullName,
						"status":     status,
					}).Warn("Rate limited while fetching commit stats, keeping partial results")
					stopped.Store(true)
					return
				}
				if status < 200 || status >= 300 {
					continue
				}

				c.statsCache.Put(c.fullName, sha, stats)
				mu.Lock()
				results[sha] = stats
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return results
}

func (c *Client) fetchSingleCommitStats(ctx context.Context, sha string) (models.CommitStats, int, error) {
	var detail struct {
		Stats struct {
			Additions int `json:"additions"`
			Deletions int `json:"deletions"`
		} `json:"stats"`
	}

	status, err := c.getJSON(ctx, "/repos/"+c.fullName+"/commits/"+sha, nil, &detail)
	if err != nil {
		return models.CommitStats{}, status, err
	}

	return models.CommitStats{
		Additions: detail.Stats.Additions,
		Deletions: detail.Stats.Deletions,
	}, status, nil
}
