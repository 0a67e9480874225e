package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/contribhub/contrib-insights/internal/analysis"
	"github.com/contribhub/contrib-insights/internal/db"
	apperrors "github.com/contribhub/contrib-insights/internal/errors"
	"github.com/contribhub/contrib-insights/internal/live"
)

// Handler exposes the analysis and live query services over HTTP.
type Handler struct {
	analysisService *analysis.Service
	liveService     *live.Service
	store           db.Store
	logger          *logrus.Logger
}

// NewHandler creates a new API handler
func NewHandler(analysisService *analysis.Service, liveService *live.Service, store db.Store, logger *logrus.Logger) *Handler {
	return &Handler{
		analysisService: analysisService,
		liveService:     liveService,
		store:           store,
		logger:          logger,
	}
}

func (h *Handler) linkID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperrors.NewValidationError("invalid link id", err))
		return 0, false
	}
	return id, true
}

func (h *Handler) userID(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		respondError(c, apperrors.NewUnauthorizedError("missing user identity", nil))
		return "", false
	}
	return userID, true
}

// AnalyseRepository triggers one analysis run for a repository link
// @Summary Analyse a linked repository
// @Description Runs an incremental contribution analysis and persists a new snapshot
// @Tags analysis
// @Produce json
// @Param id path int true "Repository link ID"
// @Param X-User-ID header string true "Requesting platform user"
// @Success 201 {object} models.Snapshot
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /links/{id}/analyse [post]
func (h *Handler) AnalyseRepository(c *gin.Context) {
	linkID, ok := h.linkID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	snapshot, err := h.analysisService.AnalyseRepository(c.Request.Context(), linkID, userID)
	if err != nil {
		h.logger.WithError(err).WithField("link_id", linkID).Error("Analysis failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

// GetLatestSnapshot returns the most recent snapshot for a link
// @Summary Get the latest snapshot
// @Tags analysis
// @Produce json
// @Param id path int true "Repository link ID"
// @Success 200 {object} models.Snapshot
// @Failure 404 {object} ErrorResponse
// @Router /links/{id}/snapshots/latest [get]
func (h *Handler) GetLatestSnapshot(c *gin.Context) {
	linkID, ok := h.linkID(c)
	if !ok {
		return
	}

	snapshot, err := h.store.FindLatestSnapshot(c.Request.Context(), linkID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest snapshot")
		respondError(c, apperrors.NewInternalError("failed to load snapshot", err))
		return
	}
	if snapshot == nil {
		respondError(c, apperrors.NewNotFoundError("no snapshot for this link", nil))
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ListSnapshots returns recent snapshots for a link
// @Summary List snapshots
// @Tags analysis
// @Produce json
// @Param id path int true "Repository link ID"
// @Param limit query int false "Number of snapshots to return" default(20)
// @Success 200 {array} models.Snapshot
// @Router /links/{id}/snapshots [get]
func (h *Handler) ListSnapshots(c *gin.Context) {
	linkID, ok := h.linkID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		respondError(c, apperrors.NewValidationError("invalid limit parameter", err))
		return
	}

	snapshots, err := h.store.ListSnapshots(c.Request.Context(), linkID, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list snapshots")
		respondError(c, apperrors.NewInternalError("failed to list snapshots", err))
		return
	}

	c.JSON(http.StatusOK, snapshots)
}

// ListLiveBranches lists branches with ahead/behind comparison
// @Summary List live branches
// @Tags live
// @Produce json
// @Param id path int true "Repository link ID"
// @Param X-User-ID header string true "Requesting platform user"
// @Success 200 {array} models.BranchWithCompare
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /links/{id}/live/branches [get]
func (h *Handler) ListLiveBranches(c *gin.Context) {
	linkID, ok := h.linkID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	branches, err := h.liveService.ListBranches(c.Request.Context(), linkID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, branches)
}

// ListLiveCommits lists recent commits on one branch
// @Summary List recent commits
// @Tags live
// @Produce json
// @Param id path int true "Repository link ID"
// @Param branch query string false "Branch name, defaults to the link's default branch"
// @Param X-User-ID header string true "Requesting platform user"
// @Success 200 {array} live.RecentCommit
// @Failure 404 {object} ErrorResponse
// @Router /links/{id}/live/commits [get]
func (h *Handler) ListLiveCommits(c *gin.Context) {
	linkID, ok := h.linkID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	commits, err := h.liveService.ListRecentCommits(c.Request.Context(), linkID, userID, c.Query("branch"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, commits)
}

// MyCommits lists the caller's own commits, with optional all-history totals
// @Summary List the caller's commits
// @Tags live
// @Produce json
// @Param id path int true "Repository link ID"
// @Param page query int false "Page number" default(1)
// @Param include_totals query bool false "Compute all-history totals (expensive)"
// @Param X-User-ID header string true "Requesting platform user"
// @Success 200 {object} live.MyCommitsResult
// @Failure 401 {object} ErrorResponse
// @Router /links/{id}/live/my-commits [get]
func (h *Handler) MyCommits(c *gin.Context) {
	linkID, ok := h.linkID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		respondError(c, apperrors.NewValidationError("invalid page parameter", err))
		return
	}
	includeTotals := c.Query("include_totals") == "true"

	result, err := h.liveService.MyCommits(c.Request.Context(), linkID, userID, page, includeTotals)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
