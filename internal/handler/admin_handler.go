package handler

import (
	"net/http"
	"strconv"
	"time"

	"soundwars/internal/domain"
	"soundwars/internal/middleware"
	"soundwars/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	admin        *service.AdminService
	submissions  *service.SubmissionService
	contests     *service.ContestService
	defaultPrize int64
}

func NewAdminHandler(admin *service.AdminService, submissions *service.SubmissionService, contests *service.ContestService, defaultPrize int64) *AdminHandler {
	return &AdminHandler{admin: admin, submissions: submissions, contests: contests, defaultPrize: defaultPrize}
}

type CreateContestRequest struct {
	Title             string    `json:"title" binding:"required"`
	Description       string    `json:"description"`
	StartDate         time.Time `json:"start_date" binding:"required"`
	SubmissionEndDate time.Time `json:"submission_end_date" binding:"required"`
	VotingEndDate     time.Time `json:"voting_end_date" binding:"required"`
	PrizeAmountMinor  *int64    `json:"prize_amount_minor"`
}

type RejectSongRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) audit(c *gin.Context, action, resource string, id uint, meta map[string]interface{}) {
	h.admin.Record(c.Request.Context(), service.AuditEntry{
		ActorID:    middleware.GetUserID(c),
		Action:     action,
		Resource:   resource,
		ResourceID: strconv.FormatUint(uint64(id), 10),
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		Metadata:   meta,
	})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) PendingSongs(c *gin.Context) {
	page, limit := pagination(c)
	songs, total, err := h.submissions.ListPending(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(songs, total, page, limit))
}

func (h *AdminHandler) ApproveSong(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	song, err := h.submissions.Moderate(c.Request.Context(), id, service.DecisionApprove, "")
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, "song_approved", "song", id, nil)
	c.JSON(http.StatusOK, song)
}

// RejectSong falls back to the stock reason when none is given.
func (h *AdminHandler) RejectSong(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req RejectSongRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	if req.Reason == "" {
		req.Reason = domain.DefaultRejectionReason
	}
	song, err := h.submissions.Moderate(c.Request.Context(), id, service.DecisionReject, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, "song_rejected", "song", id, map[string]interface{}{"reason": song.RejectionReason})
	c.JSON(http.StatusOK, song)
}

func (h *AdminHandler) ListContests(c *gin.Context) {
	page, limit := pagination(c)
	list, total, err := h.contests.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, page, limit))
}

func (h *AdminHandler) CreateContest(c *gin.Context) {
	var req CreateContestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	prize := h.defaultPrize
	if req.PrizeAmountMinor != nil {
		prize = *req.PrizeAmountMinor
	}
	contest, err := h.contests.Create(c.Request.Context(), service.CreateContestInput{
		Title:             req.Title,
		Description:       req.Description,
		StartDate:         req.StartDate,
		SubmissionEndDate: req.SubmissionEndDate,
		VotingEndDate:     req.VotingEndDate,
		PrizeAmountMinor:  prize,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, "contest_created", "contest", contest.ID, map[string]interface{}{"slug": contest.Slug})
	c.JSON(http.StatusCreated, contest)
}

func (h *AdminHandler) FinalizeContest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	win, err := h.contests.Finalize(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, "contest_finalized", "contest", id, map[string]interface{}{"song_id": win.SongID, "votes": win.FinalVoteCount})
	c.JSON(http.StatusOK, gin.H{"message": "contest finalized", "winner": win})
}

func (h *AdminHandler) Winners(c *gin.Context) {
	wins, err := h.contests.Winners(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": wins})
}

func (h *AdminHandler) Users(c *gin.Context) {
	page, limit := pagination(c)
	users, total, err := h.admin.Users(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(users, total, page, limit))
}

// AuditTrail lists recorded actions on one resource, oldest first.
func (h *AdminHandler) AuditTrail(c *gin.Context) {
	list, err := h.admin.AuditTrail(c.Request.Context(), c.Param("resource"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": list})
}
