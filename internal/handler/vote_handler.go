package handler

import (
	"net/http"

	"soundwars/internal/middleware"
	"soundwars/internal/service"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	svc *service.VotingService
}

func NewVoteHandler(svc *service.VotingService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

type CastVoteRequest struct {
	SongID uint `json:"song_id" binding:"required"`
}

func (h *VoteHandler) Cast(c *gin.Context) {
	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	v, err := h.svc.CastVote(c.Request.Context(), middleware.GetUserID(c), req.SongID, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "vote recorded", "vote": v})
}

func (h *VoteHandler) Status(c *gin.Context) {
	st, err := h.svc.Status(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *VoteHandler) MyVote(c *gin.Context) {
	v, err := h.svc.MyVote(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
