package handler

import (
	"net/http"
	"strconv"

	"soundwars/internal/apperr"
	"soundwars/internal/service"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	svc *service.LeaderboardService
}

func NewLeaderboardHandler(svc *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

func (h *LeaderboardHandler) Current(c *gin.Context) {
	board, err := h.svc.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *LeaderboardHandler) Top(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil {
		respondError(c, apperr.Validation("limit must be a number"))
		return
	}
	board, err := h.svc.Top(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *LeaderboardHandler) ForContest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	board, err := h.svc.ForContest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}
