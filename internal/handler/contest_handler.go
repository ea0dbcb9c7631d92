package handler

import (
	"net/http"

	"soundwars/internal/service"

	"github.com/gin-gonic/gin"
)

type ContestHandler struct {
	svc *service.ContestService
}

func NewContestHandler(svc *service.ContestService) *ContestHandler {
	return &ContestHandler{svc: svc}
}

// Current returns the active contest and its phase, or 404 when none is running.
func (h *ContestHandler) Current(c *gin.Context) {
	contest, err := h.svc.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contest": contest, "phase": h.svc.Phase(contest)})
}
