package handler

import (
	"net/http"

	"soundwars/internal/middleware"
	"soundwars/internal/service"

	"github.com/gin-gonic/gin"
)

type ArtistHandler struct {
	svc *service.ArtistService
}

func NewArtistHandler(svc *service.ArtistService) *ArtistHandler {
	return &ArtistHandler{svc: svc}
}

type CreateArtistRequest struct {
	StageName    string `json:"stage_name" binding:"required"`
	Bio          string `json:"bio"`
	Genre        string `json:"genre"`
	ProfileImage string `json:"profile_image"`
}

type UpdateArtistRequest struct {
	StageName    *string `json:"stage_name"`
	Bio          *string `json:"bio"`
	Genre        *string `json:"genre"`
	ProfileImage *string `json:"profile_image"`
}

func (h *ArtistHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	list, total, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, page, limit))
}

func (h *ArtistHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ArtistHandler) Create(c *gin.Context) {
	var req CreateArtistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.svc.Create(c.Request.Context(), middleware.GetUserID(c), service.ArtistInput{
		StageName:    req.StageName,
		Bio:          req.Bio,
		Genre:        req.Genre,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	// roles changed: clients should refresh their tokens
	c.JSON(http.StatusCreated, gin.H{"artist": a, "requires_payment": !a.IsPaid, "refresh_tokens": true})
}

func (h *ArtistHandler) GetProfile(c *gin.Context) {
	p, err := h.svc.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ArtistHandler) UpdateProfile(c *gin.Context) {
	var req UpdateArtistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.svc.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), service.ArtistUpdate{
		StageName:    req.StageName,
		Bio:          req.Bio,
		Genre:        req.Genre,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *ArtistHandler) CheckEligibility(c *gin.Context) {
	st, err := h.svc.CheckEligibility(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
