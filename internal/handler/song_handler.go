package handler

import (
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"soundwars/internal/domain"
	"soundwars/internal/middleware"
	"soundwars/internal/service"
	"soundwars/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SongHandler struct {
	svc       *service.SubmissionService
	cloud     cloudinary.Client
	folder    string
	maxUpload int64
}

// NewSongHandler wires song endpoints. cloud may be nil, which disables uploads.
func NewSongHandler(svc *service.SubmissionService, cloud cloudinary.Client, folder string, maxUploadMB int64) *SongHandler {
	return &SongHandler{svc: svc, cloud: cloud, folder: folder, maxUpload: maxUploadMB << 20}
}

type SongRequest struct {
	Title      string `json:"title"`
	AudioURL   string `json:"audio_url"`
	CoverImage string `json:"cover_image"`
	Duration   int    `json:"duration"`
}

func (r SongRequest) input() service.SongInput {
	return service.SongInput{Title: r.Title, AudioURL: r.AudioURL, CoverImage: r.CoverImage, Duration: r.Duration}
}

// List returns the approved songs of the active contest, most voted first.
func (h *SongHandler) List(c *gin.Context) {
	contest, songs, err := h.svc.ListApproved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contest": contest, "songs": songs})
}

func (h *SongHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	song, err := h.svc.Get(c.Request.Context(), id, middleware.GetUserID(c), middleware.HasRole(c, domain.RoleAdmin))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func (h *SongHandler) MySubmissions(c *gin.Context) {
	songs, err := h.svc.ListMine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": songs})
}

func (h *SongHandler) Submit(c *gin.Context) {
	var req SongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	song, err := h.svc.Submit(c.Request.Context(), middleware.GetUserID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, song)
}

func (h *SongHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req SongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	song, err := h.svc.Update(c.Request.Context(), middleware.GetUserID(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

// Upload stores an audio file or cover image and returns its URL for a later submit.
// Form fields: file, and kind=audio|image (default audio).
func (h *SongHandler) Upload(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large", "max_bytes": h.maxUpload})
		return
	}
	kind := c.DefaultPostForm("kind", "audio")
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := domain.AllowedAudioExtensions
	if kind == "image" {
		allowed = domain.AllowedImageExtensions
	} else if kind != "audio" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be audio or image"})
		return
	}
	if !slices.Contains(allowed, ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type", "allowed": allowed})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	userID := middleware.GetUserID(c)
	folder := h.folder + "/" + kind + "/" + strconv.FormatUint(uint64(userID), 10)
	publicID := kind + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	var up *cloudinary.Upload
	if kind == "image" {
		up, err = h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	} else {
		up, err = h.cloud.UploadAudio(c.Request.Context(), f, folder, publicID)
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed", "retryable": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": up.URL, "public_id": up.PublicID})
}
