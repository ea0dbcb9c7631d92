package handler

import (
	"io"
	"net/http"

	"soundwars/internal/middleware"
	"soundwars/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	webhookHashHeader = "verif-hash"
	maxWebhookBody    = 1 << 20
)

type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type InitializePaymentRequest struct {
	TxRef string `json:"tx_ref" binding:"required"`
}

type VerifyPaymentRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	TxRef         string `json:"tx_ref" binding:"required"`
}

func (h *PaymentHandler) Initialize(c *gin.Context) {
	var req InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.svc.Initialize(c.Request.Context(), middleware.GetUserID(c), req.TxRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.svc.Verify(c.Request.Context(), middleware.GetUserID(c), req.TransactionID, req.TxRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment verified", "payment": p})
}

// Webhook receives gateway callbacks. The body is read raw so the payload can
// be stored exactly as delivered.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}
	if err := h.svc.HandleWebhook(c.Request.Context(), c.GetHeader(webhookHashHeader), body); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PaymentHandler) Status(c *gin.Context) {
	p, err := h.svc.Status(c.Request.Context(), middleware.GetUserID(c), c.Param("tx_ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
