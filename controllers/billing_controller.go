package controllers

import (
	"io"
	"net/http"

	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBody = 1 << 16

type BillingController struct {
	Billing      *services.BillingService
	Entitlements *services.EntitlementService
}

func NewBillingController(bs *services.BillingService, es *services.EntitlementService) *BillingController {
	return &BillingController{Billing: bs, Entitlements: es}
}

func (bc *BillingController) Subscription(c *gin.Context) {
	info, err := bc.Billing.Subscription(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (bc *BillingController) Usage(c *gin.Context) {
	ov, err := bc.Entitlements.Overview(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (bc *BillingController) Checkout(c *gin.Context) {
	url, err := bc.Billing.Checkout(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (bc *BillingController) Portal(c *gin.Context) {
	url, err := bc.Billing.Portal(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// POST /api/billing/webhook, called by Stripe without a bearer token.
func (bc *BillingController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}
	ev, err := bc.Billing.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := bc.Billing.ApplyEvent(c.Request.Context(), ev); err != nil {
		logger.Error("stripe webhook", zap.String("event_id", ev.ID), zap.String("type", string(ev.Type)), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
