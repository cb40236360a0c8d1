package controllers

import (
	"net/http"

	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Alerts *services.AlertService
	Users  *services.UserService
}

func NewNotificationController(as *services.AlertService, us *services.UserService) *NotificationController {
	return &NotificationController{Alerts: as, Users: us}
}

// GET /api/alerts?unread=true
func (nc *NotificationController) List(c *gin.Context) {
	alerts, err := nc.Alerts.List(c.Request.Context(), c.GetUint("userID"), c.Query("unread") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := nc.Alerts.MarkRead(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	if err := nc.Alerts.MarkAllRead(c.Request.Context(), c.GetUint("userID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type toggleReq struct {
	Enabled bool `json:"enabled"`
}

// POST /api/user/notifications/toggle
func (nc *NotificationController) Toggle(c *gin.Context) {
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := nc.Users.SetNotifications(c.Request.Context(), c.GetUint("userID"), req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "notifications updated",
		"enabled": req.Enabled,
	})
}
