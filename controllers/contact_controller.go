package controllers

import (
	"net/http"
	"strconv"

	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
)

type ContactController struct {
	Contact *services.ContactService
}

func NewContactController(cs *services.ContactService) *ContactController {
	return &ContactController{Contact: cs}
}

func (cc *ContactController) Submit(c *gin.Context) {
	var req services.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := cc.Contact.Submit(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": msg.ID, "message": "thanks, we will get back to you"})
}

// GET /api/admin/contact?handled=false
func (cc *ContactController) List(c *gin.Context) {
	var p services.Page
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	var handled *bool
	if raw := c.Query("handled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "handled must be true or false"})
			return
		}
		handled = &v
	}
	msgs, err := cc.Contact.List(c.Request.Context(), handled, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type handledReq struct {
	Handled bool `json:"handled"`
}

func (cc *ContactController) SetHandled(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req handledReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := cc.Contact.SetHandled(c.Request.Context(), id, req.Handled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "handled": req.Handled})
}
