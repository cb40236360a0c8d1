package controllers

import (
	"net/http"

	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Admin *services.AdminService
}

func NewAdminController(as *services.AdminService) *AdminController {
	return &AdminController{Admin: as}
}

func (ac *AdminController) Stats(c *gin.Context) {
	st, err := ac.Admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (ac *AdminController) Users(c *gin.Context) {
	var f services.UserFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	users, err := ac.Admin.Users(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type adminReq struct {
	IsAdmin bool `json:"is_admin"`
}

func (ac *AdminController) SetAdmin(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req adminReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if id == c.GetUint("userID") && !req.IsAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot revoke your own admin access"})
		return
	}
	user, err := ac.Admin.SetAdmin(c.Request.Context(), id, req.IsAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
