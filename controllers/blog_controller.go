package controllers

import (
	"net/http"

	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
)

type BlogController struct {
	Blog *services.BlogService
}

func NewBlogController(bs *services.BlogService) *BlogController {
	return &BlogController{Blog: bs}
}

func (bc *BlogController) Published(c *gin.Context) {
	var p services.Page
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	posts, err := bc.Blog.Published(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (bc *BlogController) BySlug(c *gin.Context) {
	post, err := bc.Blog.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (bc *BlogController) Mine(c *gin.Context) {
	posts, err := bc.Blog.Mine(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (bc *BlogController) Create(c *gin.Context) {
	var req services.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	post, err := bc.Blog.Create(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (bc *BlogController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	post, err := bc.Blog.Update(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (bc *BlogController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := bc.Blog.Delete(c.Request.Context(), c.GetUint("userID"), id, c.GetBool("isAdmin")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/admin/posts?status=pending
func (bc *BlogController) ByStatus(c *gin.Context) {
	var p services.Page
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	posts, err := bc.Blog.ByStatus(c.Request.Context(), c.Query("status"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (bc *BlogController) Moderate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.ModerationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	post, err := bc.Blog.Moderate(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
