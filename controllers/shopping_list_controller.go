package controllers

import (
	"net/http"

	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
)

type ShoppingListController struct {
	Lists *services.ShoppingListService
}

func NewShoppingListController(ls *services.ShoppingListService) *ShoppingListController {
	return &ShoppingListController{Lists: ls}
}

// GET /api/stays/:id/shopping-list
func (sc *ShoppingListController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := sc.Lists.Build(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type printReq struct {
	Format    string                  `json:"format"`
	Overrides []services.LineOverride `json:"overrides" binding:"dive"`
}

// GET /api/stays/:id/shopping-list/print?format=text|html
func (sc *ShoppingListController) Print(c *gin.Context) {
	sc.print(c, c.DefaultQuery("format", "html"), nil)
}

// POST /api/stays/:id/shopping-list/print with display overrides.
func (sc *ShoppingListController) PrintWithOverrides(c *gin.Context) {
	var req printReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	format := req.Format
	if format == "" {
		format = c.DefaultQuery("format", "html")
	}
	sc.print(c, format, req.Overrides)
}

func (sc *ShoppingListController) print(c *gin.Context, format string, overrides []services.LineOverride) {
	if format != "text" && format != "html" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be text or html"})
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := sc.Lists.Build(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(overrides) > 0 {
		list = services.ApplyOverrides(list, overrides)
	}

	var (
		doc         string
		contentType string
	)
	if format == "text" {
		doc, err = services.RenderText(list)
		contentType = "text/plain; charset=utf-8"
	} else {
		doc, err = services.RenderHTML(list)
		contentType = "text/html; charset=utf-8"
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, []byte(doc))
}
