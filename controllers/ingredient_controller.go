package controllers

import (
	"net/http"

	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
)

type IngredientController struct {
	Ingredients *services.IngredientService
}

func NewIngredientController(is *services.IngredientService) *IngredientController {
	return &IngredientController{Ingredients: is}
}

// GET /api/ingredients?q=&category=&mine=
func (ic *IngredientController) List(c *gin.Context) {
	var f services.CatalogFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	out, err := ic.Ingredients.List(c.Request.Context(), c.GetUint("userID"), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": out})
}

func (ic *IngredientController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ing, err := ic.Ingredients.Get(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (ic *IngredientController) Create(c *gin.Context) {
	var req services.IngredientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ing, err := ic.Ingredients.Create(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

func (ic *IngredientController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.IngredientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ing, err := ic.Ingredients.Update(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (ic *IngredientController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := ic.Ingredients.Delete(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
