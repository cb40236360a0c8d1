package controllers

import (
	"net/http"

	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
)

type MealController struct {
	Meals *services.MealService
}

func NewMealController(ms *services.MealService) *MealController {
	return &MealController{Meals: ms}
}

func (mc *MealController) List(c *gin.Context) {
	stayID, ok := idParam(c, "id")
	if !ok {
		return
	}
	meals, err := mc.Meals.List(c.Request.Context(), c.GetUint("userID"), stayID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (mc *MealController) Create(c *gin.Context) {
	stayID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.MealInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	meal, err := mc.Meals.Create(c.Request.Context(), c.GetUint("userID"), stayID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (mc *MealController) Update(c *gin.Context) {
	stayID, ok := idParam(c, "id")
	if !ok {
		return
	}
	mealID, ok := idParam(c, "mealId")
	if !ok {
		return
	}
	var req services.MealInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	meal, err := mc.Meals.Update(c.Request.Context(), c.GetUint("userID"), stayID, mealID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (mc *MealController) Delete(c *gin.Context) {
	stayID, ok := idParam(c, "id")
	if !ok {
		return
	}
	mealID, ok := idParam(c, "mealId")
	if !ok {
		return
	}
	if err := mc.Meals.Delete(c.Request.Context(), c.GetUint("userID"), stayID, mealID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
