package controllers

import (
	"net/http"

	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
)

type StayController struct {
	Stays        *services.StayService
	Participants *services.ParticipantService
}

func NewStayController(stays *services.StayService, participants *services.ParticipantService) *StayController {
	return &StayController{Stays: stays, Participants: participants}
}

func (sc *StayController) List(c *gin.Context) {
	stays, err := sc.Stays.List(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stays": stays})
}

func (sc *StayController) Create(c *gin.Context) {
	var req services.StayInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	stay, err := sc.Stays.Create(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stay)
}

func (sc *StayController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	stay, err := sc.Stays.Get(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stay)
}

func (sc *StayController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.StayInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	stay, err := sc.Stays.Update(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stay)
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

func (sc *StayController) SetStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	stay, err := sc.Stays.SetStatus(c.Request.Context(), c.GetUint("userID"), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stay)
}

func (sc *StayController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := sc.Stays.Delete(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (sc *StayController) ListParticipants(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	out, err := sc.Participants.List(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": out})
}

func (sc *StayController) AddParticipant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.ParticipantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := sc.Participants.Add(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (sc *StayController) UpdateParticipant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pid, ok := idParam(c, "participantId")
	if !ok {
		return
	}
	var req services.ParticipantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := sc.Participants.Update(c.Request.Context(), c.GetUint("userID"), id, pid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (sc *StayController) DeleteParticipant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pid, ok := idParam(c, "participantId")
	if !ok {
		return
	}
	if err := sc.Participants.Delete(c.Request.Context(), c.GetUint("userID"), id, pid); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
