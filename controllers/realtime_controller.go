package controllers

import (
	"net/http"
	"time"

	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const pingInterval = 25 * time.Second

type RealtimeController struct {
	RT       *services.RealtimeHub
	upgrader websocket.Upgrader
}

// NewRealtimeController accepts websocket upgrades from allowedOrigins
// only; an empty list accepts any origin.
func NewRealtimeController(rt *services.RealtimeHub, allowedOrigins []string) *RealtimeController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &RealtimeController{
		RT: rt,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// GET /api/ws/alerts
func (rc *RealtimeController) AlertsWS(c *gin.Context) {
	uid := c.GetUint("userID")

	conn, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Debug("websocket upgrade", zap.Error(err))
		return
	}
	cl := &services.WSClient{UserID: uid, Conn: conn}
	rc.RT.Register(cl)
	done := make(chan struct{})
	defer func() {
		close(done)
		rc.RT.Unregister(cl)
	}()

	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := cl.Ping(); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	// Incoming frames are ignored; the read loop only detects closure.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
