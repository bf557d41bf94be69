package handlers

import (
	"net/http"

	"logitrack-api/shipments"
	"logitrack-api/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type TrackingSocketHandler struct {
	Shipments *shipments.Service
	Hub       *socket.Hub
	Log       *zap.Logger
	Upgrader  websocket.Upgrader
}

// Follow upgrades to a websocket, sends the current tracking snapshot and
// then streams status events for the LR number until the client leaves.
func (h *TrackingSocketHandler) Follow(c *gin.Context) {
	lrNo := c.Param("lr_no")
	res, err := h.Shipments.Track(c.Request.Context(), lrNo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up shipment."})
		return
	}
	if !res.Success {
		c.JSON(http.StatusNotFound, res)
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Debug("websocket upgrade failed", zap.String("lr_no", lrNo), zap.Error(err))
		return
	}
	defer conn.Close()

	// the snapshot goes out before the hub may write to conn
	if err := conn.WriteJSON(res); err != nil {
		return
	}
	unregister := h.Hub.Register(lrNo, conn)
	defer unregister()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
