package ws

import (
	"net/http"
	"time"

	"lipa/config"
	"lipa/internal/auth"
	"lipa/internal/checkout"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UpgradeCheckoutWS streams session state transitions to the app that opened
// the checkout. The token travels as a query parameter because mobile
// WebSocket clients cannot set headers.
func UpgradeCheckoutWS(cfg *config.JWTConfig, hub *CheckoutHub, store *checkout.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		sess, ok := store.Get(sessionID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if sess.UserID != claims.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		client := &Client{
			UserID:    claims.UserID,
			SessionID: sessionID,
			Send:      make(chan []byte, 64),
		}
		hub.Register(client)
		defer client.Close()
		// Current state first, transitions after.
		hub.Publish(sessionID, sess.Snapshot())
		go writePump(client, conn)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
