package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mossy-p/voicerooms/internal/middleware"
	"github.com/mossy-p/voicerooms/internal/models"
	"github.com/mossy-p/voicerooms/internal/registry"
	"github.com/mossy-p/voicerooms/internal/router"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// Client is one WebSocket session. It satisfies registry.Conn; writes go
// through the buffered Send channel and a single writePump goroutine.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// Enqueue implements registry.Conn. Non-blocking; a full buffer drops the
// payload and reports false.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// Close implements registry.Conn. Closing the socket makes readPump exit and
// run the disconnect cascade.
func (c *Client) Close() error {
	return c.Conn.Close()
}

// HandleSignaling upgrades the connection and hands every inbound frame to
// the event router. A valid admin JWT in the token query parameter marks the
// connection admin-privileged.
func HandleSignaling(jwtSecret string, reg *registry.Registry, rt *router.Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		remoteAddr := c.ClientIP()
		if rt.Banned(remoteAddr) {
			c.JSON(http.StatusForbidden, gin.H{"error": "banned"})
			return
		}

		admin := false
		if token := c.Query("token"); token != "" {
			if _, err := middleware.ParseToken(token, jwtSecret); err == nil {
				admin = true
			} else {
				log.Printf("Rejecting admin token from %s: %v", remoteAddr, err)
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}

		connID := uuid.New().String()
		client := &Client{
			ID:   connID,
			Conn: conn,
			Send: make(chan []byte, 256),
		}

		reg.Register(connID, client, admin)
		rt.HandleConnect(connID, remoteAddr)
		log.Printf("Connection %s established from %s (admin=%v)", connID, remoteAddr, admin)

		go client.writePump()
		go client.readPump(reg, rt)
	}
}

func (c *Client) readPump(reg *registry.Registry, rt *router.Router) {
	defer func() {
		rt.HandleDisconnect(c.ID)
		reg.Unregister(c.ID)
		c.Conn.Close()
		log.Printf("Connection %s closed", c.ID)
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var evt models.Event
		if err := json.Unmarshal(message, &evt); err != nil {
			log.Printf("Failed to parse event from %s: %v", c.ID, err)
			continue
		}

		rt.HandleEvent(c.ID, evt)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
