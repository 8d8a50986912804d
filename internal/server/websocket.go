package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/kubetour/internal/session"
	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/log"
)

// Client is a WebSocket connection that owns one live session. The session
// is created on connect and deleted on disconnect
type Client struct {
	server   *Server
	conn     *websocket.Conn
	consumer topic.Consumer[*api.SessionEvent]
	session  *session.Session
	done     chan struct{}
	once     sync.Once
}

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 512
	wsBufferSize       = 1024
	incomingBufferSize = 16
)

var ErrTourRequired = errors.New("tour query parameter required")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebSocket(c *gin.Context) {
	tourID := api.TourID(c.Query("tour"))
	if tourID == "" {
		writeBadRequest(c, ErrTourRequired)
		return
	}

	// subscribe first so no transition of the new session is missed
	consumer := s.sessions.Subscribe()
	sess, err := s.sessions.Create(tourID)
	if err != nil {
		consumer.Close()
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		consumer.Close()
		_ = s.sessions.Delete(sess.ID())
		slog.Error("WebSocket upgrade failed",
			log.SessionID(sess.ID()),
			log.Error(err))
		return
	}

	client := &Client{
		server:   s,
		conn:     conn,
		consumer: consumer,
		session:  sess,
		done:     make(chan struct{}),
	}
	s.registerWebSocket(client)
	go client.run()
}

// Close asks the connection to shut down. The session is deleted once the
// connection loop exits
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Client) run() {
	defer func() {
		c.Close()
		c.consumer.Close()
		_ = c.conn.Close()
		c.server.unregisterWebSocket(c)
		err := c.server.sessions.Delete(c.session.ID())
		if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			slog.Warn("Session delete failed",
				log.SessionID(c.session.ID()),
				log.Error(err))
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	incoming := make(chan []byte, incomingBufferSize)
	go c.readMessages(incoming)

	if !c.write(&api.SessionEvent{
		Type:      api.EventTypeSessionState,
		Session:   c.session.State(),
		Timestamp: time.Now().UnixMilli(),
	}) {
		return
	}

	for {
		select {
		case message, ok := <-incoming:
			if !ok {
				return
			}
			if !c.handleCommand(message) {
				return
			}

		case event, ok := <-c.consumer.Receive():
			if !ok {
				c.sendClose()
				return
			}
			if !c.owns(event) {
				continue
			}
			if !c.write(event) {
				return
			}
			if event.Type == api.EventTypeSessionClosed {
				c.sendClose()
				return
			}

		case <-ticker.C:
			if !c.sendPing() {
				return
			}

		case <-c.done:
			c.sendClose()
			return
		}
	}
}

func (c *Client) readMessages(incoming chan []byte) {
	defer close(incoming)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case incoming <- message:
		case <-c.done:
			return
		}
	}
}

func (c *Client) handleCommand(message []byte) bool {
	var cmd api.SessionCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		slog.Error("Failed to parse WebSocket message",
			log.SessionID(c.session.ID()),
			log.Error(err))
		return c.write(&api.CommandError{
			Type:  api.EventTypeCommandError,
			Error: err.Error(),
		})
	}

	if _, err := c.session.Apply(cmd); err != nil {
		slog.Debug("Session command rejected",
			log.SessionID(c.session.ID()),
			slog.String("command", string(cmd.Type)),
			log.Error(err))
		return c.write(&api.CommandError{
			Type:    api.EventTypeCommandError,
			Command: cmd.Type,
			Error:   err.Error(),
		})
	}
	return true
}

func (c *Client) owns(event *api.SessionEvent) bool {
	return event.Session != nil && event.Session.ID == c.session.ID()
}

func (c *Client) write(v any) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(v); err != nil {
		slog.Error("WebSocket write failed",
			log.SessionID(c.session.ID()),
			log.Error(err))
		return false
	}
	return true
}

func (c *Client) sendClose() {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) sendPing() bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteMessage(websocket.PingMessage, nil)
	return err == nil
}
