package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// streamTopic delivers a topic over server-sent events: full history replay
// in offset order, then live messages until the client disconnects.
func (a *API) streamTopic(c *gin.Context, topic string) {
	sub := a.bus.Subscribe(topic)
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("message", msg)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The bridge is a demo harness with no authentication; all origins are
	// accepted.
	CheckOrigin: func(*http.Request) bool { return true },
}

// subscribeWebsocket handles GET /ws/subscribe/:topic, the websocket
// counterpart of the SSE stream: history replay, then live delivery, until
// either side closes.
func (a *API) subscribeWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		a.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	topic := c.Param("topic")
	sub := a.bus.Subscribe(topic)
	defer sub.Close()

	// Reader goroutine: its only job is noticing the peer going away.
	go func() {
		defer sub.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range sub.C {
		if err := conn.WriteJSON(msg); err != nil {
			a.logger.Debug().Err(err).Str("topic", topic).Msg("websocket write failed")
			return
		}
	}
}
