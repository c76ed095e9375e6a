package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/common/events"
	"github.com/picha-labs/picha/core/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan []byte
	once sync.Once

	mu     sync.Mutex
	closed bool

	limiter *rateLimiter
}

// rateLimiter is a fixed window counter per connection.
type rateLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	limit    int
	count    int
	windowAt time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{window: window, limit: limit, windowAt: time.Now()}
}

func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if now.Sub(r.windowAt) >= r.window {
		r.windowAt = now
		r.count = 0
	}
	r.count++
	return r.count <= r.limit
}

// ServeWs upgrades the request and runs the connection until close.
func ServeWs(hub *Hub, limit int, window time.Duration, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Errorf("websocket upgrade failed: %v", err)
		return
	}
	client := &Client{
		hub:     hub,
		conn:    conn,
		out:     make(chan []byte, sendBuffer),
		limiter: newRateLimiter(limit, window),
	}
	hub.register(client)

	go client.writeLoop()
	go client.readLoop()

	client.sendEvent(events.EventStatus, map[string]string{"msg": "connected"})
}

func (c *Client) close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		c.mu.Lock()
		c.closed = true
		close(c.out)
		c.mu.Unlock()
	})
}

func (c *Client) send(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- frame:
	default:
		// slow consumer, drop the connection. Closing happens off this
		// goroutine because the hub may be holding its lock here.
		go c.close()
	}
}

func (c *Client) sendEvent(event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	frame, err := json.Marshal(events.Envelope{Event: event, Data: payload})
	if err != nil {
		return
	}
	c.send(frame)
}

func (c *Client) readLoop() {
	defer func() {
		c.close()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logx.Errorf("websocket read error: %v", err)
			}
			return
		}
		if !c.limiter.allow() {
			c.sendEvent(events.EventError, map[string]string{"msg": "rate limit exceeded"})
			continue
		}
		c.dispatch(raw)
	}
}

func (c *Client) dispatch(raw []byte) {
	var envelope events.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.sendEvent(events.EventError, map[string]string{"msg": "malformed message"})
		return
	}

	switch envelope.Event {
	case events.EventJoinScarcityRoom, events.EventLeaveScarcityRoom:
		var data struct {
			Artist    string `json:"artist"`
			EventType string `json:"event_type"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil || data.Artist == "" {
			c.sendEvent(events.EventError, map[string]string{"msg": "artist and event_type required"})
			return
		}
		if _, err := model.ParseEventType(data.EventType); err != nil {
			c.sendEvent(events.EventError, map[string]string{"msg": "unknown event_type"})
			return
		}
		room := events.ScarcityRoom(data.Artist, data.EventType)
		if envelope.Event == events.EventJoinScarcityRoom {
			c.hub.join(c, room)
			c.sendEvent(events.EventStatus, map[string]string{"msg": "joined " + room})
		} else {
			c.hub.leave(c, room)
			c.sendEvent(events.EventStatus, map[string]string{"msg": "left " + room})
		}

	case events.EventJoinEvolutionRoom, events.EventLeaveEvolutionRoom:
		var data struct {
			NftId string `json:"nft_id"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil || data.NftId == "" {
			c.sendEvent(events.EventError, map[string]string{"msg": "nft_id required"})
			return
		}
		room := events.EvolutionRoom(data.NftId)
		if envelope.Event == events.EventJoinEvolutionRoom {
			c.hub.join(c, room)
			c.sendEvent(events.EventStatus, map[string]string{"msg": "joined " + room})
		} else {
			c.hub.leave(c, room)
			c.sendEvent(events.EventStatus, map[string]string{"msg": "left " + room})
		}

	case events.EventTestMessage:
		c.sendEvent(events.EventTestResponse, json.RawMessage(envelope.Data))

	default:
		c.sendEvent(events.EventError, map[string]string{"msg": "unknown event " + envelope.Event})
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
