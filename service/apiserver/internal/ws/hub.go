// Package ws implements the realtime hub: room membership for scarcity
// and evolution updates plus the redis bridge that carries events
// published by other processes.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/picha-labs/picha/common/events"
)

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
	conns map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
		conns: make(map[*Client]bool),
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[client] = true
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, client)
	for room, members := range h.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[client] = true
}

func (h *Hub) leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends an event to every member of a room, or to every
// connection when room is empty.
func (h *Hub) Broadcast(room, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		logx.Errorf("fail to marshal broadcast data: %v", err)
		return
	}
	frame, err := json.Marshal(events.Envelope{Event: event, Data: payload})
	if err != nil {
		logx.Errorf("fail to marshal broadcast frame: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if room == "" {
		for client := range h.conns {
			client.send(frame)
		}
		return
	}
	for client := range h.rooms[room] {
		client.send(frame)
	}
}

// RoomSize reports current membership, used by tests and metrics.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// RunRedisBridge consumes the shared event channel and fans messages
// out to local connections. It returns when ctx is cancelled.
func (h *Hub) RunRedisBridge(ctx context.Context, client *redis.Client) {
	sub := client.Subscribe(ctx, events.Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event events.Message
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logx.Errorf("malformed event on redis bridge: %v", err)
				continue
			}
			h.Broadcast(event.Room, event.Event, json.RawMessage(event.Data))
		}
	}
}
