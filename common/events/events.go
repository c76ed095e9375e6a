// Package events defines the realtime event envelope shared by the api
// server's websocket hub and the evolver service, plus the redis bridge
// that carries events between processes.
package events

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Channel is the redis pub/sub channel the hub subscribes to.
const Channel = "picha:events"

// server to client event names
const (
	EventStatus          = "status"
	EventError           = "error"
	EventScarcityUpdate  = "scarcity_update"
	EventEvolutionUpdate = "evolution_update"
	EventNewMint         = "new_mint"
	EventTestResponse    = "test_response"
)

// client to server event names
const (
	EventJoinScarcityRoom   = "join_scarcity_room"
	EventLeaveScarcityRoom  = "leave_scarcity_room"
	EventJoinEvolutionRoom  = "join_evolution_room"
	EventLeaveEvolutionRoom = "leave_evolution_room"
	EventTestMessage        = "test_message"
)

// Envelope is the wire frame for every websocket message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Message is an event addressed to a room. An empty room broadcasts to
// every connection.
type Message struct {
	Room  string          `json:"room,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func NewMessage(room, event string, data interface{}) (*Message, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event data")
	}
	return &Message{Room: room, Event: event, Data: payload}, nil
}

// ScarcityRoom names the room for one artist-event combination.
func ScarcityRoom(artist, eventType string) string {
	return "scarcity-" + artist + "-" + eventType
}

// EvolutionRoom names the room for one NFT's evolution updates.
func EvolutionRoom(nftId string) string {
	return "evolution-" + nftId
}

// Publisher pushes realtime events onto the redis channel so that the
// hub, possibly in another process, can fan them out.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, room, event string, data interface{}) error {
	msg, err := NewMessage(room, event, data)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal event message")
	}
	if err := p.client.Publish(ctx, Channel, raw).Err(); err != nil {
		return errors.Wrap(err, "publish event")
	}
	return nil
}
