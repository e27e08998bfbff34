// Package events publishes change notifications for playlists and history.
// Publishing is best effort: failures are logged and never reach the caller.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel events are published on.
const DefaultChannel = "media-browser"

const (
	PlaylistCreated = "playlist.created"
	PlaylistDeleted = "playlist.deleted"
	HistoryRecorded = "history.recorded"
)

// Event is the JSON message sent to subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) {}

// Redis publishes events on a Redis pub/sub channel.
type Redis struct {
	rdb     *redis.Client
	channel string
}

// NewRedis returns a publisher for the given client. An empty channel selects
// DefaultChannel.
func NewRedis(rdb *redis.Client, channel string) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{rdb: rdb, channel: channel}
}

// Dial connects to the server described by a redis:// URL.
func Dial(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedis(redis.NewClient(opt), DefaultChannel), nil
}

func (p *Redis) Publish(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		slog.Error("marshal event", "type", eventType, "error", err)
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, string(data)).Err(); err != nil {
		slog.Warn("publish event", "type", eventType, "channel", p.channel, "error", err)
	}
}

func (p *Redis) Close() error {
	return p.rdb.Close()
}
