package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublish(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, DefaultChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	p := NewRedis(rdb, "")
	p.Publish(ctx, PlaylistCreated, map[string]string{"id": "abc"})

	select {
	case msg := <-sub.Channel():
		var ev struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, PlaylistCreated, ev.Type)
		assert.Equal(t, "abc", ev.Payload["id"])
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestRedisPublishFailureIsSilent(t *testing.T) {
	mr := miniredis.RunT(t)
	p, err := Dial("redis://" + mr.Addr())
	require.NoError(t, err)
	mr.Close()

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), HistoryRecorded, nil)
	})
	_ = p.Close()
}

func TestDialRejectsBadURL(t *testing.T) {
	_, err := Dial("not a url")
	assert.Error(t, err)
}
