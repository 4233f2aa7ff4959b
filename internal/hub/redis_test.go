package hub

import (
	"context"
	"testing"

	"ctchen222/Tikki-Tacca/internal/events"
	"ctchen222/Tikki-Tacca/internal/game"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisHub_PublishSubscribe(t *testing.T) {
	// Given
	rdb := setupRedis(t)
	publisher := NewRedisHub(rdb)
	watcher := NewRedisHub(rdb)
	ctx := context.Background()

	ch, cancel, err := watcher.Subscribe(ctx, "g1")
	require.NoError(t, err)
	defer cancel()

	var board game.Board
	board[4] = game.Human
	state := game.Snapshot{
		Board:       board,
		Phase:       game.PhaseAwaitingOpponent,
		WinningLine: []int{},
		Difficulty:  game.DifficultyLow,
		Status:      game.StatusAIThinking,
		Generation:  2,
	}

	// When
	require.NoError(t, publisher.Publish(ctx, "g1", state))

	// Then
	assert.Equal(t, state, receive(t, ch))
}

func TestRedisHub_IgnoresForeignEvents(t *testing.T) {
	rdb := setupRedis(t)
	h := NewRedisHub(rdb)
	ctx := context.Background()

	ch, cancel, err := h.Subscribe(ctx, "g1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, rdb.Publish(ctx, events.GameChannel("g1"), "not json").Err())
	require.NoError(t, rdb.Publish(ctx, events.GameChannel("g1"), `{"event":"something_else","payload":{}}`).Err())
	require.NoError(t, h.Publish(ctx, "g1", game.Snapshot{Generation: 9, WinningLine: []int{}}))

	assert.Equal(t, uint64(9), receive(t, ch).Generation)
}

func TestRedisHub_CancelClosesStream(t *testing.T) {
	rdb := setupRedis(t)
	h := NewRedisHub(rdb)

	ch, cancel, err := h.Subscribe(context.Background(), "g1")
	require.NoError(t, err)

	cancel()

	for range ch {
	}
}
