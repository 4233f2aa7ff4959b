package hub

import (
	"context"
	"testing"
	"time"

	"ctchen222/Tikki-Tacca/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Hub = (*MemoryHub)(nil)
	_ Hub = (*RedisHub)(nil)
)

func receive(t *testing.T, ch <-chan game.Snapshot) game.Snapshot {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "stream closed")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no state received")
		return game.Snapshot{}
	}
}

func TestMemoryHub_PublishReachesSubscribersOfTheGame(t *testing.T) {
	// Given
	h := NewMemoryHub()
	ctx := context.Background()
	first, cancelFirst, err := h.Subscribe(ctx, "g1")
	require.NoError(t, err)
	defer cancelFirst()
	second, cancelSecond, err := h.Subscribe(ctx, "g1")
	require.NoError(t, err)
	defer cancelSecond()
	other, cancelOther, err := h.Subscribe(ctx, "g2")
	require.NoError(t, err)
	defer cancelOther()

	// When
	require.NoError(t, h.Publish(ctx, "g1", game.Snapshot{Generation: 7}))

	// Then
	assert.Equal(t, uint64(7), receive(t, first).Generation)
	assert.Equal(t, uint64(7), receive(t, second).Generation)
	select {
	case s := <-other:
		t.Fatalf("unexpected state on other game: %+v", s)
	default:
	}
}

func TestMemoryHub_CancelClosesStream(t *testing.T) {
	h := NewMemoryHub()
	ch, cancel, err := h.Subscribe(context.Background(), "g1")
	require.NoError(t, err)

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.subscribers("g1"))
	assert.NoError(t, h.Publish(context.Background(), "g1", game.Snapshot{}))
}

func TestMemoryHub_ContextEndsSubscription(t *testing.T) {
	h := NewMemoryHub()
	ctx, cancelCtx := context.WithCancel(context.Background())
	ch, _, err := h.Subscribe(ctx, "g1")
	require.NoError(t, err)

	cancelCtx()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryHub_SlowSubscriberKeepsLatest(t *testing.T) {
	h := NewMemoryHub()
	ch, cancel, err := h.Subscribe(context.Background(), "g1")
	require.NoError(t, err)
	defer cancel()

	for i := 1; i <= subscriberBuffer+5; i++ {
		require.NoError(t, h.Publish(context.Background(), "g1", game.Snapshot{Generation: uint64(i)}))
	}

	var last uint64
	for range subscriberBuffer {
		last = receive(t, ch).Generation
	}
	assert.Equal(t, uint64(subscriberBuffer+5), last)
}
