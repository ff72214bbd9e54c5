package report

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browserscan/trustscore/internal/model"
)

func sampleReport(id string) *Report {
	return &Report{
		ID:        id,
		CreatedAt: fixedNow,
		IP:        clientIP,
		OpenPorts: []int{22},
		Score: model.ScoreCard{
			Total: 90, Grade: "A", Verdict: "Low Risk",
			Deductions: []model.ScoreDeduction{{Code: "OPEN_PORTS", Score: -10, Desc: "Critical ports open: 22"}},
		},
	}
}

func TestMemoryStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, sampleReport("a"), time.Minute))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 90, got.Score.Total)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, sampleReport("short"), time.Minute))
	require.NoError(t, s.Save(ctx, sampleReport("long"), time.Hour))

	now = now.Add(2 * time.Minute)
	_, err := s.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, s.Len())

	s.Cleanup()
	assert.Equal(t, 1, s.Len())
	_, err = s.Get(ctx, "long")
	assert.NoError(t, err)
}

func TestMemoryStore_RunCleanupStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore()

	done := make(chan struct{})
	go func() {
		s.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "trustscore:report:"), mr
}

func TestRedisStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniredisStore(t)

	require.NoError(t, s.Save(ctx, sampleReport("r1"), time.Hour))
	assert.True(t, mr.Exists("trustscore:report:r1"))
	assert.Equal(t, time.Hour, mr.TTL("trustscore:report:r1"))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
	assert.True(t, fixedNow.Equal(got.CreatedAt))
	assert.Equal(t, sampleReport("r1").Score, got.Score)
	assert.Equal(t, []int{22}, got.OpenPorts)
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniredisStore(t)

	require.NoError(t, s.Save(ctx, sampleReport("r1"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	s, mr := newMiniredisStore(t)
	require.NoError(t, mr.Set("trustscore:report:bad", "{not json"))

	_, err := s.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "decode report bad")
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.ErrorContains(t, err, "parse redis url")
}
