package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewHub(client, logger.Discard()), mr
}

func TestPublishReachesTableSubscriber(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx, "patients")
	require.NoError(t, err)
	defer sub.Close()

	other, err := hub.Subscribe(ctx, "appointment_calls")
	require.NoError(t, err)
	defer other.Close()

	require.NoError(t, hub.Publish(ctx, ChangeEvent{Table: "patients", Op: OpUpdate}))

	select {
	case ev := <-sub.C:
		assert.Equal(t, "patients", ev.Table)
		assert.Equal(t, OpUpdate, ev.Op)
		assert.False(t, ev.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	select {
	case ev := <-other.C:
		t.Fatalf("unexpected event on other table: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSessionEventsRoundTrip(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx := context.Background()

	sub, err := hub.SubscribeSessions(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, hub.PublishSession(ctx, SessionEvent{Type: SignedOut, SessionID: "s-1", UserID: "u-1"}))

	select {
	case ev := <-sub.C:
		assert.Equal(t, SignedOut, ev.Type)
		assert.Equal(t, "s-1", ev.SessionID)
	case <-time.After(2 * time.Second):
		t.Fatal("no session event received")
	}
}

func TestCloseEndsStream(t *testing.T) {
	hub, _ := newTestHub(t)

	sub, err := hub.Subscribe(context.Background(), "perfiles")
	require.NoError(t, err)
	sub.Close()
	sub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestContextCancelEndsStream(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := hub.Subscribe(ctx, "patients")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after cancel")
	}
}

func TestParseNotification(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    ChangeEvent
		wantErr bool
	}{
		{"insert", `{"table":"appointment_calls","op":"INSERT"}`, ChangeEvent{Table: "appointment_calls", Op: OpInsert}, false},
		{"lowercase op", `{"table":"patients","op":"delete"}`, ChangeEvent{Table: "patients", Op: OpDelete}, false},
		{"missing table", `{"op":"UPDATE"}`, ChangeEvent{}, true},
		{"unknown op", `{"table":"patients","op":"TRUNCATE"}`, ChangeEvent{}, true},
		{"not json", `patients`, ChangeEvent{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNotification(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Table, got.Table)
			assert.Equal(t, tt.want.Op, got.Op)
		})
	}
}
