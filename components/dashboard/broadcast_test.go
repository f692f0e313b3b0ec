package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterSubscribe(t *testing.T) {
	bus := NewBroadcaster[string]()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish("refresh")
	select {
	case value := <-ch:
		assert.Equal(t, "refresh", value)
	default:
		t.Fatalf("expected value to be delivered")
	}
}

func TestCommandBusKeepsEveryCommandInOrder(t *testing.T) {
	bus := NewCommandBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	want := []LayoutCommand{CommandSaveLayout}
	for i := 0; i < subscriberBuffer*4; i++ {
		want = append(want, CommandToggleEditMode)
	}
	want = append(want, CommandSaveLayout)
	for _, cmd := range want {
		bus.Publish(cmd)
	}

	got := make([]LayoutCommand, 0, len(want))
	timeout := time.After(2 * time.Second)
	for len(got) < len(want) {
		select {
		case cmd := <-ch:
			got = append(got, cmd)
		case <-timeout:
			t.Fatalf("received %d of %d commands", len(got), len(want))
		}
	}
	assert.Equal(t, want, got)
}

func TestCommandBusCancelAndClose(t *testing.T) {
	bus := NewCommandBus()
	first, cancelFirst := bus.Subscribe()
	second, _ := bus.Subscribe()
	require.Equal(t, 2, bus.Subscribers())

	bus.Publish(CommandCloseSidebar)
	cancelFirst()
	cancelFirst()
	assert.Equal(t, 1, bus.Subscribers())
	for range first {
	}

	bus.Close()
	for range second {
	}
	assert.Zero(t, bus.Subscribers())
	bus.Publish(CommandSaveLayout)

	late, _ := bus.Subscribe()
	_, open := <-late
	assert.False(t, open)
}

func TestBroadcasterCancelAndClose(t *testing.T) {
	bus := NewBroadcaster[int]()
	first, cancelFirst := bus.Subscribe()
	second, _ := bus.Subscribe()
	require.Equal(t, 2, bus.Subscribers())

	cancelFirst()
	_, open := <-first
	assert.False(t, open)
	cancelFirst()

	bus.Close()
	_, open = <-second
	assert.False(t, open)
	assert.Zero(t, bus.Subscribers())

	late, _ := bus.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestBroadcasterDropsForSlowSubscribers(t *testing.T) {
	bus := NewBroadcaster[int]()
	ch, cancel := bus.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBuffer*2; i++ {
		bus.Publish(i)
	}
	assert.Len(t, ch, subscriberBuffer)
}

type sliceSink struct {
	events []DashboardEvent
	failAt int
}

func (s *sliceSink) WriteJSON(v any) error {
	if s.failAt > 0 && len(s.events)+1 == s.failAt {
		return errors.New("closed")
	}
	s.events = append(s.events, v.(DashboardEvent))
	return nil
}

func TestEventBroadcasterStreamFiltersSession(t *testing.T) {
	hook := NewEventBroadcaster()
	sink := &sliceSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hook.Stream(ctx, sink, "s1") }()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, hook.DashboardUpdated(ctx, DashboardEvent{SessionID: "s2", Reason: "edit_mode"}))
	require.NoError(t, hook.DashboardUpdated(ctx, DashboardEvent{SessionID: "s1", Reason: "layout_saved"}))
	hook.Close()

	require.NoError(t, <-done)
	cancel()
	require.Len(t, sink.events, 1)
	assert.Equal(t, "layout_saved", sink.events[0].Reason)
}

func TestEventBroadcasterServeWebSocket(t *testing.T) {
	hook := NewEventBroadcaster()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, hook.DashboardUpdated(context.Background(), DashboardEvent{SessionID: "s1", Reason: "interactive", State: StateInteractive}))

	var event DashboardEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, StateInteractive, event.State)
	assert.Equal(t, "interactive", event.Reason)
}
