package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cursormemory "github.com/mcoot/apl-auction/internal/cursor/memory"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "sold",
			data:      "<div>\n  <p>line1</p>\n  <p>line2</p>\n</div>",
			expected:  "event: sold\ndata: <div>\ndata:   <p>line1</p>\ndata:   <p>line2</p>\ndata: </div>\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single line",
			input:    "hello",
			expected: []string{"hello"},
		},
		{
			name:     "two lines",
			input:    "line1\nline2",
			expected: []string{"line1", "line2"},
		},
		{
			name:     "trailing newline",
			input:    "line1\n",
			expected: []string{"line1"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{""},
		},
		{
			name:     "crlf line endings",
			input:    "line1\r\nline2\r\n",
			expected: []string{"line1", "line2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func receive(t *testing.T, client *Client) string {
	t.Helper()
	select {
	case msg := <-client.send:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
		return ""
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := newRunningHub(t)

	client := NewClient(hub, "10.0.0.1:5000")
	require.True(t, hub.Register(client))
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastEvent("advance", "{}")
	assert.Equal(t, "event: advance\ndata: {}\n\n", receive(t, client))
}

func TestHub_Unregister(t *testing.T) {
	hub := newRunningHub(t)

	client := NewClient(hub, "10.0.0.1:5000")
	hub.Register(client)
	hub.Unregister(client)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-client.send
	assert.False(t, open)
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := newRunningHub(t)

	clients := []*Client{
		NewClient(hub, "display-1"),
		NewClient(hub, "display-2"),
		NewClient(hub, "panel"),
	}
	for _, c := range clients {
		hub.Register(c)
	}
	assert.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	hub.BroadcastEvent("refresh", "now")
	for _, c := range clients {
		assert.Equal(t, "event: refresh\ndata: now\n\n", receive(t, c))
	}
}

func TestHub_RegisterAfterClose(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	hub.Close()
	hub.Close()

	assert.False(t, hub.Register(NewClient(hub, "late")))
}

func TestRelay_ForwardsCursorAsNamedEvent(t *testing.T) {
	hub := newRunningHub(t)
	channel := cursormemory.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := NewRelay(channel, hub, testutil.NopLogger())
	require.NoError(t, relay.Start(ctx))

	client := NewClient(hub, "display")
	hub.Register(client)

	require.NoError(t, channel.Publish(ctx, model.CursorMessage{PlayerID: "p-1", TeamID: "t-1", Kind: model.CursorSold}))

	msg := receive(t, client)
	assert.True(t, strings.HasPrefix(msg, "event: sold\n"), msg)
	assert.Contains(t, msg, `"player_id":"p-1"`)
	assert.Contains(t, msg, `"team_id":"t-1"`)
}

func TestRelay_StopsWithContext(t *testing.T) {
	hub := newRunningHub(t)
	channel := cursormemory.New()
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, NewRelay(channel, hub, testutil.NopLogger()).Start(ctx))
	assert.Equal(t, 1, channel.SubscriberCount())

	cancel()
	assert.Eventually(t, func() bool { return channel.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestServeSSE_StreamsEvents(t *testing.T) {
	hub := newRunningHub(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, hub)
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readLine := func() string {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		return strings.TrimSuffix(line, "\n")
	}
	assert.Equal(t, "retry: 3000", readLine())
	assert.Equal(t, "event: connected", readLine())
	assert.Equal(t, `data: {"status":"connected"}`, readLine())
	assert.Equal(t, "", readLine())

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.BroadcastEvent("advance", "{}")
	assert.Equal(t, "event: advance", readLine())
	assert.Equal(t, "data: {}", readLine())
}
