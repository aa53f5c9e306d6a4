package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"dropchat/internal/metrics"
	"dropchat/internal/models"
	"dropchat/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubEntries struct {
	codes map[string]bool
}

func (s stubEntries) Exists(code string) bool { return s.codes[code] }

func newTestBroker(entries map[string]bool) (*Broker, *store.RoomStore, *fakeClock) {
	clock := newFakeClock()
	rooms := store.NewRoomStore(clock)
	broker := NewBroker(rooms, stubEntries{codes: entries}, metrics.New(), 30*time.Minute, 2*time.Hour)
	return broker, rooms, clock
}

// newTestClient builds a client without a transport; tests read broadcast
// frames straight off the send buffer.
func newTestClient(b *Broker, author string) *Client {
	return NewClient(nil, author, b)
}

func recvEnvelope(t *testing.T, c *Client) *models.OutboundEnvelope {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var env models.OutboundEnvelope
		require.NoError(t, json.Unmarshal(data, &env))
		return &env
	case <-time.After(time.Second):
		t.Fatal("no envelope received")
		return nil
	}
}

func requireNoEnvelope(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected envelope: %s", data)
		}
	default:
	}
}

func TestJoinContentRoomRequiresLiveEntry(t *testing.T) {
	broker, rooms, _ := newTestBroker(map[string]bool{})

	c := newTestClient(broker, "author-a")
	err := broker.Join(c, "NOENTR", false)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// No room was created as a side effect.
	_, err = rooms.Get("NOENTR")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestJoinStandaloneRoomRequiresExistingRoom(t *testing.T) {
	broker, _, _ := newTestBroker(map[string]bool{})

	c := newTestClient(broker, "author-a")
	err := broker.Join(c, "NOROOM", true)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestJoinSendsHistoryAndCount(t *testing.T) {
	broker, rooms, _ := newTestBroker(map[string]bool{"CODE01": true})
	rooms.GetOrCreate("CODE01", 30*time.Minute)
	_, err := rooms.AppendMessage("CODE01", "author-x", "earlier")
	require.NoError(t, err)

	c := newTestClient(broker, "author-a")
	require.NoError(t, broker.Join(c, "CODE01", false))

	history := recvEnvelope(t, c)
	assert.Equal(t, models.EnvelopeChatHistory, history.Type)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "earlier", history.Messages[0].Text)

	count := recvEnvelope(t, c)
	assert.Equal(t, models.EnvelopeUserCount, count.Type)
	assert.Equal(t, 1, count.UserCount)
	require.NotNil(t, count.ExpiresAt)

	room, err := rooms.Get("CODE01")
	require.NoError(t, err)
	assert.Equal(t, 1, room.ActiveUsers)
}

func TestJoinBroadcastsCountToAllMembers(t *testing.T) {
	broker, rooms, _ := newTestBroker(map[string]bool{"CODE02": true})

	a := newTestClient(broker, "author-a")
	require.NoError(t, broker.Join(a, "CODE02", false))
	recvEnvelope(t, a) // history
	recvEnvelope(t, a) // count 1

	b := newTestClient(broker, "author-b")
	require.NoError(t, broker.Join(b, "CODE02", false))

	recvEnvelope(t, b) // history
	countB := recvEnvelope(t, b)
	assert.Equal(t, 2, countB.UserCount)

	countA := recvEnvelope(t, a)
	assert.Equal(t, models.EnvelopeUserCount, countA.Type)
	assert.Equal(t, 2, countA.UserCount)

	room, err := rooms.Get("CODE02")
	require.NoError(t, err)
	assert.Equal(t, 2, room.ActiveUsers)
}

func TestContentRoomTTLStartsAtFirstJoin(t *testing.T) {
	broker, rooms, clock := newTestBroker(map[string]bool{"CODE03": true})

	clock.Advance(10 * time.Minute)
	a := newTestClient(broker, "author-a")
	require.NoError(t, broker.Join(a, "CODE03", false))

	room, err := rooms.Get("CODE03")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(30*time.Minute), room.ExpiresAt)
}

func TestMessageBroadcastOrdering(t *testing.T) {
	broker, _, _ := newTestBroker(map[string]bool{"CODE04": true})

	a := newTestClient(broker, "author-a")
	b := newTestClient(broker, "author-b")
	require.NoError(t, broker.Join(a, "CODE04", false))
	recvEnvelope(t, a)
	recvEnvelope(t, a)
	require.NoError(t, broker.Join(b, "CODE04", false))
	recvEnvelope(t, a)
	recvEnvelope(t, b)
	recvEnvelope(t, b)

	require.NoError(t, broker.Message(a, "M1"))
	require.NoError(t, broker.Message(b, "M2"))

	for _, c := range []*Client{a, b} {
		m1 := recvEnvelope(t, c)
		require.Equal(t, models.EnvelopeNewMessage, m1.Type)
		assert.Equal(t, "M1", m1.Message.Text)
		assert.Equal(t, "author-a", m1.Message.AuthorToken)

		m2 := recvEnvelope(t, c)
		require.Equal(t, models.EnvelopeNewMessage, m2.Type)
		assert.Equal(t, "M2", m2.Message.Text)
		assert.Equal(t, "author-b", m2.Message.AuthorToken)
	}
}

func TestMessageAppendsToRoomLog(t *testing.T) {
	broker, rooms, _ := newTestBroker(map[string]bool{"CODE05": true})

	a := newTestClient(broker, "author-a")
	require.NoError(t, broker.Join(a, "CODE05", false))
	require.NoError(t, broker.Message(a, "persisted"))

	history := rooms.History("CODE05")
	require.Len(t, history, 1)
	assert.Equal(t, "persisted", history[0].Text)
}

func TestMessageToExpiredRoomReportedToSenderOnly(t *testing.T) {
	broker, _, clock := newTestBroker(map[string]bool{"CODE06": true})

	a := newTestClient(broker, "author-a")
	b := newTestClient(broker, "author-b")
	require.NoError(t, broker.Join(a, "CODE06", false))
	recvEnvelope(t, a)
	recvEnvelope(t, a)
	require.NoError(t, broker.Join(b, "CODE06", false))
	recvEnvelope(t, a)
	recvEnvelope(t, b)
	recvEnvelope(t, b)

	clock.Advance(time.Hour)
	err := broker.Message(a, "too late")
	assert.ErrorIs(t, err, store.ErrRoomNotFound)

	// Nothing was fanned out to the other member.
	requireNoEnvelope(t, b)
}

func TestMessageWithoutJoin(t *testing.T) {
	broker, _, _ := newTestBroker(map[string]bool{})
	c := newTestClient(broker, "author-a")
	assert.ErrorIs(t, broker.Message(c, "hello"), store.ErrRoomNotFound)
}

func TestStandaloneRoomScenario(t *testing.T) {
	broker, rooms, _ := newTestBroker(map[string]bool{})
	rooms.GetOrCreate("ROOM10", 2*time.Hour)

	a := newTestClient(broker, "author-a")
	b := newTestClient(broker, "author-b")

	require.NoError(t, broker.Join(a, "ROOM10", true))
	recvEnvelope(t, a) // history
	assert.Equal(t, 1, recvEnvelope(t, a).UserCount)

	require.NoError(t, broker.Join(b, "ROOM10", true))
	recvEnvelope(t, b) // history
	assert.Equal(t, 2, recvEnvelope(t, b).UserCount)
	assert.Equal(t, 2, recvEnvelope(t, a).UserCount)

	broker.Leave(a)
	countB := recvEnvelope(t, b)
	assert.Equal(t, models.EnvelopeUserCount, countB.Type)
	assert.Equal(t, 1, countB.UserCount)

	room, err := rooms.Get("ROOM10")
	require.NoError(t, err)
	assert.Equal(t, 1, room.ActiveUsers)

	broker.Leave(b)

	// Room and log are both gone once the last member disconnects.
	_, err = rooms.Get("ROOM10")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, rooms.History("ROOM10"))
}

func TestLeaveNeverJoined(t *testing.T) {
	broker, _, _ := newTestBroker(map[string]bool{})
	c := newTestClient(broker, "author-a")
	broker.Leave(c)

	_, ok := <-c.send
	assert.False(t, ok, "send channel should be closed")
}

func TestLeaveIsIdempotentPerConnection(t *testing.T) {
	broker, rooms, _ := newTestBroker(map[string]bool{})
	rooms.GetOrCreate("ROOM11", 2*time.Hour)

	a := newTestClient(broker, "author-a")
	b := newTestClient(broker, "author-b")
	require.NoError(t, broker.Join(a, "ROOM11", true))
	require.NoError(t, broker.Join(b, "ROOM11", true))

	broker.Leave(a)
	broker.Leave(a)

	room, err := rooms.Get("ROOM11")
	require.NoError(t, err)
	assert.Equal(t, 1, room.ActiveUsers)
	broker.Leave(b)
}
