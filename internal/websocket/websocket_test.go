package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
	"github.com/scythe504/undercover-backend/internal/catalog"
	"github.com/scythe504/undercover-backend/internal/config"
	"github.com/scythe504/undercover-backend/internal/game"
	"github.com/scythe504/undercover-backend/internal/testutil"
)

var testWSConfig = config.WebsocketConfig{
	WriteWait:      time.Second,
	PongWait:       10 * time.Second,
	MaxMessageSize: 8192,
	SendBuffer:     32,
}

func newTestServer(t *testing.T, opts ...game.Option) (*httptest.Server, *game.Registry) {
	t.Helper()
	reg := game.NewRegistry(catalog.Builtin(), opts...)
	gw := NewGateway(reg, testWSConfig, nil, zap.NewNop())
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)
	return srv, reg
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(typ string, data any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(internal.Message[any]{Type: typ, Data: data}))
}

func (c *wsClient) next() testutil.Frame {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var f testutil.Frame
	require.NoError(c.t, c.conn.ReadJSON(&f))
	return f
}

// await skips frames until one of type typ arrives.
func (c *wsClient) await(typ string) testutil.Frame {
	c.t.Helper()
	for {
		if f := c.next(); f.Type == typ {
			return f
		}
	}
}

func (c *wsClient) create(name string) internal.RoomJoinedData {
	c.t.Helper()
	c.send(internal.ActionCreateRoom, internal.CreateRoomData{PlayerName: name})
	return testutil.Decode[internal.RoomJoinedData](c.t, c.await(internal.EventRoomJoined))
}

func (c *wsClient) join(code, name string) internal.RoomJoinedData {
	c.t.Helper()
	c.send(internal.ActionJoinRoom, internal.JoinRoomData{RoomCode: code, PlayerName: name})
	return testutil.Decode[internal.RoomJoinedData](c.t, c.await(internal.EventRoomJoined))
}

func TestGateway_CreateRoom(t *testing.T) {
	srv, reg := newTestServer(t)
	host := dial(t, srv)

	host.send(internal.ActionCreateRoom, internal.CreateRoomData{PlayerName: "Alice"})

	joined := testutil.Decode[internal.RoomJoinedData](t, host.next())
	assert.True(t, joined.IsHost)
	assert.Len(t, joined.RoomCode, internal.RoomCodeLength)
	assert.NotEmpty(t, joined.PlayerID)

	assert.Equal(t, internal.EventUpdatePlayers, host.next().Type)
	settings := testutil.Decode[internal.SettingsData](t, host.next())
	assert.Equal(t, internal.DefaultCategory, settings.Category)

	assert.Equal(t, 1, reg.Count())
}

func TestGateway_JoinUnknownRoomReportsError(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dial(t, srv)

	c.send(internal.ActionJoinRoom, internal.JoinRoomData{RoomCode: "ZZZZ", PlayerName: "Bob"})

	f := c.next()
	require.Equal(t, internal.EventError, f.Type)
	assert.Equal(t, internal.ErrRoomNotFound.Error(), testutil.Decode[internal.ErrorData](t, f).Text)
}

func TestGateway_MissingRoomSilentForOtherActions(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dial(t, srv)

	c.send(internal.ActionStartGame, internal.RoomCodeData{RoomCode: "ZZZZ"})
	c.send(internal.ActionForceReveal, internal.RoomCodeData{RoomCode: "ZZZZ"})
	c.send(internal.ActionJoinRoom, internal.JoinRoomData{RoomCode: "ZZZZ", PlayerName: "Bob"})

	// The only reply is the join error; the earlier actions were dropped.
	f := c.next()
	require.Equal(t, internal.EventError, f.Type)
	assert.Equal(t, internal.ErrRoomNotFound.Error(), testutil.Decode[internal.ErrorData](t, f).Text)
}

func TestGateway_MalformedFramesAreDropped(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dial(t, srv)

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"join_room","data":42}`)))
	c.send("draw_pixel", map[string]int{"x": 1})

	joined := c.create("Alice")
	assert.True(t, joined.IsHost)
}

func TestGateway_NonHostGetsNotHost(t *testing.T) {
	srv, _ := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	code := host.create("Alice").RoomCode
	guest.join(code, "Bob")

	guest.send(internal.ActionStartGame, internal.RoomCodeData{RoomCode: code})
	f := guest.await(internal.EventError)
	assert.Equal(t, internal.ErrNotHost.Error(), testutil.Decode[internal.ErrorData](t, f).Text)
}

func TestGateway_FullRound(t *testing.T) {
	srv, _ := newTestServer(t)
	host := dial(t, srv)
	code := host.create("Alice").RoomCode

	clients := []*wsClient{host}
	ids := []string{}
	for _, name := range []string{"Bob", "Carol"} {
		c := dial(t, srv)
		ids = append(ids, c.join(code, name).PlayerID)
		clients = append(clients, c)
	}

	host.send(internal.ActionStartGame, internal.RoomCodeData{RoomCode: code})
	spies := 0
	for _, c := range clients {
		start := testutil.Decode[internal.GameStartData](t, c.await(internal.EventGameStart))
		assert.Equal(t, 1, start.Round)
		if start.Role == internal.RoleSpy {
			spies++
			assert.Equal(t, internal.SpyMarker, start.Word)
		}
	}
	assert.Equal(t, 1, spies)

	host.send(internal.ActionStartVoting, internal.RoomCodeData{RoomCode: code})
	for _, c := range clients {
		voting := testutil.Decode[internal.VotingPhaseData](t, c.await(internal.EventVotingPhase))
		assert.Len(t, voting.Players, 3)
	}

	for _, c := range clients {
		c.send(internal.ActionSubmitVote, internal.SubmitVoteData{RoomCode: code, SuspectID: ids[0]})
	}
	for _, c := range clients {
		over := testutil.Decode[internal.GameOverData](t, c.await(internal.EventGameOver))
		assert.Equal(t, 3, over.Votes[ids[0]])
		assert.Len(t, over.Spies, 1)
		assert.Contains(t, []internal.Winner{internal.WinnerSpy, internal.WinnerCivilians}, over.Winner)
	}
}

func TestGateway_DisconnectPassesHost(t *testing.T) {
	srv, reg := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	code := host.create("Alice").RoomCode
	guest.join(code, "Bob")

	require.NoError(t, host.conn.Close())

	guest.await(internal.EventYouAreHost)
	players := testutil.Decode[[]internal.PublicPlayer](t, guest.await(internal.EventUpdatePlayers))
	require.Len(t, players, 1)
	assert.True(t, players[0].IsHost)

	require.NoError(t, guest.conn.Close())
	assert.Eventually(t, func() bool { return reg.Count() == 0 }, 3*time.Second, 10*time.Millisecond)
}

func (c *wsClient) expectError(want error) {
	c.t.Helper()
	f := c.await(internal.EventError)
	assert.Equal(c.t, want.Error(), testutil.Decode[internal.ErrorData](c.t, f).Text)
}

func TestGateway_RejectedMoveKeepsCurrentSeat(t *testing.T) {
	srv, reg := newTestServer(t, game.WithMaxPlayers(3))

	host := dial(t, srv)
	guest := dial(t, srv)
	home := host.create("Alice").RoomCode
	guest.join(home, "Bob")

	other := dial(t, srv)
	full := other.create("Carol").RoomCode
	for _, name := range []string{"Dave", "Erin"} {
		dial(t, srv).join(full, name)
	}

	guest.send(internal.ActionJoinRoom, internal.JoinRoomData{RoomCode: "ZZZZ", PlayerName: "Bob"})
	guest.expectError(internal.ErrRoomNotFound)

	guest.send(internal.ActionJoinRoom, internal.JoinRoomData{RoomCode: full, PlayerName: "Bob"})
	guest.expectError(internal.ErrRoomFull)

	guest.send(internal.ActionJoinRoom, internal.JoinRoomData{RoomCode: full, PlayerName: "   "})
	guest.expectError(internal.ErrInvalidName)

	guest.send(internal.ActionCreateRoom, internal.CreateRoomData{PlayerName: ""})
	guest.expectError(internal.ErrInvalidName)

	info, err := reg.RoomInfo(home)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Players, "failed moves leave the current room untouched")

	// The host keeps host authority after a mistyped code: start_game reaches
	// the roster check instead of failing on NotHost.
	host.send(internal.ActionJoinRoom, internal.JoinRoomData{RoomCode: "ZZZZ", PlayerName: "Alice"})
	host.expectError(internal.ErrRoomNotFound)
	host.send(internal.ActionStartGame, internal.RoomCodeData{RoomCode: home})
	host.expectError(internal.ErrTooFewPlayers)

	info, err = reg.RoomInfo(home)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Players)
}

func TestGateway_JoinMovesBetweenRooms(t *testing.T) {
	srv, reg := newTestServer(t)
	a := dial(t, srv)
	b := dial(t, srv)
	mover := dial(t, srv)

	first := a.create("Alice").RoomCode
	second := b.create("Bob").RoomCode
	mover.join(first, "Carol")
	mover.join(second, "Carol")

	assert.Eventually(t, func() bool {
		info, err := reg.RoomInfo(first)
		return err == nil && info.Players == 1
	}, 3*time.Second, 10*time.Millisecond)
	info, err := reg.RoomInfo(second)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Players)
}

func TestGateway_CreateLeavesPreviousRoom(t *testing.T) {
	srv, reg := newTestServer(t)
	c := dial(t, srv)

	first := c.create("Alice").RoomCode
	second := c.create("Alice").RoomCode

	assert.NotEqual(t, first, second)
	assert.Nil(t, reg.GetRoom(first), "empty previous room is removed")
	assert.NotNil(t, reg.GetRoom(second))
}

func TestClient_FullQueueClosesSession(t *testing.T) {
	c := &client{
		logger: zap.NewNop(),
		send:   make(chan []byte, 1),
		done:   make(chan struct{}),
	}

	require.NoError(t, c.WriteJSON(map[string]int{"n": 1}))
	assert.ErrorIs(t, c.WriteJSON(map[string]int{"n": 2}), ErrSendQueueFull)
	assert.ErrorIs(t, c.WriteJSON(map[string]int{"n": 3}), ErrClientClosed)

	var frame map[string]int
	require.NoError(t, json.Unmarshal(<-c.send, &frame))
	assert.Equal(t, 1, frame["n"])
}

func TestCheckOrigin(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	anyOrigin := checkOrigin([]string{"*"})
	assert.True(t, anyOrigin(req("https://evil.example")))

	strict := checkOrigin([]string{"https://spy.example.com/"})
	assert.True(t, strict(req("https://spy.example.com")))
	assert.True(t, strict(req("")), "non-browser clients are allowed")
	assert.False(t, strict(req("https://evil.example")))
	assert.False(t, strict(req("http://spy.example.com")))
}
