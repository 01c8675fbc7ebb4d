package lobby

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tycoon-game/server/internal/engine"
	"github.com/tycoon-game/server/internal/protocol"
)

// testClient is the far end of a piped connection. A pump goroutine decodes
// server messages into a channel because pipe writes block until read.
type testClient struct {
	conn net.Conn
	msgs chan protocol.ServerMessage
}

func newLobby() *Lobby {
	return New(engine.StandardConfig(), zap.NewNop().Sugar())
}

// join registers a piped client directly, bypassing the tick loop; tests
// drive the lobby synchronously.
func join(t *testing.T, l *Lobby) *testClient {
	t.Helper()

	server, client := net.Pipe()
	tc := &testClient{conn: client, msgs: make(chan protocol.ServerMessage, 64)}
	go func() {
		for {
			msg, err := protocol.ReadServer(client)
			if err != nil {
				close(tc.msgs)
				return
			}
			tc.msgs <- msg
		}
	}()
	t.Cleanup(func() { client.Close() })

	l.accept(server)
	return tc
}

// recv returns the next decoded message or fails the test after a timeout.
func recv(t *testing.T, tc *testClient) protocol.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-tc.msgs:
		require.True(t, ok, "connection closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server message")
		panic("unreachable")
	}
}

// expectClosed drains any buffered messages and asserts the client's stream
// ends.
func expectClosed(t *testing.T, tc *testClient) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-tc.msgs:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for connection close")
		}
	}
}

// drainClient discards everything buffered so far, waiting out in-flight
// pump deliveries.
func drainClient(tc *testClient) {
	for {
		select {
		case <-tc.msgs:
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

func drainInbox(l *Lobby) {
	for {
		select {
		case in := <-l.inbox:
			if in.err != nil {
				l.handleReadError(in.id, in.err)
			} else {
				l.handle(in.id, in.msg)
			}
		default:
			return
		}
	}
}

func TestFirstJoinerBecomesHost(t *testing.T) {
	l := newLobby()
	c := join(t, l)

	assert.Equal(t, protocol.AssignID{PlayerID: 0}, recv(t, c))
	assert.Equal(t, protocol.HostChanged{PlayerID: 0}, recv(t, c))
	assert.Equal(t, protocol.PlayerConnected{PlayerID: 0}, recv(t, c))

	require.NotNil(t, l.hostID)
	assert.Equal(t, byte(0), *l.hostID)
}

func TestJoinerCatchesUpOnExistingPlayers(t *testing.T) {
	l := newLobby()
	c0 := join(t, l)
	recv(t, c0) // assign id
	recv(t, c0) // host
	recv(t, c0) // connected

	l.handle(0, protocol.SetNickname{Nickname: "Alice"})
	l.handle(0, protocol.Ready{})
	recv(t, c0) // nickname
	recv(t, c0) // ready

	c1 := join(t, l)

	assert.Equal(t, protocol.AssignID{PlayerID: 1}, recv(t, c1))
	assert.Equal(t, protocol.PlayerConnected{PlayerID: 1}, recv(t, c1))
	assert.Equal(t, protocol.PlayerConnected{PlayerID: 0}, recv(t, c1))
	assert.Equal(t, protocol.NicknameChanged{PlayerID: 0, Nickname: "Alice"}, recv(t, c1))
	assert.Equal(t, protocol.ReadyChanged{PlayerID: 0, Ready: true}, recv(t, c1))
	assert.Equal(t, protocol.ColorChanged{PlayerID: 0, Color: 0}, recv(t, c1))
	assert.Equal(t, protocol.HostChanged{PlayerID: 0}, recv(t, c1))

	// The existing player only hears about the newcomer.
	assert.Equal(t, protocol.PlayerConnected{PlayerID: 1}, recv(t, c0))
}

func TestLobbyFullRejectsJoin(t *testing.T) {
	l := newLobby()
	for i := 0; i < l.cfg.MaxPlayers; i++ {
		join(t, l)
	}

	extra := join(t, l)
	expectClosed(t, extra)
	assert.Len(t, l.clients, l.cfg.MaxPlayers)
}

func TestFreedIDIsReassigned(t *testing.T) {
	l := newLobby()
	join(t, l)
	join(t, l)

	l.disconnect(0, protocol.ReasonLeft)
	join(t, l)

	assert.Contains(t, l.clients, byte(0))
	assert.Contains(t, l.clients, byte(1))
}

func TestNicknameRejectedWhileReady(t *testing.T) {
	l := newLobby()
	join(t, l)

	l.handle(0, protocol.Ready{})
	l.handle(0, protocol.SetNickname{Nickname: "TooLate"})

	assert.Equal(t, defaultNickname, l.clients[0].nickname)
}

func TestNicknameTruncated(t *testing.T) {
	l := newLobby()
	join(t, l)

	l.handle(0, protocol.SetNickname{Nickname: strings.Repeat("a", 30)})
	assert.Equal(t, strings.Repeat("a", 15), l.clients[0].nickname)

	// Truncation counts runes, not bytes.
	l.handle(0, protocol.SetNickname{Nickname: strings.Repeat("ä", 20)})
	assert.Equal(t, strings.Repeat("ä", 15), l.clients[0].nickname)
}

func TestHostMigratesOnDisconnect(t *testing.T) {
	l := newLobby()
	c0 := join(t, l)
	c1 := join(t, l)
	drainClient(c0)
	drainClient(c1)

	l.disconnect(0, protocol.ReasonLeft)

	assert.Equal(t, protocol.HostChanged{PlayerID: 1}, recv(t, c1))
	assert.Equal(t, protocol.PlayerDisconnected{
		PlayerID:  0,
		Permanent: true,
		Reason:    protocol.ReasonLeft,
	}, recv(t, c1))

	require.NotNil(t, l.hostID)
	assert.Equal(t, byte(1), *l.hostID)
	assert.True(t, l.clients[1].host)
}

func TestLastLeaverClearsHost(t *testing.T) {
	l := newLobby()
	join(t, l)

	l.disconnect(0, protocol.ReasonLeft)

	assert.Nil(t, l.hostID)
	assert.Empty(t, l.clients)
}

func TestKickRequiresHost(t *testing.T) {
	l := newLobby()
	join(t, l)
	c1 := join(t, l)

	// Player 1 is not the host; the kick is ignored.
	l.handle(1, protocol.KickPlayer{Target: 0})
	assert.Contains(t, l.clients, byte(0))

	// The host's kick goes through.
	l.handle(0, protocol.KickPlayer{Target: 1})
	assert.NotContains(t, l.clients, byte(1))
	expectClosed(t, c1)
}

func TestStartGameRequiresHostAndReadiness(t *testing.T) {
	l := newLobby()
	c0 := join(t, l)
	c1 := join(t, l)
	drainClient(c0)
	drainClient(c1)

	// Non-host cannot start.
	l.handle(1, protocol.StartGame{})
	assert.Nil(t, l.game)

	// The non-host is not ready yet.
	l.handle(0, protocol.StartGame{})
	assert.Nil(t, l.game)

	l.handle(1, protocol.Ready{})
	recv(t, c0) // ready broadcast
	recv(t, c1)

	l.handle(0, protocol.StartGame{})
	require.NotNil(t, l.game)

	assert.Equal(t, protocol.GameStarted{}, recv(t, c0))
	assert.Equal(t, protocol.GameStarted{}, recv(t, c1))

	// A second start is ignored while a game runs.
	game := l.game
	l.handle(0, protocol.StartGame{})
	assert.Same(t, game, l.game)
}

func TestLeaveGameDisconnects(t *testing.T) {
	l := newLobby()
	c0 := join(t, l)

	// The reader goroutine feeds the inbox; pumping it through handle
	// exercises the same path the tick loop takes.
	_, err := c0.conn.Write(protocol.LeaveGame{}.Encode())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(l.inbox) > 0 }, time.Second, time.Millisecond)
	drainInbox(l)

	assert.Empty(t, l.clients)
}

func TestGameInputForwarded(t *testing.T) {
	l := newLobby()
	c0 := join(t, l)
	c1 := join(t, l)
	l.handle(1, protocol.Ready{})
	l.handle(0, protocol.StartGame{})
	require.NotNil(t, l.game)
	drainClient(c0)
	drainClient(c1)

	l.handle(0, protocol.AnimationDone{})
	l.handle(1, protocol.AnimationDone{})
	assert.True(t, l.game.Players[0].AnimationDone)
	assert.True(t, l.game.Players[1].AnimationDone)

	l.handle(1, protocol.PropertyReply{Purchase: true})
	require.NotNil(t, l.game.Players[1].ReplyProperty)
	assert.True(t, *l.game.Players[1].ReplyProperty)
}

func TestGameEndedResetsReadiness(t *testing.T) {
	l := newLobby()
	join(t, l)
	join(t, l)
	l.handle(1, protocol.Ready{})
	l.handle(0, protocol.StartGame{})
	require.NotNil(t, l.game)

	l.GameEnded()

	assert.Nil(t, l.game)
	assert.False(t, l.clients[1].ready)
}

func TestBadTagDisconnectsOnlySender(t *testing.T) {
	l := newLobby()
	c0 := join(t, l)
	c1 := join(t, l)
	drainClient(c0)
	drainClient(c1)

	// A tag outside the enumeration leaves the stream position unknown, so
	// that session is dropped; nobody else is affected.
	_, err := c0.conn.Write([]byte{0xEE})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(l.inbox) > 0 }, time.Second, time.Millisecond)
	drainInbox(l)

	assert.NotContains(t, l.clients, byte(0))
	assert.Contains(t, l.clients, byte(1))
	expectClosed(t, c0)

	assert.Equal(t, protocol.HostChanged{PlayerID: 1}, recv(t, c1))
	assert.Equal(t, protocol.PlayerDisconnected{
		PlayerID:  0,
		Permanent: true,
		Reason:    protocol.ReasonLostConnection,
	}, recv(t, c1))
}

func TestReaderExitsOnShutdownWithFullInbox(t *testing.T) {
	l := newLobby()
	server, client := net.Pipe()
	defer client.Close()
	l.clients[0] = &session{conn: server, nickname: defaultNickname}

	exited := make(chan struct{})
	go func() {
		l.readLoop(0, server)
		close(exited)
	}()

	// Nobody drains the inbox after shutdown; the reader must not block on
	// its final send.
	for i := 0; i < cap(l.inbox); i++ {
		l.inbox <- inbound{}
	}
	require.NoError(t, l.shutdown())

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("reader goroutine still running after shutdown")
	}
}

func TestDisconnectRemovesFromRunningGame(t *testing.T) {
	l := newLobby()
	join(t, l)
	join(t, l)
	l.handle(1, protocol.Ready{})
	l.handle(0, protocol.StartGame{})
	require.NotNil(t, l.game)

	l.disconnect(1, protocol.ReasonLostConnection)

	assert.NotContains(t, l.game.Players, byte(1))
}
