// Package lobby hosts the session registry and the per-lobby tick loop: it
// accepts connections, assigns player IDs, routes decoded packets to either
// the pre-game lobby handling or the running game engine, and broadcasts
// every state change back out in emission order.
package lobby

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tycoon-game/server/internal/engine"
	"github.com/tycoon-game/server/internal/protocol"
)

// tickInterval is the fixed cadence of the drain/advance/flush cycle.
const tickInterval = time.Second / 30

// Lobby is a single game lobby: at most one running game over the current
// participant set. All state is owned by the Run goroutine; other
// goroutines reach it only through the join and inbox channels.
type Lobby struct {
	cfg engine.Config
	log *zap.SugaredLogger

	clients map[byte]*session
	hostID  *byte
	game    *engine.Game

	joinCh chan net.Conn
	inbox  chan inbound
	done   chan struct{}
}

// New creates an empty lobby. The config is immutable for the lobby's
// lifetime and is handed to every game it starts.
func New(cfg engine.Config, log *zap.SugaredLogger) *Lobby {
	return &Lobby{
		cfg:     cfg,
		log:     log,
		clients: make(map[byte]*session),
		joinCh:  make(chan net.Conn, 8),
		inbox:   make(chan inbound, 256),
		done:    make(chan struct{}),
	}
}

// Join hands a new connection to the lobby. Safe to call from any
// goroutine; registration happens on the tick loop.
func (l *Lobby) Join(conn net.Conn) {
	l.joinCh <- conn
}

// Serve accepts connections from ln and joins them until ctx is cancelled.
func (l *Lobby) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	l.log.Infow("listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		l.Join(conn)
	}
}

// Run drives the lobby at the fixed tick rate until ctx is cancelled. Each
// tick drains pending joins and inbound messages, advances the game one
// step, and flushes whatever those steps broadcast. Ticks are anchored to
// the monotonic clock and are not replayed after a slow tick.
func (l *Lobby) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return l.shutdown()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			l.tick(dt)
		}
	}
}

func (l *Lobby) tick(dt float64) {
	for {
		select {
		case conn := <-l.joinCh:
			l.accept(conn)
			continue
		case in := <-l.inbox:
			if in.err != nil {
				l.handleReadError(in.id, in.err)
			} else {
				l.handle(in.id, in.msg)
			}
			continue
		default:
		}
		break
	}

	if l.game != nil {
		l.game.Update(dt)
	}
}

// accept registers a connection, assigns the lowest unused ID and replays
// the current world state to the joiner so its view converges with
// everyone else's.
func (l *Lobby) accept(conn net.Conn) {
	if len(l.clients) >= l.cfg.MaxPlayers {
		l.log.Infow("lobby full, rejecting connection", "remote", conn.RemoteAddr())
		_ = conn.Close()
		return
	}

	id, ok := l.lowestFreeID()
	if !ok {
		_ = conn.Close()
		return
	}

	s := &session{
		conn:     conn,
		nickname: defaultNickname,
	}
	l.clients[id] = s

	l.log.Infow("client connected", "remote", conn.RemoteAddr(), "id", id)

	l.sendTo(id, protocol.AssignID{PlayerID: id}.Encode())

	migrated := false
	if l.hostID == nil {
		l.migrateHost(id)
		migrated = true
	}

	l.Broadcast(protocol.PlayerConnected{PlayerID: id}.Encode())

	// Catch-up replay: the joiner learns about every existing player.
	for otherID, other := range l.clients {
		if otherID == id {
			continue
		}
		l.sendTo(id, protocol.PlayerConnected{PlayerID: otherID}.Encode())
		l.sendTo(id, protocol.NicknameChanged{PlayerID: otherID, Nickname: other.nickname}.Encode())
		l.sendTo(id, protocol.ReadyChanged{PlayerID: otherID, Ready: other.ready}.Encode())
		l.sendTo(id, protocol.ColorChanged{PlayerID: otherID, Color: other.color}.Encode())
	}

	// The joiner learns who the host is last; skip when the migration
	// broadcast above already told them.
	if !migrated && l.hostID != nil {
		l.sendTo(id, protocol.HostChanged{PlayerID: *l.hostID}.Encode())
	}

	go l.readLoop(id, conn)
}

func (l *Lobby) lowestFreeID() (byte, bool) {
	for i := 0; i < 256; i++ {
		if _, taken := l.clients[byte(i)]; !taken {
			return byte(i), true
		}
	}
	return 0, false
}

func (l *Lobby) handleReadError(id byte, err error) {
	if _, ok := l.clients[id]; !ok {
		// Already disconnected; the reader noticed the closed socket.
		return
	}
	if errors.Is(err, protocol.ErrUnknownTag) {
		l.log.Warnw("protocol violation, dropping client", "id", id, "err", err)
	}
	l.disconnect(id, protocol.ReasonLostConnection)
}

func (l *Lobby) handle(id byte, msg protocol.ClientMessage) {
	s, ok := l.clients[id]
	if !ok {
		return
	}

	switch m := msg.(type) {
	case protocol.DicerollRequest:
		if l.game != nil {
			l.game.RequestDice(id)
		}

	case protocol.SetNickname:
		if s.ready {
			// Names are committed once ready; a late change could spoof
			// what others already agreed to.
			l.log.Debugw("nickname change ignored, player is ready", "id", id)
			return
		}
		nickname := truncateRunes(m.Nickname, maxNicknameRunes)
		s.nickname = nickname
		l.log.Debugw("nickname changed", "id", id, "nickname", nickname)
		l.Broadcast(protocol.NicknameChanged{PlayerID: id, Nickname: nickname}.Encode())

	case protocol.Ready:
		s.ready = true
		l.Broadcast(protocol.ReadyChanged{PlayerID: id, Ready: true}.Encode())

	case protocol.Unready:
		s.ready = false
		l.Broadcast(protocol.ReadyChanged{PlayerID: id, Ready: false}.Encode())

	case protocol.StartGame:
		l.startGame(id)

	case protocol.LeaveGame:
		l.disconnect(id, protocol.ReasonLeft)

	case protocol.AnimationDone:
		if l.game != nil {
			l.game.SetAnimationDone(id)
		}

	case protocol.ChangeColor:
		s.color = m.Color
		l.Broadcast(protocol.ColorChanged{PlayerID: id, Color: m.Color}.Encode())

	case protocol.KickPlayer:
		if l.hostID == nil || *l.hostID != id {
			return
		}
		l.disconnect(m.Target, protocol.ReasonKicked)

	case protocol.JailReply:
		if l.game != nil {
			l.game.SetJailReply(id, m.UseCard)
		}

	case protocol.PropertyReply:
		if l.game != nil {
			l.game.SetPropertyReply(id, m.Purchase)
		}

	case protocol.AuctionReply:
		if l.game != nil {
			l.game.SetAuctionReply(id, m.PropertyIndex)
		}
	}
}

// startGame instantiates the engine over the current participant set. Only
// the host may start, only once, and only when every non-host is ready.
func (l *Lobby) startGame(id byte) {
	s := l.clients[id]
	if s == nil || !s.host || l.game != nil {
		return
	}

	for _, other := range l.clients {
		if !other.ready && !other.host {
			l.log.Debugw("start rejected, players not ready")
			return
		}
	}

	ids := l.joinOrderedIDs()
	l.game = engine.New(l.cfg, ids, l, l.log)
	l.log.Infow("game starting", "players", len(ids))
	l.Broadcast(protocol.GameStarted{}.Encode())
}

// joinOrderedIDs returns player IDs sorted ascending. IDs are dense and
// assigned lowest-first, so this doubles as join order for any set that
// hasn't churned.
func (l *Lobby) joinOrderedIDs() []byte {
	ids := make([]byte, 0, len(l.clients))
	for i := 0; i < 256; i++ {
		if _, ok := l.clients[byte(i)]; ok {
			ids = append(ids, byte(i))
		}
	}
	return ids
}

// disconnect removes a session permanently: the socket closes, the game
// (when active) forgets the player, the host migrates when needed, and
// everyone remaining is told.
func (l *Lobby) disconnect(id byte, reason protocol.DisconnectReason) {
	s, ok := l.clients[id]
	if !ok {
		return
	}

	l.log.Infow("client disconnected", "id", id, "reason", reason)

	_ = s.conn.Close()
	delete(l.clients, id)

	if l.game != nil {
		l.game.RemovePlayer(id)
	}

	if len(l.clients) == 0 {
		l.hostID = nil
		return
	}

	if l.hostID != nil && *l.hostID == id {
		next := l.joinOrderedIDs()[0]
		l.migrateHost(next)
	}

	l.Broadcast(protocol.PlayerDisconnected{
		PlayerID:  id,
		Permanent: true,
		Reason:    reason,
	}.Encode())
}

func (l *Lobby) migrateHost(id byte) {
	s, ok := l.clients[id]
	if !ok {
		return
	}
	s.host = true
	host := id
	l.hostID = &host

	l.log.Infow("host migrated", "id", id)
	l.Broadcast(protocol.HostChanged{PlayerID: id}.Encode())
}

// Broadcast writes one packet to every connected session in order. A write
// failure disconnects that recipient and never aborts delivery to the
// rest.
func (l *Lobby) Broadcast(pkt []byte) {
	for _, id := range l.joinOrderedIDs() {
		l.sendTo(id, pkt)
	}
}

// GameEnded drops the finished game; the lobby is ready for another round.
func (l *Lobby) GameEnded() {
	l.game = nil
	for _, s := range l.clients {
		s.ready = false
	}
}

func (l *Lobby) sendTo(id byte, pkt []byte) {
	s, ok := l.clients[id]
	if !ok {
		return
	}
	if _, err := s.conn.Write(pkt); err != nil {
		l.log.Warnw("write failed, dropping client", "id", id, "err", err)
		l.disconnect(id, protocol.ReasonLostConnection)
	}
}

func (l *Lobby) shutdown() error {
	select {
	case <-l.done:
	default:
		close(l.done)
	}

	var err error
	for id, s := range l.clients {
		err = multierr.Append(err, s.conn.Close())
		delete(l.clients, id)
	}
	l.hostID = nil
	l.game = nil
	return err
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
