package lobby

import (
	"net"

	"github.com/tycoon-game/server/internal/protocol"
)

// defaultNickname is the placeholder name until a client sets its own.
const defaultNickname = "Nickname"

// maxNicknameRunes caps nickname length; longer names are truncated.
const maxNicknameRunes = 15

// session is one connected client and its lobby-visible state.
type session struct {
	conn     net.Conn
	nickname string
	color    protocol.TeamColor
	ready    bool
	host     bool
}

// inbound is one event from a session's reader goroutine: either a decoded
// message or the error that ended the connection.
type inbound struct {
	id  byte
	msg protocol.ClientMessage
	err error
}

// readLoop decodes messages off the connection into the lobby inbox until
// the stream breaks. Decoding blocks until each message is complete, so
// framing stays intact across partial reads; any decode error is fatal to
// the connection, because the stream position is unknown afterwards.
// Sends race against lobby shutdown, after which nobody drains the inbox.
func (l *Lobby) readLoop(id byte, conn net.Conn) {
	for {
		msg, err := protocol.ReadClient(conn)
		if err != nil {
			select {
			case l.inbox <- inbound{id: id, err: err}:
			case <-l.done:
			}
			return
		}
		select {
		case l.inbox <- inbound{id: id, msg: msg}:
		case <-l.done:
			return
		}
	}
}
