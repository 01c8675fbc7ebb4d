package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tycoon-game/server/internal/board"
)

// ErrUnknownTag is returned when a tag byte matches no known message. The
// stream position is unrecoverable after it, so callers must drop the
// connection.
var ErrUnknownTag = errors.New("protocol: unknown message tag")

// maxStringLen bounds length-prefixed strings so a garbled prefix cannot
// force an unbounded allocation.
const maxStringLen = 1 << 16

// ReadClient reads exactly one client-to-server message from r. It blocks
// until the full fixed width of the message is available; a stream that ends
// mid-message yields an error, never a zero-filled message.
func ReadClient(r io.Reader) (ClientMessage, error) {
	tag, err := readByte(r)
	if err != nil {
		return nil, err
	}

	switch ClientTag(tag) {
	case TagDicerollRequest:
		return DicerollRequest{}, nil
	case TagSetNickname:
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		return SetNickname{Nickname: name}, nil
	case TagReady:
		return Ready{}, nil
	case TagUnready:
		return Unready{}, nil
	case TagStartGame:
		return StartGame{}, nil
	case TagLeaveGame:
		return LeaveGame{}, nil
	case TagAnimationDone:
		return AnimationDone{}, nil
	case TagChangeColor:
		c, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return ChangeColor{Color: TeamColor(c)}, nil
	case TagKickPlayer:
		target, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return KickPlayer{Target: target}, nil
	case TagJailReply:
		use, err := readBool(r)
		if err != nil {
			return nil, err
		}
		return JailReply{UseCard: use}, nil
	case TagPropertyReply:
		buy, err := readBool(r)
		if err != nil {
			return nil, err
		}
		return PropertyReply{Purchase: buy}, nil
	case TagAuctionReply:
		idx, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return AuctionReply{PropertyIndex: idx}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, tag)
	}
}

// ReadServer reads exactly one server-to-client message from r. It is the
// client-side counterpart of ReadClient and follows the same framing rules.
func ReadServer(r io.Reader) (ServerMessage, error) {
	tag, err := readByte(r)
	if err != nil {
		return nil, err
	}

	switch ServerTag(tag) {
	case TagDiceResult:
		var buf [3]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return DiceResult{PlayerID: buf[0], Die1: buf[1], Die2: buf[2]}, nil
	case TagTurnChanged:
		id, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return TurnChanged{PlayerID: id}, nil
	case TagNicknameChanged:
		id, err := readByte(r)
		if err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		return NicknameChanged{PlayerID: id, Nickname: name}, nil
	case TagAssignID:
		id, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return AssignID{PlayerID: id}, nil
	case TagHostChanged:
		id, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return HostChanged{PlayerID: id}, nil
	case TagPlayerDisconnected:
		var buf [3]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return PlayerDisconnected{
			PlayerID:  buf[0],
			Permanent: buf[1] == 1,
			Reason:    DisconnectReason(buf[2]),
		}, nil
	case TagPlayerConnected:
		id, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return PlayerConnected{PlayerID: id}, nil
	case TagReadyChanged:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return ReadyChanged{PlayerID: buf[0], Ready: buf[1] == 1}, nil
	case TagMoneyChanged:
		var buf [6]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return MoneyChanged{
			PlayerID:  buf[0],
			NewAmount: int32(binary.LittleEndian.Uint32(buf[1:5])),
			Increased: buf[5] == 1,
		}, nil
	case TagJailStatus:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return JailStatus{PlayerID: buf[0], TurnsLeft: buf[1]}, nil
	case TagPositionChanged:
		var buf [3]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return PositionChanged{PlayerID: buf[0], Position: buf[1], Move: MoveType(buf[2])}, nil
	case TagGameStarted:
		return GameStarted{}, nil
	case TagColorChanged:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return ColorChanged{PlayerID: buf[0], Color: TeamColor(buf[1])}, nil
	case TagBoardPropertyChanged:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return BoardPropertyChanged{
			Tile:     buf[0],
			Owner:    buf[1],
			Level:    board.BuildingLevel(buf[2]),
			BaseCost: int32(binary.LittleEndian.Uint32(buf[3:7])),
			Group:    buf[7],
		}, nil
	case TagChanceCardDrawn:
		card, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return ChanceCardDrawn{Card: ChanceCard(card)}, nil
	case TagPropertyOffer:
		var buf [11]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return PropertyOffer{
			PlayerID:   buf[0],
			Level:      board.BuildingLevel(buf[1]),
			Rent:       int32(binary.LittleEndian.Uint32(buf[2:6])),
			Cost:       int32(binary.LittleEndian.Uint32(buf[6:10])),
			Affordable: buf[10] == 1,
		}, nil
	case TagJailCardOffer:
		has, err := readBool(r)
		if err != nil {
			return nil, err
		}
		return JailCardOffer{HasCoupon: has}, nil
	case TagAuctionStarted:
		var buf [5]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return AuctionStarted{
			PlayerID: buf[0],
			Amount:   int32(binary.LittleEndian.Uint32(buf[1:5])),
		}, nil
	case TagPlayerBankrupt:
		id, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return PlayerBankrupt{PlayerID: id}, nil
	case TagGroupMonopolyChanged:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return GroupMonopolyChanged{Group: buf[0], Monopoly: buf[1] == 1}, nil
	case TagGameOver:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return GameOver{Reason: GameOverType(buf[0]), Winner: buf[1]}, nil
	case TagDoubleRentStatus:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return DoubleRentStatus{PlayerID: buf[0], Active: buf[1] == 1}, nil
	case TagJailCouponStatus:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return JailCouponStatus{PlayerID: buf[0], Active: buf[1] == 1}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, tag)
	}
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readBool(r io.Reader) (bool, error) {
	b, err := readByte(r)
	return b == 1, err
}

func readString(r io.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxStringLen {
		return "", fmt.Errorf("protocol: string length %d exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
