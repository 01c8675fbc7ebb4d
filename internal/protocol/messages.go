package protocol

import (
	"encoding/binary"

	"github.com/tycoon-game/server/internal/board"
)

// ClientMessage is a decoded client-to-server message.
type ClientMessage interface{ isClientMessage() }

// ServerMessage is a decoded server-to-client message.
type ServerMessage interface{ isServerMessage() }

// Client-to-server messages.

type DicerollRequest struct{}

type SetNickname struct{ Nickname string }

type Ready struct{}

type Unready struct{}

type StartGame struct{}

type LeaveGame struct{}

type AnimationDone struct{}

type ChangeColor struct{ Color TeamColor }

type KickPlayer struct{ Target byte }

// JailReply answers a JailCardOffer. UseCard means spend the coupon, or pay
// bail when no coupon is held; false means just roll the dice.
type JailReply struct{ UseCard bool }

type PropertyReply struct{ Purchase bool }

// AuctionReply names the property tile the obligated seller puts up.
type AuctionReply struct{ PropertyIndex byte }

func (DicerollRequest) isClientMessage() {}
func (SetNickname) isClientMessage()     {}
func (Ready) isClientMessage()           {}
func (Unready) isClientMessage()         {}
func (StartGame) isClientMessage()       {}
func (LeaveGame) isClientMessage()       {}
func (AnimationDone) isClientMessage()   {}
func (ChangeColor) isClientMessage()     {}
func (KickPlayer) isClientMessage()      {}
func (JailReply) isClientMessage()       {}
func (PropertyReply) isClientMessage()   {}
func (AuctionReply) isClientMessage()    {}

func (DicerollRequest) Encode() []byte { return []byte{byte(TagDicerollRequest)} }
func (Ready) Encode() []byte           { return []byte{byte(TagReady)} }
func (Unready) Encode() []byte         { return []byte{byte(TagUnready)} }
func (StartGame) Encode() []byte       { return []byte{byte(TagStartGame)} }
func (LeaveGame) Encode() []byte       { return []byte{byte(TagLeaveGame)} }
func (AnimationDone) Encode() []byte   { return []byte{byte(TagAnimationDone)} }

func (m SetNickname) Encode() []byte {
	return appendString([]byte{byte(TagSetNickname)}, m.Nickname)
}

func (m ChangeColor) Encode() []byte {
	return []byte{byte(TagChangeColor), byte(m.Color)}
}

func (m KickPlayer) Encode() []byte {
	return []byte{byte(TagKickPlayer), m.Target}
}

func (m JailReply) Encode() []byte {
	return []byte{byte(TagJailReply), encodeBool(m.UseCard)}
}

func (m PropertyReply) Encode() []byte {
	return []byte{byte(TagPropertyReply), encodeBool(m.Purchase)}
}

func (m AuctionReply) Encode() []byte {
	return []byte{byte(TagAuctionReply), m.PropertyIndex}
}

// Server-to-client messages.

type DiceResult struct {
	PlayerID byte
	Die1     byte
	Die2     byte
}

type TurnChanged struct{ PlayerID byte }

type NicknameChanged struct {
	PlayerID byte
	Nickname string
}

type AssignID struct{ PlayerID byte }

type HostChanged struct{ PlayerID byte }

type PlayerDisconnected struct {
	PlayerID  byte
	Permanent bool
	Reason    DisconnectReason
}

type PlayerConnected struct{ PlayerID byte }

type ReadyChanged struct {
	PlayerID byte
	Ready    bool
}

// MoneyChanged announces a new balance. Increased carries the sign of the
// delta so clients can animate gain versus loss.
type MoneyChanged struct {
	PlayerID  byte
	NewAmount int32
	Increased bool
}

type JailStatus struct {
	PlayerID  byte
	TurnsLeft byte
}

type PositionChanged struct {
	PlayerID byte
	Position byte
	Move     MoveType
}

type GameStarted struct{}

type ColorChanged struct {
	PlayerID byte
	Color    TeamColor
}

// BoardPropertyChanged mirrors one property ledger entry to clients.
type BoardPropertyChanged struct {
	Tile     byte
	Owner    byte
	Level    board.BuildingLevel
	BaseCost int32
	Group    byte
}

type ChanceCardDrawn struct{ Card ChanceCard }

// PropertyOffer asks the current player whether to buy or upgrade the
// property they landed on.
type PropertyOffer struct {
	PlayerID   byte
	Level      board.BuildingLevel
	Rent       int32
	Cost       int32
	Affordable bool
}

// JailCardOffer asks the jailed current player whether to spend a coupon
// (or pay bail) before rolling.
type JailCardOffer struct{ HasCoupon bool }

// AuctionStarted obliges a player to sell a property worth at least Amount.
type AuctionStarted struct {
	PlayerID byte
	Amount   int32
}

type PlayerBankrupt struct{ PlayerID byte }

type GroupMonopolyChanged struct {
	Group    byte
	Monopoly bool
}

type GameOver struct {
	Reason GameOverType
	Winner byte
}

type DoubleRentStatus struct {
	PlayerID byte
	Active   bool
}

type JailCouponStatus struct {
	PlayerID byte
	Active   bool
}

func (DiceResult) isServerMessage()           {}
func (TurnChanged) isServerMessage()          {}
func (NicknameChanged) isServerMessage()      {}
func (AssignID) isServerMessage()             {}
func (HostChanged) isServerMessage()          {}
func (PlayerDisconnected) isServerMessage()   {}
func (PlayerConnected) isServerMessage()      {}
func (ReadyChanged) isServerMessage()         {}
func (MoneyChanged) isServerMessage()         {}
func (JailStatus) isServerMessage()           {}
func (PositionChanged) isServerMessage()      {}
func (GameStarted) isServerMessage()          {}
func (ColorChanged) isServerMessage()         {}
func (BoardPropertyChanged) isServerMessage() {}
func (ChanceCardDrawn) isServerMessage()      {}
func (PropertyOffer) isServerMessage()        {}
func (JailCardOffer) isServerMessage()        {}
func (AuctionStarted) isServerMessage()       {}
func (PlayerBankrupt) isServerMessage()       {}
func (GroupMonopolyChanged) isServerMessage() {}
func (GameOver) isServerMessage()             {}
func (DoubleRentStatus) isServerMessage()     {}
func (JailCouponStatus) isServerMessage()     {}

func (m DiceResult) Encode() []byte {
	return []byte{byte(TagDiceResult), m.PlayerID, m.Die1, m.Die2}
}

func (m TurnChanged) Encode() []byte {
	return []byte{byte(TagTurnChanged), m.PlayerID}
}

func (m NicknameChanged) Encode() []byte {
	return appendString([]byte{byte(TagNicknameChanged), m.PlayerID}, m.Nickname)
}

func (m AssignID) Encode() []byte {
	return []byte{byte(TagAssignID), m.PlayerID}
}

func (m HostChanged) Encode() []byte {
	return []byte{byte(TagHostChanged), m.PlayerID}
}

func (m PlayerDisconnected) Encode() []byte {
	return []byte{byte(TagPlayerDisconnected), m.PlayerID, encodeBool(m.Permanent), byte(m.Reason)}
}

func (m PlayerConnected) Encode() []byte {
	return []byte{byte(TagPlayerConnected), m.PlayerID}
}

func (m ReadyChanged) Encode() []byte {
	return []byte{byte(TagReadyChanged), m.PlayerID, encodeBool(m.Ready)}
}

func (m MoneyChanged) Encode() []byte {
	pkt := []byte{byte(TagMoneyChanged), m.PlayerID}
	pkt = binary.LittleEndian.AppendUint32(pkt, uint32(m.NewAmount))
	return append(pkt, encodeBool(m.Increased))
}

func (m JailStatus) Encode() []byte {
	return []byte{byte(TagJailStatus), m.PlayerID, m.TurnsLeft}
}

func (m PositionChanged) Encode() []byte {
	return []byte{byte(TagPositionChanged), m.PlayerID, m.Position, byte(m.Move)}
}

func (GameStarted) Encode() []byte { return []byte{byte(TagGameStarted)} }

func (m ColorChanged) Encode() []byte {
	return []byte{byte(TagColorChanged), m.PlayerID, byte(m.Color)}
}

func (m BoardPropertyChanged) Encode() []byte {
	pkt := []byte{byte(TagBoardPropertyChanged), m.Tile, m.Owner, byte(m.Level)}
	pkt = binary.LittleEndian.AppendUint32(pkt, uint32(m.BaseCost))
	return append(pkt, m.Group)
}

func (m ChanceCardDrawn) Encode() []byte {
	return []byte{byte(TagChanceCardDrawn), byte(m.Card)}
}

func (m PropertyOffer) Encode() []byte {
	pkt := []byte{byte(TagPropertyOffer), m.PlayerID, byte(m.Level)}
	pkt = binary.LittleEndian.AppendUint32(pkt, uint32(m.Rent))
	pkt = binary.LittleEndian.AppendUint32(pkt, uint32(m.Cost))
	return append(pkt, encodeBool(m.Affordable))
}

func (m JailCardOffer) Encode() []byte {
	return []byte{byte(TagJailCardOffer), encodeBool(m.HasCoupon)}
}

func (m AuctionStarted) Encode() []byte {
	pkt := []byte{byte(TagAuctionStarted), m.PlayerID}
	return binary.LittleEndian.AppendUint32(pkt, uint32(m.Amount))
}

func (m PlayerBankrupt) Encode() []byte {
	return []byte{byte(TagPlayerBankrupt), m.PlayerID}
}

func (m GroupMonopolyChanged) Encode() []byte {
	return []byte{byte(TagGroupMonopolyChanged), m.Group, encodeBool(m.Monopoly)}
}

func (m GameOver) Encode() []byte {
	return []byte{byte(TagGameOver), byte(m.Reason), m.Winner}
}

func (m DoubleRentStatus) Encode() []byte {
	return []byte{byte(TagDoubleRentStatus), m.PlayerID, encodeBool(m.Active)}
}

func (m JailCouponStatus) Encode() []byte {
	return []byte{byte(TagJailCouponStatus), m.PlayerID, encodeBool(m.Active)}
}

func encodeBool(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func appendString(pkt []byte, s string) []byte {
	pkt = binary.LittleEndian.AppendUint32(pkt, uint32(len(s)))
	return append(pkt, s...)
}
