// Package protocol defines the binary wire format spoken between the server
// and its clients. Every message starts with a one-byte tag; the tag alone
// determines the layout of the rest of the payload. Integers are
// little-endian, booleans are a single 0/1 byte, and strings carry a 4-byte
// length prefix followed by UTF-8 bytes.
//
// Tag values are load-bearing: client and server must share the identical
// enumeration, so they are never renumbered.
package protocol

// ClientTag identifies a client-to-server message.
type ClientTag byte

const (
	TagDicerollRequest ClientTag = 1
	TagSetNickname     ClientTag = 3
	TagReady           ClientTag = 5
	TagUnready         ClientTag = 7
	TagStartGame       ClientTag = 9
	TagLeaveGame       ClientTag = 11
	TagAnimationDone   ClientTag = 13
	TagChangeColor     ClientTag = 15
	TagKickPlayer      ClientTag = 17
	TagJailReply       ClientTag = 19
	TagPropertyReply   ClientTag = 21
	TagAuctionReply    ClientTag = 23
)

// ServerTag identifies a server-to-client message.
type ServerTag byte

const (
	TagDiceResult           ServerTag = 2
	TagTurnChanged          ServerTag = 4
	TagNicknameChanged      ServerTag = 6
	TagAssignID             ServerTag = 8
	TagHostChanged          ServerTag = 10
	TagPlayerDisconnected   ServerTag = 12
	TagPlayerConnected      ServerTag = 14
	TagReadyChanged         ServerTag = 16
	TagMoneyChanged         ServerTag = 18
	TagJailStatus           ServerTag = 20
	TagPositionChanged      ServerTag = 22
	TagGameStarted          ServerTag = 24
	TagColorChanged         ServerTag = 26
	TagBoardPropertyChanged ServerTag = 28
	TagChanceCardDrawn      ServerTag = 30
	TagPropertyOffer        ServerTag = 32
	TagJailCardOffer        ServerTag = 34
	TagAuctionStarted       ServerTag = 36
	TagPlayerBankrupt       ServerTag = 38
	TagGroupMonopolyChanged ServerTag = 40
	TagGameOver             ServerTag = 42
	TagDoubleRentStatus     ServerTag = 44
	TagJailCouponStatus     ServerTag = 46
)

// TeamColor is the avatar color a player picked in the lobby.
type TeamColor byte

const (
	ColorYellow TeamColor = iota
	ColorRed
	ColorGreen
	ColorBlue
)

// MoveType tells clients how to animate a position change.
type MoveType byte

const (
	// MoveWalk steps the avatar one tile at a time.
	MoveWalk MoveType = iota
	// MoveDirect teleports the avatar straight to the destination.
	MoveDirect
)

// DisconnectReason explains why a player left.
type DisconnectReason byte

const (
	ReasonLostConnection DisconnectReason = 1
	ReasonLeft           DisconnectReason = 2
	ReasonKicked         DisconnectReason = 3
)

// ChanceCard enumerates the deck drawn from on a chance tile.
type ChanceCard byte

const (
	CardMoneyAdd ChanceCard = iota
	CardTrainCoupon
	CardJailCoupon
	CardGo
	CardGotoJail
	CardMoneyDeduct
	CardDoubleRentCoupon
	CardForceAuction
	CardMoveFourBack
	CardBlank

	chanceCardCount
)

// ChanceCardCount is the number of distinct chance cards.
const ChanceCardCount = int(chanceCardCount)

// GameOverType is the way a game can end.
type GameOverType byte

const (
	GameOverMonopoly GameOverType = iota
	GameOverTime
	GameOverHostEnded
)
