package engine

// Player is the in-game state of one participant. The three Reply fields
// are mailboxes: the lobby fills them from inbound packets at any point of
// the tick, and the state machine consumes them when it reaches the
// matching waiting state. A nil mailbox means no reply yet.
type Player struct {
	Money              int
	Position           byte
	JailTurns          byte
	ConsecutiveDoubles byte

	HasJailCoupon bool
	HasDoubleRent bool
	Bankrupt      bool
	AnimationDone bool

	ReplyProperty *bool
	ReplyJail     *bool
	ReplyAuction  *byte
}
