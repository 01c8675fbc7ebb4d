// Package engine implements the authoritative turn state machine of a
// running game: dice resolution, movement, tile effects, auctions,
// bankruptcy and the win condition. It never touches the network directly;
// outbound packets are queued and flushed in emission order through the
// injected Outbound, and inbound player input arrives through the setter
// methods the lobby calls from its tick loop. Everything here runs on that
// single tick goroutine.
package engine

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/tycoon-game/server/internal/board"
	"github.com/tycoon-game/server/internal/protocol"
)

// Outbound is the lobby-facing side of the engine. Broadcast delivers one
// encoded packet to every connected session; GameEnded tells the lobby to
// drop the game instance.
type Outbound interface {
	Broadcast(pkt []byte)
	GameEnded()
}

type gameState byte

const (
	stateWaitingForChoice gameState = iota
	stateWaitingForDice
	stateDiceThrown
	stateWaitingForAnimation
	stateNextTurn
)

type playerChoice byte

const (
	choiceProperty playerChoice = iota
	choiceJail
	choiceAuction
)

const (
	// initialAnimationBudget covers client scene loading before the first
	// turn; turnAnimationBudget is re-armed every turn. Both exist so one
	// unresponsive client can never stall the game forever.
	initialAnimationBudget = 8.0
	turnAnimationBudget    = 5.0
)

// Game is one running game instance. Not safe for concurrent use; the
// owning lobby serializes every call onto its tick goroutine.
type Game struct {
	Board   *board.Board
	Players map[byte]*Player

	cfg Config
	out Outbound
	log *zap.SugaredLogger

	// states is a deque of pending machine states. A step may both re-queue
	// itself at the front (keep waiting) and schedule a successor at the
	// back, which a single state variable cannot express.
	states      []gameState
	prevState   gameState
	justChanged bool
	choice      playerChoice

	queue [][]byte

	order      []byte // join order, drives turn rotation
	current    byte
	dice       [2]byte
	extraTurn  bool
	turnCount  int
	timeBudget float64

	consideredTile byte
	auctionAmount  int
	finished       bool

	// roll and draw are swappable so tests can script dice and cards.
	roll func() (byte, byte)
	draw func() protocol.ChanceCard
}

// New creates a game over the given participant set. IDs keep their join
// order for turn rotation.
func New(cfg Config, playerIDs []byte, out Outbound, log *zap.SugaredLogger) *Game {
	g := &Game{
		Board:      board.GenerateStandard(),
		Players:    make(map[byte]*Player, len(playerIDs)),
		cfg:        cfg,
		out:        out,
		log:        log,
		states:     []gameState{stateWaitingForAnimation},
		prevState:  stateWaitingForAnimation,
		turnCount:  -1,
		timeBudget: initialAnimationBudget,
	}
	g.order = append(g.order, playerIDs...)
	for _, id := range playerIDs {
		g.Players[id] = &Player{}
	}
	if len(g.order) > 0 {
		// The first NextTurn rotates forward, so starting on the last
		// participant gives the first turn to the first joiner.
		g.current = g.order[len(g.order)-1]
	}
	g.roll = func() (byte, byte) {
		return byte(rand.Intn(6) + 1), byte(rand.Intn(6) + 1)
	}
	g.draw = func() protocol.ChanceCard {
		return protocol.ChanceCard(rand.Intn(protocol.ChanceCardCount))
	}
	return g
}

// Finished reports whether the game has ended.
func (g *Game) Finished() bool { return g.finished }

// Current returns the ID of the player whose turn it is.
func (g *Game) Current() byte { return g.current }

// Update advances the state machine by one step. dt is the elapsed time
// since the previous tick, in seconds.
func (g *Game) Update(dt float64) {
	if g.finished || len(g.order) == 0 {
		return
	}
	if g.timeBudget > 0 {
		g.timeBudget = math.Max(0, g.timeBudget-dt)
	}

	state := g.popFront()
	g.justChanged = state != g.prevState
	g.prevState = state

	switch state {
	case stateWaitingForChoice:
		g.updateWaitingForChoice()
	case stateWaitingForAnimation:
		g.updateWaitingForAnimation()
	case stateWaitingForDice:
		g.updateWaitingForDice()
	case stateDiceThrown:
		g.updateDiceThrown()
	case stateNextTurn:
		g.updateNextTurn()
	}

	if len(g.states) == 0 && !g.finished {
		g.log.Errorw("state queue drained unexpectedly", "turn", g.turnCount)
		g.pushBack(stateNextTurn)
	}
}

func (g *Game) updateWaitingForAnimation() {
	allDone := true
	for _, p := range g.Players {
		if !p.AnimationDone {
			allDone = false
			break
		}
	}

	if !allDone && g.timeBudget > 0 {
		g.pushFront(stateWaitingForAnimation)
		return
	}

	if g.turnCount == -1 {
		// First pass of the whole game: clients have loaded, so mirror the
		// board and hand out starting balances before the first turn.
		g.log.Infow("game started", "players", len(g.order))
		g.syncBoard()
		for _, id := range g.order {
			g.addMoney(id, g.cfg.StartMoney)
		}
		g.pushFront(stateNextTurn)
	}

	g.sync()
	g.clearAnimationDone()
}

func (g *Game) updateWaitingForDice() {
	if g.justChanged {
		g.log.Debugw("waiting for dice throw", "player", g.current)
	}

	if g.timeBudget <= 0 {
		// Current player never asked; roll for them rather than stall
		// everyone.
		d1, d2 := g.roll()
		g.throwDice(g.current, d1, d2)
	}

	if g.dice[0] != 0 {
		g.pushBack(stateDiceThrown)
		return
	}
	g.pushFront(stateWaitingForDice)
}

func (g *Game) updateDiceThrown() {
	g.pushFront(stateWaitingForAnimation)

	p := g.Players[g.current]
	if p == nil {
		g.pushBack(stateNextTurn)
		return
	}

	g.log.Debugw("dice thrown", "player", g.current, "die1", g.dice[0], "die2", g.dice[1])

	g.extraTurn = false
	sum := g.dice[0] + g.dice[1]
	double := g.dice[0] == g.dice[1]
	wasJailed := p.JailTurns > 0

	if double {
		if wasJailed {
			// A double breaks the player out immediately; the roll still
			// moves them but grants no extra turn.
			g.setJailTurns(g.current, 0)
			p.ConsecutiveDoubles = 0
		} else {
			p.ConsecutiveDoubles++
			if p.ConsecutiveDoubles >= 3 {
				p.ConsecutiveDoubles = 0
				g.sendToJail(g.current)
				g.sync()
				g.pushBack(stateNextTurn)
				return
			}
			g.extraTurn = true
		}
	} else {
		p.ConsecutiveDoubles = 0
		if wasJailed {
			g.log.Debugw("serving jail turn", "player", g.current, "left", p.JailTurns-1)
			g.setJailTurns(g.current, p.JailTurns-1)
			g.sync()
			g.pushBack(stateNextTurn)
			return
		}
	}

	if int(p.Position)+int(sum) >= board.Size {
		g.addMoney(g.current, g.cfg.PassGoReward)
	}

	g.updatePosition(g.current, (p.Position+sum)%board.Size, protocol.MoveWalk)
	g.sync()

	g.handleTileLanding()

	g.pushBack(stateNextTurn)
}

func (g *Game) updateNextTurn() {
	g.dice[0], g.dice[1] = 0, 0

	if !g.extraTurn {
		g.turnCount++
		g.current = g.nextPlayer()
	}

	if g.justChanged {
		g.log.Infow("turn", "count", g.turnCount, "player", g.current)
	}

	g.enqueue(protocol.TurnChanged{PlayerID: g.current}.Encode())

	g.timeBudget = turnAnimationBudget

	// A jailed player first decides whether to buy their way out.
	if p := g.Players[g.current]; p != nil && p.JailTurns > 0 {
		g.enqueue(protocol.JailCardOffer{HasCoupon: p.HasJailCoupon}.Encode())
		g.sync()
		g.choice = choiceJail
		g.pushFront(stateWaitingForChoice)
		return
	}

	g.sync()
	g.pushFront(stateWaitingForDice)
}

func (g *Game) updateWaitingForChoice() {
	p := g.Players[g.current]
	if p == nil {
		return
	}

	switch g.choice {
	case choiceJail:
		if p.ReplyJail == nil {
			g.pushFront(stateWaitingForChoice)
			return
		}
		useCard := *p.ReplyJail
		p.ReplyJail = nil

		if useCard {
			if p.HasJailCoupon {
				g.setJailCoupon(g.current, false)
			} else {
				g.subtractMoney(g.current, g.cfg.JailCouponWorth, false)
			}
			g.setJailTurns(g.current, 0)
			g.log.Debugw("released from jail", "player", g.current)
		}

		d1, d2 := g.roll()
		g.throwDice(g.current, d1, d2)
		g.pushBack(stateDiceThrown)

	case choiceProperty:
		if p.ReplyProperty == nil {
			g.pushFront(stateWaitingForChoice)
			return
		}
		buy := *p.ReplyProperty
		p.ReplyProperty = nil

		if buy {
			g.purchaseConsideredProperty()
		}
		g.sync()

	case choiceAuction:
		if p.ReplyAuction == nil {
			g.pushFront(stateWaitingForChoice)
			return
		}
		idx := *p.ReplyAuction
		p.ReplyAuction = nil

		if !g.resolveAuction(idx) {
			// Invalid reply: prompt again and keep waiting.
			g.enqueue(protocol.AuctionStarted{
				PlayerID: g.current,
				Amount:   int32(g.auctionAmount),
			}.Encode())
			g.sync()
			g.pushFront(stateWaitingForChoice)
		}
	}
}

func (g *Game) purchaseConsideredProperty() {
	prop := g.Board.Properties[g.consideredTile]
	if prop == nil {
		return
	}

	prop.Level++
	prop.Owner = g.current

	var cost int
	if prop.Level == board.Level1 {
		cost = prop.BaseCost

		monopoly := g.Board.IsGroupMonopoly(prop.Group, g.current)
		g.enqueue(protocol.GroupMonopolyChanged{Group: prop.Group, Monopoly: monopoly}.Encode())

		if monopoly && g.Board.IsGroupMonopoly(board.PairedGroup(prop.Group), g.current) {
			g.subtractMoney(g.current, cost, false)
			g.enqueue(g.propertyPacket(g.consideredTile))
			g.gameFinished(protocol.GameOverMonopoly, g.current)
			return
		}
	} else {
		cost = g.cfg.UpgradeCost
	}

	g.subtractMoney(g.current, cost, false)
	g.enqueue(g.propertyPacket(g.consideredTile))
}

// resolveAuction applies an auction reply. It returns false when the reply
// is invalid: the tile is not a property of the obligated seller, or its
// value does not cover the required amount.
func (g *Game) resolveAuction(idx byte) bool {
	if int(idx) >= board.Size {
		g.log.Debugw("auction reply out of range", "player", g.current, "tile", idx)
		return false
	}
	prop := g.Board.Properties[idx]
	if prop == nil || prop.Owner != g.current {
		g.log.Debugw("auction reply for property not owned", "player", g.current, "tile", idx)
		return false
	}

	value := prop.Value(g.cfg.UpgradeCost)
	if value < g.auctionAmount {
		g.log.Debugw("auctioned property not worth enough",
			"player", g.current, "tile", idx, "value", value, "required", g.auctionAmount)
		return false
	}

	// Selling may break a monopoly.
	if g.Board.IsGroupMonopoly(prop.Group, prop.Owner) {
		g.enqueue(protocol.GroupMonopolyChanged{Group: prop.Group, Monopoly: false}.Encode())
	}

	prop.Level = board.Unpurchased
	prop.Owner = board.NoOwner

	g.addMoney(g.current, value)
	g.enqueue(g.propertyPacket(idx))
	g.sync()

	g.log.Debugw("property auctioned", "player", g.current, "tile", idx, "value", value)
	return true
}

// nextPlayer returns the next non-bankrupt player in join order after the
// current one, wrapping around. When nobody else is eligible the current
// player keeps the turn.
func (g *Game) nextPlayer() byte {
	idx := 0
	for i, id := range g.order {
		if id == g.current {
			idx = i
			break
		}
	}

	n := len(g.order)
	for i := 1; i <= n; i++ {
		id := g.order[(idx+i)%n]
		p := g.Players[id]
		if p == nil || p.Bankrupt {
			continue
		}
		return id
	}
	return g.current
}

// RemovePlayer drops a participant that disconnected for good. The board
// keeps their holdings, matching a bankrupt player's.
func (g *Game) RemovePlayer(id byte) {
	delete(g.Players, id)
	for i, o := range g.order {
		if o == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// RequestDice handles a roll request from a client. Requests from anyone
// but the current player are ignored.
func (g *Game) RequestDice(id byte) {
	if id != g.current {
		g.log.Debugw("dice roll from wrong player", "player", id, "current", g.current)
		return
	}
	d1, d2 := g.roll()
	g.throwDice(id, d1, d2)
}

// SetAnimationDone records that a client finished animating.
func (g *Game) SetAnimationDone(id byte) {
	if p := g.Players[id]; p != nil {
		p.AnimationDone = true
	}
}

// SetPropertyReply fills the purchase-offer mailbox.
func (g *Game) SetPropertyReply(id byte, purchase bool) {
	if p := g.Players[id]; p != nil {
		v := purchase
		p.ReplyProperty = &v
	}
}

// SetJailReply fills the jail-offer mailbox.
func (g *Game) SetJailReply(id byte, useCard bool) {
	if p := g.Players[id]; p != nil {
		v := useCard
		p.ReplyJail = &v
	}
}

// SetAuctionReply fills the auction mailbox with a property tile index.
func (g *Game) SetAuctionReply(id byte, propertyIndex byte) {
	if p := g.Players[id]; p != nil {
		v := propertyIndex
		p.ReplyAuction = &v
	}
}

func (g *Game) throwDice(id byte, d1, d2 byte) {
	if id != g.current {
		return
	}
	g.dice[0], g.dice[1] = d1, d2
	g.enqueue(protocol.DiceResult{PlayerID: id, Die1: d1, Die2: d2}.Encode())
	g.sync()
}

func (g *Game) clearAnimationDone() {
	for _, p := range g.Players {
		p.AnimationDone = false
	}
}

func (g *Game) gameFinished(reason protocol.GameOverType, winner byte) {
	g.log.Infow("game over", "reason", reason, "winner", winner)
	g.enqueue(protocol.GameOver{Reason: reason, Winner: winner}.Encode())
	g.sync()
	g.finished = true
	g.out.GameEnded()
}

// sync flushes the outbox in enqueue order. Clients rely on that order to
// relate effects to causes, so it must never be reordered.
func (g *Game) sync() {
	for _, pkt := range g.queue {
		g.out.Broadcast(pkt)
	}
	g.queue = g.queue[:0]
}

// syncBoard queues a full mirror of the property ledger.
func (g *Game) syncBoard() {
	for i, p := range g.Board.Properties {
		if p == nil {
			continue
		}
		g.enqueue(g.propertyPacket(byte(i)))
	}
}

func (g *Game) propertyPacket(tile byte) []byte {
	p := g.Board.Properties[tile]
	return protocol.BoardPropertyChanged{
		Tile:     tile,
		Owner:    p.Owner,
		Level:    p.Level,
		BaseCost: int32(p.BaseCost),
		Group:    p.Group,
	}.Encode()
}

func (g *Game) enqueue(pkt []byte) {
	g.queue = append(g.queue, pkt)
}

func (g *Game) pushFront(s gameState) {
	g.states = append([]gameState{s}, g.states...)
}

func (g *Game) pushBack(s gameState) {
	g.states = append(g.states, s)
}

func (g *Game) popFront() gameState {
	s := g.states[0]
	g.states = g.states[1:]
	return s
}

func (g *Game) peekFront() (gameState, bool) {
	if len(g.states) == 0 {
		return 0, false
	}
	return g.states[0], true
}
