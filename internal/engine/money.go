package engine

import "github.com/tycoon-game/server/internal/protocol"

// setMoney assigns a player's balance and queues the change for clients.
func (g *Game) setMoney(id byte, amount int) {
	p := g.Players[id]
	if p == nil {
		return
	}
	increased := amount > p.Money
	p.Money = amount

	g.enqueue(protocol.MoneyChanged{
		PlayerID:  id,
		NewAmount: int32(amount),
		Increased: increased,
	}.Encode())
}

func (g *Game) addMoney(id byte, income int) {
	if p := g.Players[id]; p != nil {
		g.setMoney(id, p.Money+income)
	}
}

// subtractMoney charges a player. When escalate is set and the balance goes
// negative, the shortfall policy applies: if the player's single most
// valuable property covers the deficit, an auction for exactly the deficit
// is triggered; otherwise the player goes bankrupt with the balance clamped
// to zero. The return value is the amount actually collectable, which for a
// bankruptcy is less than the requested charge.
func (g *Game) subtractMoney(id byte, loss int, escalate bool) int {
	p := g.Players[id]
	if p == nil {
		return 0
	}

	g.setMoney(id, p.Money-loss)

	if p.Money >= 0 || !escalate {
		return loss
	}

	deficit := -p.Money
	mostValuable := g.Board.MostValuableOwned(id, g.cfg.UpgradeCost)

	if deficit > mostValuable {
		p.Bankrupt = true
		g.setMoney(id, 0)
		g.enqueue(protocol.PlayerBankrupt{PlayerID: id}.Encode())
		g.log.Infow("player bankrupt", "player", id, "deficit", deficit)
		return loss - deficit
	}

	g.triggerAuction(deficit)
	return loss
}

// updatePosition moves a player and queues the change. Positions always
// wrap to the board size.
func (g *Game) updatePosition(id byte, newPosition byte, move protocol.MoveType) {
	p := g.Players[id]
	if p == nil {
		return
	}
	newPosition %= byte(len(g.Board.Kinds))
	p.Position = newPosition

	g.enqueue(protocol.PositionChanged{
		PlayerID: id,
		Position: newPosition,
		Move:     move,
	}.Encode())
}

func (g *Game) setJailTurns(id byte, turns byte) {
	p := g.Players[id]
	if p == nil {
		return
	}
	p.JailTurns = turns
	g.enqueue(protocol.JailStatus{PlayerID: id, TurnsLeft: turns}.Encode())
}

func (g *Game) setJailCoupon(id byte, status bool) {
	p := g.Players[id]
	if p == nil {
		return
	}
	p.HasJailCoupon = status
	g.enqueue(protocol.JailCouponStatus{PlayerID: id, Active: status}.Encode())
}

func (g *Game) setDoubleRent(id byte, status bool) {
	p := g.Players[id]
	if p == nil {
		return
	}
	p.HasDoubleRent = status
	g.enqueue(protocol.DoubleRentStatus{PlayerID: id, Active: status}.Encode())
}

// sendToJail relocates a player to the jail tile and starts their sentence.
// A held jail coupon is consumed instead.
func (g *Game) sendToJail(id byte) {
	p := g.Players[id]
	if p == nil {
		return
	}

	if p.HasJailCoupon {
		g.setJailCoupon(id, false)
		return
	}

	p.Position = g.Board.JailIndex
	p.JailTurns = g.cfg.SentenceDuration

	g.enqueue(protocol.JailStatus{PlayerID: id, TurnsLeft: g.cfg.SentenceDuration}.Encode())
	g.enqueue(protocol.PositionChanged{
		PlayerID: id,
		Position: g.Board.JailIndex,
		Move:     protocol.MoveDirect,
	}.Encode())

	if front, ok := g.peekFront(); !ok || front != stateWaitingForAnimation {
		g.pushBack(stateWaitingForAnimation)
	}
}

// triggerAuction obliges the current player to sell a property worth at
// least amount and blocks the machine on their reply.
func (g *Game) triggerAuction(amount int) {
	g.auctionAmount = amount
	g.choice = choiceAuction
	g.pushFront(stateWaitingForChoice)

	g.enqueue(protocol.AuctionStarted{
		PlayerID: g.current,
		Amount:   int32(amount),
	}.Encode())
	g.sync()
}
