package engine

import (
	"github.com/tycoon-game/server/internal/board"
	"github.com/tycoon-game/server/internal/protocol"
)

// handleTileLanding resolves the effect of the current player's tile. It is
// called once per move and recursively for effects that relocate the player,
// so the destination tile resolves too.
func (g *Game) handleTileLanding() {
	p := g.Players[g.current]
	if p == nil {
		return
	}
	position := p.Position

	switch g.Board.Kinds[position] {
	case board.KindJail, board.KindNothing:
		// No effect.

	case board.KindGotoJail:
		g.sendToJail(g.current)

	case board.KindTrain:
		g.addMoney(g.current, g.cfg.TreasureReward)

	case board.KindTax:
		g.subtractMoney(g.current, g.cfg.TaxAmount, true)

	case board.KindBigTax:
		g.subtractMoney(g.current, g.cfg.TaxAmount*2, true)

	case board.KindUpkeep:
		owned := g.Board.OwnedCount(g.current)
		g.subtractMoney(g.current, g.cfg.TaxAmount/5*owned, true)

	case board.KindProperty:
		g.handlePropertyLanding(position)

	case board.KindChanceCard:
		g.handleChanceCard(position)
	}
}

func (g *Game) handlePropertyLanding(position byte) {
	p := g.Players[g.current]
	prop := g.Board.Properties[position]

	purchasable := (prop.Owner == board.NoOwner || prop.Owner == g.current) &&
		prop.Level != board.Level3

	if purchasable {
		cost := g.cfg.UpgradeCost
		if prop.Owner == board.NoOwner {
			cost = prop.BaseCost
		}
		affordable := p.Money >= cost

		g.enqueue(protocol.PropertyOffer{
			PlayerID:   g.current,
			Level:      prop.Level,
			Rent:       int32(prop.Rent()),
			Cost:       int32(cost),
			Affordable: affordable,
		}.Encode())
		g.sync()

		if !affordable {
			return
		}

		g.consideredTile = position
		g.choice = choiceProperty
		g.pushBack(stateWaitingForChoice)
		return
	}

	if prop.Owner == g.current || prop.Owner == board.NoOwner {
		return
	}

	// Rent is due to another player.
	owner := g.Players[prop.Owner]
	if owner == nil || owner.Bankrupt {
		return
	}
	if owner.JailTurns != 0 && !g.cfg.CollectRentInJail {
		g.log.Debugw("owner jailed, rent waived", "owner", prop.Owner)
		return
	}

	rent := prop.Rent()

	// The coupon and monopoly doublings stack multiplicatively.
	if p.HasDoubleRent {
		rent *= 2
		g.setDoubleRent(g.current, false)
	}
	if g.Board.IsGroupMonopoly(prop.Group, prop.Owner) {
		rent *= 2
	}

	paid := g.subtractMoney(g.current, rent, true)
	g.addMoney(prop.Owner, paid)
	g.log.Debugw("rent paid", "payer", g.current, "owner", prop.Owner, "amount", paid)
}

func (g *Game) handleChanceCard(position byte) {
	card := g.draw()
	g.enqueue(protocol.ChanceCardDrawn{Card: card}.Encode())
	g.log.Debugw("chance card drawn", "player", g.current, "card", card)

	switch card {
	case protocol.CardGotoJail:
		g.sendToJail(g.current)

	case protocol.CardMoneyAdd:
		g.addMoney(g.current, g.cfg.ChanceCardReward)

	case protocol.CardMoneyDeduct:
		g.subtractMoney(g.current, g.cfg.ChanceCardPenalty, true)

	case protocol.CardDoubleRentCoupon:
		g.setDoubleRent(g.current, true)

	case protocol.CardJailCoupon:
		if g.Players[g.current].HasJailCoupon {
			// A second coupon pays its cash worth instead.
			g.addMoney(g.current, g.cfg.JailCouponWorth)
		} else {
			g.setJailCoupon(g.current, true)
		}

	case protocol.CardTrainCoupon:
		g.updatePosition(g.current, g.Board.TrainIndex, protocol.MoveWalk)
		g.handleTileLanding()

	case protocol.CardMoveFourBack:
		g.updatePosition(g.current, (position+board.Size-4)%board.Size, protocol.MoveWalk)
		g.handleTileLanding()

	case protocol.CardGo:
		g.updatePosition(g.current, 0, protocol.MoveWalk)
		g.addMoney(g.current, g.cfg.PassGoReward)

	case protocol.CardForceAuction:
		if g.Board.OwnsAny(g.current) {
			g.triggerAuction(0)
		}

	case protocol.CardBlank:
		// Nothing happens.
	}
}
