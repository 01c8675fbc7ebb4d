// Package board holds the static tile topology of the game board and the
// mutable property ledger that the engine drives during a game.
package board

import "math"

// Size is the number of tiles on the board.
const Size = 32

// NoOwner marks a property that no player owns.
const NoOwner byte = 0xFF

// TileKind is the category of a board position and decides which effect
// fires when a player lands on it.
type TileKind byte

const (
	KindProperty TileKind = iota
	KindGotoJail
	KindJail
	KindChanceCard
	KindNothing
	KindTrain
	KindTax
	KindUpkeep
	KindBigTax
)

// BuildingLevel is the purchase/upgrade state of a property tile.
type BuildingLevel byte

const (
	Unpurchased BuildingLevel = iota
	Level1
	Level2
	Level3
)

const (
	basicRentMultiplier    = 0.30
	perLevelRentMultiplier = 0.25
)

// Property is the mutable ledger entry of one purchasable tile.
// Invariant: Owner == NoOwner exactly when Level == Unpurchased.
type Property struct {
	BaseCost int
	Group    byte
	Owner    byte
	Level    BuildingLevel
}

// Rent is the amount a visiting player pays the owner, before any
// coupon or monopoly multiplier.
func (p *Property) Rent() int {
	return int(math.Round(float64(p.BaseCost) *
		(basicRentMultiplier + perLevelRentMultiplier*float64(int(p.Level)-1))))
}

// Value is what a forced sale of the property pays out, including the
// money sunk into upgrades.
func (p *Property) Value(upgradeCost int) int {
	return p.BaseCost + upgradeCost*(int(p.Level)-1)
}

// Board is the static tile layout plus the per-tile property state.
// It is owned exclusively by one game instance and is not safe for
// concurrent mutation.
type Board struct {
	Kinds      [Size]TileKind
	Properties [Size]*Property

	JailIndex  byte
	TrainIndex byte
}

// IsGroupMonopoly reports whether every property in the group is owned by
// owner. A group with any unowned property is never a monopoly.
func (b *Board) IsGroupMonopoly(group, owner byte) bool {
	if owner == NoOwner {
		return false
	}
	found := false
	for _, p := range b.Properties {
		if p == nil || p.Group != group {
			continue
		}
		found = true
		if p.Owner != owner {
			return false
		}
	}
	return found
}

// PairedGroup returns the sibling group that, together with group, makes up
// a full monopoly win. Groups are paired (0,1), (2,3), (4,5), (6,7).
func PairedGroup(group byte) byte {
	other := group - group%2
	if other == group {
		other++
	}
	return other
}

// OwnedCount returns how many properties the player owns.
func (b *Board) OwnedCount(owner byte) int {
	n := 0
	for _, p := range b.Properties {
		if p != nil && p.Owner == owner {
			n++
		}
	}
	return n
}

// OwnsAny reports whether the player owns at least one property.
func (b *Board) OwnsAny(owner byte) bool {
	return b.OwnedCount(owner) > 0
}

// MostValuableOwned returns the highest resale value among the player's
// properties, or 0 when they own none.
func (b *Board) MostValuableOwned(owner byte, upgradeCost int) int {
	most := 0
	for _, p := range b.Properties {
		if p == nil || p.Owner != owner {
			continue
		}
		if v := p.Value(upgradeCost); v > most {
			most = v
		}
	}
	return most
}

// GenerateStandard builds the fixed 32-tile layout. The layout is
// deterministic: costs and monopoly groups are hard-coded.
func GenerateStandard() *Board {
	b := &Board{
		JailIndex:  8,
		TrainIndex: 16,
	}

	kinds := map[int]TileKind{
		0:  KindNothing, // start
		4:  KindChanceCard,
		5:  KindTax,
		8:  KindJail,
		12: KindChanceCard,
		13: KindUpkeep,
		16: KindTrain,
		20: KindChanceCard,
		24: KindGotoJail,
		26: KindBigTax,
		28: KindChanceCard,
	}
	for i := range b.Kinds {
		if k, ok := kinds[i]; ok {
			b.Kinds[i] = k
		} else {
			b.Kinds[i] = KindProperty
		}
	}

	property := func(tile int, cost int, group byte) {
		b.Properties[tile] = &Property{BaseCost: cost, Group: group, Owner: NoOwner}
	}

	property(1, 3400, 0)
	property(2, 2900, 0)
	property(3, 2700, 0)

	property(6, 5600, 1)
	property(7, 5000, 1)

	property(9, 8200, 2)
	property(10, 6400, 2)
	property(11, 7100, 2)

	property(14, 9000, 3)
	property(15, 8400, 3)

	property(17, 5700, 4)
	property(18, 4100, 4)
	property(19, 6900, 4)

	property(21, 6200, 5)
	property(22, 6800, 5)
	property(23, 8500, 5)

	property(25, 9500, 6)
	property(27, 11000, 6)

	property(29, 7600, 7)
	property(30, 8200, 7)
	property(31, 7400, 7)

	return b
}
