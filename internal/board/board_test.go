package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStandardLayout(t *testing.T) {
	b := GenerateStandard()

	require.Len(t, b.Kinds, Size)
	assert.Equal(t, KindNothing, b.Kinds[0], "start tile has no effect")
	assert.Equal(t, KindJail, b.Kinds[b.JailIndex])
	assert.Equal(t, KindTrain, b.Kinds[b.TrainIndex])

	properties := 0
	for i, kind := range b.Kinds {
		prop := b.Properties[i]
		if kind == KindProperty {
			properties++
			require.NotNil(t, prop, "tile %d", i)
			assert.Equal(t, byte(NoOwner), prop.Owner, "tile %d", i)
			assert.Equal(t, Unpurchased, prop.Level, "tile %d", i)
			assert.Positive(t, prop.BaseCost, "tile %d", i)
			assert.Less(t, prop.Group, byte(8), "tile %d", i)
		} else {
			assert.Nil(t, prop, "tile %d", i)
		}
	}
	assert.Equal(t, 21, properties)
}

func TestRentGrowsWithLevel(t *testing.T) {
	p := &Property{BaseCost: 8200}

	prev := 0
	for level := Level1; level <= Level3; level++ {
		p.Level = level
		rent := p.Rent()
		assert.Greater(t, rent, prev, "level %d", level)
		prev = rent
	}
}

func TestRentFormula(t *testing.T) {
	// 30% of base at level one, plus 25% per further level.
	p := &Property{BaseCost: 10000, Level: Level1}
	assert.Equal(t, 3000, p.Rent())

	p.Level = Level2
	assert.Equal(t, 5500, p.Rent())

	p.Level = Level3
	assert.Equal(t, 8000, p.Rent())
}

func TestValueIncludesUpgrades(t *testing.T) {
	p := &Property{BaseCost: 3400, Level: Level1}
	assert.Equal(t, 3400, p.Value(5000))

	p.Level = Level3
	assert.Equal(t, 3400+2*5000, p.Value(5000))
}

func TestIsGroupMonopoly(t *testing.T) {
	b := GenerateStandard()

	// Group 0 is tiles 1, 2, 3.
	assert.False(t, b.IsGroupMonopoly(0, 1), "nothing owned")

	b.Properties[1].Owner = 1
	b.Properties[2].Owner = 1
	assert.False(t, b.IsGroupMonopoly(0, 1), "one tile short")

	b.Properties[3].Owner = 1
	assert.True(t, b.IsGroupMonopoly(0, 1))
	assert.False(t, b.IsGroupMonopoly(0, 2), "different owner")

	b.Properties[2].Owner = 2
	assert.False(t, b.IsGroupMonopoly(0, 1), "broken by sale")
}

func TestIsGroupMonopolyNoOwner(t *testing.T) {
	b := GenerateStandard()
	// Every tile starts at NoOwner; that must never read as a monopoly.
	for group := byte(0); group < 8; group++ {
		assert.False(t, b.IsGroupMonopoly(group, NoOwner), "group %d", group)
	}
}

func TestPairedGroup(t *testing.T) {
	tests := []struct {
		group byte
		want  byte
	}{
		{0, 1},
		{1, 0},
		{2, 3},
		{3, 2},
		{4, 5},
		{5, 4},
		{6, 7},
		{7, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PairedGroup(tt.group), "group %d", tt.group)
	}
}

func TestOwnedCountAndOwnsAny(t *testing.T) {
	b := GenerateStandard()

	assert.Zero(t, b.OwnedCount(1))
	assert.False(t, b.OwnsAny(1))

	b.Properties[1].Owner = 1
	b.Properties[9].Owner = 1
	b.Properties[25].Owner = 2

	assert.Equal(t, 2, b.OwnedCount(1))
	assert.True(t, b.OwnsAny(1))
	assert.Equal(t, 1, b.OwnedCount(2))
	assert.False(t, b.OwnsAny(3))
}

func TestMostValuableOwned(t *testing.T) {
	b := GenerateStandard()
	const upgradeCost = 5000

	assert.Zero(t, b.MostValuableOwned(1, upgradeCost), "no holdings")

	b.Properties[1].Owner = 1 // base 3400
	b.Properties[1].Level = Level1
	assert.Equal(t, 3400, b.MostValuableOwned(1, upgradeCost))

	b.Properties[9].Owner = 1 // base 8200
	b.Properties[9].Level = Level2
	assert.Equal(t, 8200+upgradeCost, b.MostValuableOwned(1, upgradeCost))
}
