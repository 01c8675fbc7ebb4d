package engine

// Config carries every gameplay constant. It is supplied at lobby
// construction and never mutated afterwards; the engine treats it as the
// single source of truth for amounts that have differed between revisions
// of the game (pass-go reward, chance-card amounts, jailed-owner rent).
type Config struct {
	// MaxPlayers caps how many sessions a lobby accepts.
	MaxPlayers int

	// StartMoney is credited to every player on the first tick of a game.
	StartMoney int

	// SentenceDuration is the number of turns a jail sentence lasts.
	SentenceDuration byte

	// PassGoReward is paid when a move wraps past the last tile.
	PassGoReward int

	// CollectRentInJail controls whether a jailed owner still collects rent.
	CollectRentInJail bool

	// TaxAmount is the tax-tile debit; the big-tax tile charges double and
	// the upkeep tile charges TaxAmount/5 per owned property.
	TaxAmount int

	// TreasureReward is the train/treasure-tile credit.
	TreasureReward int

	// ChanceCardReward and ChanceCardPenalty are the flat chance-card
	// credit and debit amounts.
	ChanceCardReward  int
	ChanceCardPenalty int

	// JailCouponWorth is the cash value of a jail coupon: paid out when a
	// duplicate coupon is drawn, and charged as bail when a jailed player
	// buys their way out without one.
	JailCouponWorth int

	// UpgradeCost is the price of raising a property one building level.
	UpgradeCost int
}

// StandardConfig returns the default rule set.
func StandardConfig() Config {
	return Config{
		MaxPlayers:        4,
		StartMoney:        20000,
		SentenceDuration:  3,
		PassGoReward:      3000,
		CollectRentInJail: true,
		TaxAmount:         3000,
		TreasureReward:    6000,
		ChanceCardReward:  5000,
		ChanceCardPenalty: 1500,
		JailCouponWorth:   4000,
		UpgradeCost:       5000,
	}
}
