package domain

// Tier is one of nine ordered ranking bands. Users are reassigned to a
// tier at every weekly reset based on relative weekly performance.
type Tier string

const (
	TierWood     Tier = "Wood"
	TierStone    Tier = "Stone"
	TierIron     Tier = "Iron"
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
	TierDiamond  Tier = "Diamond"
	TierTitanium Tier = "Titanium"
)

// Tiers lists all tiers from lowest to highest.
var Tiers = []Tier{
	TierWood, TierStone, TierIron, TierBronze, TierSilver,
	TierGold, TierPlatinum, TierDiamond, TierTitanium,
}

// Index returns the tier's position in the ordered list, or -1 for an
// unknown tier name.
func (t Tier) Index() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

// Valid reports whether t is a member of the fixed enumeration.
func (t Tier) Valid() bool {
	return t.Index() >= 0
}

// Outranks reports whether t is a higher tier than other.
func (t Tier) Outranks(other Tier) bool {
	return t.Index() > other.Index()
}

func (t Tier) String() string {
	return string(t)
}
