package domain

import "fmt"

// Powerup is a single-use consumable effect applied within one quiz
// session. The set is closed: effect dispatch switches exhaustively over
// these four kinds.
type Powerup string

const (
	// PowerupStreakSponsor increases the in-session streak by 1 immediately.
	PowerupStreakSponsor Powerup = "streak_sponsor"
	// PowerupDoubleLife grants one extra wrong-answer tolerance on the
	// current question only.
	PowerupDoubleLife Powerup = "double_life"
	// PowerupFreezeFrame suppresses streak resets on wrong answers for the
	// remainder of the session.
	PowerupFreezeFrame Powerup = "freeze_frame"
	// PowerupDoublePoints doubles the points (won or lost) for the next
	// scored question.
	PowerupDoublePoints Powerup = "double_points"
)

// Powerups lists all powerup kinds in a stable order.
var Powerups = []Powerup{
	PowerupStreakSponsor, PowerupDoubleLife, PowerupFreezeFrame, PowerupDoublePoints,
}

// ParsePowerup maps a wire name to a powerup kind.
func ParsePowerup(name string) (Powerup, error) {
	for _, p := range Powerups {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPowerup, name)
}

func (p Powerup) String() string {
	return string(p)
}

// Inventory maps powerup kinds to owned counts.
type Inventory map[Powerup]int

// NewInventory returns an inventory with every kind at the given count.
func NewInventory(count int) Inventory {
	inv := make(Inventory, len(Powerups))
	for _, p := range Powerups {
		inv[p] = count
	}
	return inv
}

// Add merges other into the inventory.
func (inv Inventory) Add(other Inventory) {
	for p, n := range other {
		inv[p] += n
	}
}

// Total sums all counts.
func (inv Inventory) Total() int {
	total := 0
	for _, n := range inv {
		total += n
	}
	return total
}

// PowerupConfig holds the static reward tables distributed at the weekly
// reset. Immutable for the process lifetime.
type PowerupConfig struct {
	Promotion Inventory
	Demotion  Inventory
	Top       map[int]Inventory // tier rank (1..3) -> reward set
}

// DefaultPowerupConfig mirrors the production reward tables.
func DefaultPowerupConfig() PowerupConfig {
	return PowerupConfig{
		Promotion: NewInventory(2),
		Demotion:  NewInventory(1),
		Top: map[int]Inventory{
			1: NewInventory(3),
			2: NewInventory(2),
			3: NewInventory(1),
		},
	}
}
