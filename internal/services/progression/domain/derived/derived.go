// Package derived computes secondary character stats from attribute values.
package derived

import (
	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
	"github.com/louisbranch/d100/internal/services/progression/domain/rules"
)

// Stats are the secondary values shown on a character sheet.
type Stats struct {
	HP          int
	MP          int
	Build       int
	DamageBonus string
	Move        int
}

// Compute derives every stat from values.
func Compute(values attribute.Values) Stats {
	build, bonus := BuildAndDamageBonus(values.Get(attribute.SIZ), values.Get(attribute.STR))
	return Stats{
		HP:          HP(values.Get(attribute.STA), values.Get(attribute.SIZ)),
		MP:          MP(values.Get(attribute.WILL)),
		Build:       build,
		DamageBonus: bonus,
		Move:        Move(values.Get(attribute.AGI), values.Get(attribute.SIZ), values.Get(attribute.STR)),
	}
}

// HP is floor((STA + SIZ) / 10).
func HP(sta, siz int) int {
	return floorDiv(sta+siz, 10)
}

// MP is floor(WILL / 5).
func MP(will int) int {
	return floorDiv(will, 5)
}

type buildTier struct {
	upTo  int
	build int
	bonus string
}

// Tiers are inclusive upper bounds on SIZ + STR. Totals of 2 or less share
// the lowest tier.
var buildTiers = []buildTier{
	{upTo: 64, build: -2, bonus: "-2"},
	{upTo: 84, build: -1, bonus: "-1"},
	{upTo: 124, build: 0, bonus: "0"},
	{upTo: 164, build: 1, bonus: "+1D3"},
}

// BuildAndDamageBonus maps SIZ + STR onto the build tier table.
func BuildAndDamageBonus(siz, str int) (int, string) {
	total := siz + str
	for _, tier := range buildTiers {
		if total <= tier.upTo {
			return tier.build, tier.bonus
		}
	}
	return 2, "+1D6"
}

// Move is 8, raised to 9 when AGI beats both SIZ and STR and lowered to 7
// when it trails both.
func Move(agi, siz, str int) int {
	switch {
	case agi > siz && agi > str:
		return 9
	case agi < siz && agi < str:
		return 7
	default:
		return 8
	}
}

// Level converts spent XP into a level, never below 1.
func Level(usedXP int, lr rules.LevelRules) int {
	if lr.XPPerLevel <= 0 {
		return 1
	}
	return max(1, floorDiv(usedXP-lr.BaseXP, lr.XPPerLevel))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
