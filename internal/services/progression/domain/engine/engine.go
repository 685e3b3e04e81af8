// Package engine prices attribute increases on the tiered XP curve and keeps
// a character's derived totals consistent with its attributes.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
	"github.com/louisbranch/d100/internal/services/progression/domain/character"
	"github.com/louisbranch/d100/internal/services/progression/domain/derived"
	"github.com/louisbranch/d100/internal/services/progression/domain/rules"
)

// Mode selects how Recompute treats a client-declared used XP total.
type Mode int

const (
	// ModeCreate trusts the computed total and ignores any declared one.
	ModeCreate Mode = iota
	// ModeUpdate rejects a declared total that differs from the computed one.
	ModeUpdate
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ErrXPOverflow reports an XP amount too large to represent.
var ErrXPOverflow = errors.New("xp amount overflows")

// maxXP is the first float64 beyond the int range.
const maxXP = float64(math.MaxInt)

// XPMismatchError reports a declared used XP total that disagrees with the
// rules. The client must re-sync its rules before retrying. Breakdown holds
// the server's cost from base per key so the client can find the divergence.
type XPMismatchError struct {
	Expected  int
	Actual    int
	Breakdown map[attribute.Key]int
}

func (e *XPMismatchError) Error() string {
	return fmt.Sprintf("used xp mismatch: expected %d, declared %d", e.Expected, e.Actual)
}

// Engine evaluates costs against one rules repository. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	rules *rules.Repository
}

// New creates an engine bound to repo.
func New(repo *rules.Repository) *Engine {
	return &Engine{rules: repo}
}

// Rules returns the repository the engine prices against.
func (e *Engine) Rules() *rules.Repository {
	return e.rules
}

// CostBetween returns the XP needed to raise k from from to to. Points at or
// below the free base cost nothing. The total is rounded once, half away from
// zero.
func (e *Engine) CostBetween(k attribute.Key, from, to int) (int, error) {
	if to <= from {
		return 0, nil
	}
	perPoint, err := e.rules.LookupCost(k)
	if err != nil {
		return 0, err
	}
	if perPoint == 0 {
		return 0, nil
	}
	base, err := e.rules.LookupBase(k)
	if err != nil {
		return 0, err
	}
	start := max(from, base)
	if to <= start {
		return 0, nil
	}
	total := math.Round(tieredPoints(e.rules.Penalty(), start, to) * float64(perPoint))
	if total >= maxXP {
		return 0, fmt.Errorf("cost of %s from %d to %d: %w", k, from, to, ErrXPOverflow)
	}
	return int(total), nil
}

// tieredPoints weights each point in [start, to) by the multiplier of the
// tier it falls in.
func tieredPoints(p rules.PenaltyRules, start, to int) float64 {
	var total float64
	lo := math.MinInt
	multiplier := 1.0
	for i := 0; i <= len(p.Thresholds); i++ {
		hi := math.MaxInt
		if i < len(p.Thresholds) {
			hi = p.Thresholds[i]
		}
		if overlap := float64(min(hi, to)) - float64(max(lo, start)); overlap > 0 {
			total += overlap * multiplier
		}
		if i < len(p.Thresholds) {
			lo = hi
			multiplier = p.Multipliers[i]
		}
	}
	return total
}

// CostFromBase returns the XP needed to raise k from its free base to target.
func (e *Engine) CostFromBase(k attribute.Key, target int) (int, error) {
	base, err := e.rules.LookupBase(k)
	if err != nil {
		return 0, err
	}
	return e.CostBetween(k, base, target)
}

// Quote prices an increase for an attribute wire name.
func (e *Engine) Quote(name string, from, to int) (int, error) {
	k, err := attribute.Parse(name)
	if err != nil {
		return 0, err
	}
	return e.CostBetween(k, from, to)
}

// Breakdown returns the cost from base of every attribute in values.
func (e *Engine) Breakdown(values attribute.Values) (map[attribute.Key]int, error) {
	out := make(map[attribute.Key]int, attribute.Count)
	for _, k := range attribute.All() {
		cost, err := e.CostFromBase(k, values.Get(k))
		if err != nil {
			return nil, err
		}
		out[k] = cost
	}
	return out, nil
}

// UsedXP sums the cost from base across every attribute.
func (e *Engine) UsedXP(values attribute.Values) (int, error) {
	total := 0
	for _, k := range attribute.All() {
		cost, err := e.CostFromBase(k, values.Get(k))
		if err != nil {
			return 0, err
		}
		if cost > math.MaxInt-total {
			return 0, fmt.Errorf("used xp at %s: %w", k, ErrXPOverflow)
		}
		total += cost
	}
	return total, nil
}

// Result holds everything Recompute derives from a record.
type Result struct {
	UsedXP      int
	RemainingXP int
	Level       int
	Stats       derived.Stats
}

// Apply writes the derived values onto rec.
func (r Result) Apply(rec *character.Record) {
	rec.UsedXP = r.UsedXP
	rec.RemainingXP = r.RemainingXP
	rec.Level = r.Level
	rec.HP = r.Stats.HP
	rec.MP = r.Stats.MP
	rec.Build = r.Stats.Build
	rec.DamageBonus = r.Stats.DamageBonus
	rec.Move = r.Stats.Move
}

// Recompute prices rec's attributes and derives its totals. In ModeUpdate a
// declared used XP that differs from the computed total fails with
// *XPMismatchError and nothing is derived.
func (e *Engine) Recompute(rec character.Record, mode Mode) (Result, error) {
	used, err := e.UsedXP(rec.Attributes)
	if err != nil {
		return Result{}, err
	}
	if mode == ModeUpdate && rec.DeclaredUsedXP != nil && *rec.DeclaredUsedXP != used {
		breakdown, err := e.Breakdown(rec.Attributes)
		if err != nil {
			return Result{}, err
		}
		return Result{}, &XPMismatchError{Expected: used, Actual: *rec.DeclaredUsedXP, Breakdown: breakdown}
	}
	if rec.TotalXP < math.MinInt+used {
		return Result{}, fmt.Errorf("remaining xp: %w", ErrXPOverflow)
	}
	return Result{
		UsedXP:      used,
		RemainingXP: rec.TotalXP - used,
		Level:       derived.Level(used, e.rules.Level()),
		Stats:       derived.Compute(rec.Attributes),
	}, nil
}

// Refresh recomputes rec in place and stamps the rules version it was priced
// against.
func (e *Engine) Refresh(rec *character.Record, mode Mode) error {
	result, err := e.Recompute(*rec, mode)
	if err != nil {
		return err
	}
	result.Apply(rec)
	rec.RulesVersion = e.rules.Version()
	return nil
}
