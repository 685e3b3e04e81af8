package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
)

//go:embed data/rules.v1.json
var defaultRulesJSON []byte

var (
	loadDefaultOnce sync.Once
	defaultRepo     *Repository
	defaultErr      error
)

// Repository serves one immutable rules spec to concurrent readers.
type Repository struct {
	spec Spec
}

// NewRepository validates spec and freezes a private copy of it.
func NewRepository(spec Spec) (*Repository, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Repository{spec: spec.Clone()}, nil
}

// Default returns the repository for the embedded canonical rules bundle.
func Default() (*Repository, error) {
	loadDefaultOnce.Do(func() {
		spec, err := Decode(defaultRulesJSON, FormatJSON)
		if err != nil {
			defaultErr = fmt.Errorf("embedded rules: %w", err)
			return
		}
		defaultRepo, defaultErr = NewRepository(spec)
	})
	return defaultRepo, defaultErr
}

// Load builds a repository from a JSON or YAML rules file.
func Load(path string) (*Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("rules path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	spec, err := Decode(data, FormatForPath(path))
	if err != nil {
		return nil, err
	}
	return NewRepository(spec)
}

// LoadOrDefault loads path when set and falls back to the embedded bundle.
func LoadOrDefault(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return Load(path)
}

// Get returns a copy of the active spec.
func (r *Repository) Get() Spec {
	return r.spec.Clone()
}

// Version returns the rules bundle version.
func (r *Repository) Version() string {
	return r.spec.Version
}

// Penalty returns a copy of the tier penalty arrays.
func (r *Repository) Penalty() PenaltyRules {
	return PenaltyRules{
		Thresholds:  append([]int(nil), r.spec.Penalty.Thresholds...),
		Multipliers: append([]float64(nil), r.spec.Penalty.Multipliers...),
	}
}

// Level returns the level rules.
func (r *Repository) Level() LevelRules {
	return r.spec.Level
}

// LookupBase returns the free base value for k. Only a key outside the
// enumeration can miss, failing with *attribute.UnknownAttributeError; zero is
// a valid entry.
func (r *Repository) LookupBase(k attribute.Key) (int, error) {
	return lookup(r.spec.Base, k)
}

// LookupCost returns the XP cost per point for k.
func (r *Repository) LookupCost(k attribute.Key) (int, error) {
	return lookup(r.spec.Cost, k)
}

// LookupBaseByName resolves name and returns its base value.
func (r *Repository) LookupBaseByName(name string) (int, error) {
	k, err := attribute.Parse(name)
	if err != nil {
		return 0, err
	}
	return r.LookupBase(k)
}

// LookupCostByName resolves name and returns its cost per point.
func (r *Repository) LookupCostByName(name string) (int, error) {
	k, err := attribute.Parse(name)
	if err != nil {
		return 0, err
	}
	return r.LookupCost(k)
}

func lookup(table map[attribute.Key]int, k attribute.Key) (int, error) {
	v, ok := table[k]
	if !ok {
		return 0, &attribute.UnknownAttributeError{Name: k.String()}
	}
	return v, nil
}
