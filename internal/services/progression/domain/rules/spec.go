// Package rules holds the data-only progression rules: free base values, XP
// cost per point, tier penalties and level thresholds.
package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
	"gopkg.in/yaml.v3"
)

// Format names a rules file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// PenaltyRules are parallel arrays: Thresholds[i] starts Multipliers[i].
// Below Thresholds[0] the multiplier is 1.
type PenaltyRules struct {
	Thresholds  []int
	Multipliers []float64
}

// LevelRules converts spent XP into a level.
type LevelRules struct {
	BaseXP     int
	XPPerLevel int
}

// Spec is one version of the progression rules.
type Spec struct {
	Version string
	Base    map[attribute.Key]int
	Cost    map[attribute.Key]int
	Penalty PenaltyRules
	Level   LevelRules
}

// InvalidRulesSpecError reports a rules table that cannot drive the engine.
type InvalidRulesSpecError struct {
	Reason string
	Err    error
}

func (e *InvalidRulesSpecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid rules spec: %s: %v", e.Reason, e.Err)
	}
	return "invalid rules spec: " + e.Reason
}

func (e *InvalidRulesSpecError) Unwrap() error {
	return e.Err
}

func invalid(format string, args ...any) error {
	return &InvalidRulesSpecError{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the structural invariants of s. Both tables must price
// every attribute key.
func (s Spec) Validate() error {
	p := s.Penalty
	if len(p.Thresholds) != len(p.Multipliers) {
		return invalid("penalty thresholds (%d) and multipliers (%d) differ in length", len(p.Thresholds), len(p.Multipliers))
	}
	for i := range p.Thresholds {
		if math.IsNaN(p.Multipliers[i]) || math.IsInf(p.Multipliers[i], 0) || p.Multipliers[i] < 0 {
			return invalid("penalty multiplier %d is not a finite non-negative number", i)
		}
		if i == 0 {
			continue
		}
		if p.Thresholds[i] <= p.Thresholds[i-1] {
			return invalid("penalty thresholds must be strictly increasing at index %d", i)
		}
		if p.Multipliers[i] < p.Multipliers[i-1] {
			return invalid("penalty multipliers must be non-decreasing at index %d", i)
		}
	}
	if s.Level.XPPerLevel <= 0 {
		return invalid("level xpPerLevel must be greater than zero")
	}
	if s.Level.BaseXP < 0 {
		return invalid("level baseXP must not be negative")
	}
	for _, table := range []struct {
		name   string
		values map[attribute.Key]int
	}{{"base", s.Base}, {"cost", s.Cost}} {
		for k, v := range table.values {
			if !k.Valid() {
				return invalid("%s has an unknown key %d", table.name, int(k))
			}
			if v < 0 {
				return invalid("%s %q must not be negative", table.name, k.String())
			}
		}
		for _, k := range attribute.All() {
			if _, ok := table.values[k]; !ok {
				return &InvalidRulesSpecError{
					Reason: table.name + " table is incomplete",
					Err:    &attribute.UnknownAttributeError{Name: k.String()},
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of s.
func (s Spec) Clone() Spec {
	out := Spec{
		Version: s.Version,
		Base:    cloneTable(s.Base),
		Cost:    cloneTable(s.Cost),
		Penalty: PenaltyRules{
			Thresholds:  append([]int(nil), s.Penalty.Thresholds...),
			Multipliers: append([]float64(nil), s.Penalty.Multipliers...),
		},
		Level: s.Level,
	}
	return out
}

func cloneTable(in map[attribute.Key]int) map[attribute.Key]int {
	out := make(map[attribute.Key]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// document is the public rules contract shared with clients.
type document struct {
	Version      string         `json:"version" yaml:"version"`
	Base         map[string]int `json:"base" yaml:"base"`
	Cost         map[string]int `json:"cost" yaml:"cost"`
	PenaltyRules penaltyDoc     `json:"penaltyRules" yaml:"penaltyRules"`
	LevelRules   levelDoc       `json:"levelRules" yaml:"levelRules"`
}

type penaltyDoc struct {
	Thresholds  []int     `json:"thresholds" yaml:"thresholds"`
	Multipliers []float64 `json:"multipliers" yaml:"multipliers"`
}

type levelDoc struct {
	BaseXP     int `json:"baseXP" yaml:"baseXP"`
	XPPerLevel int `json:"xpPerLevel" yaml:"xpPerLevel"`
}

func (s Spec) toDocument() document {
	doc := document{
		Version: s.Version,
		Base:    tableToNames(s.Base),
		Cost:    tableToNames(s.Cost),
		PenaltyRules: penaltyDoc{
			Thresholds:  append([]int{}, s.Penalty.Thresholds...),
			Multipliers: append([]float64{}, s.Penalty.Multipliers...),
		},
		LevelRules: levelDoc{BaseXP: s.Level.BaseXP, XPPerLevel: s.Level.XPPerLevel},
	}
	return doc
}

func tableToNames(in map[attribute.Key]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k.String()] = v
	}
	return out
}

func (d document) toSpec() (Spec, error) {
	base, err := namesToTable("base", d.Base)
	if err != nil {
		return Spec{}, err
	}
	cost, err := namesToTable("cost", d.Cost)
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		Version: strings.TrimSpace(d.Version),
		Base:    base,
		Cost:    cost,
		Penalty: PenaltyRules{
			Thresholds:  d.PenaltyRules.Thresholds,
			Multipliers: d.PenaltyRules.Multipliers,
		},
		Level: LevelRules{BaseXP: d.LevelRules.BaseXP, XPPerLevel: d.LevelRules.XPPerLevel},
	}, nil
}

func namesToTable(table string, in map[string]int) (map[attribute.Key]int, error) {
	out := make(map[attribute.Key]int, len(in))
	for name, v := range in {
		k, err := attribute.Parse(name)
		if err != nil {
			return nil, &InvalidRulesSpecError{Reason: table + " table", Err: err}
		}
		out[k] = v
	}
	return out, nil
}

// MarshalJSON encodes s with the public contract field names.
func (s Spec) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toDocument())
}

// UnmarshalJSON decodes the public contract. Unknown attribute names fail.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	spec, err := doc.toSpec()
	if err != nil {
		return err
	}
	*s = spec
	return nil
}

// Decode parses and validates a rules document.
func Decode(data []byte, format Format) (Spec, error) {
	var doc document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return Spec{}, &InvalidRulesSpecError{Reason: "decode yaml", Err: err}
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return Spec{}, &InvalidRulesSpecError{Reason: "decode json", Err: err}
		}
	default:
		return Spec{}, fmt.Errorf("unsupported rules format %q", format)
	}
	spec, err := doc.toSpec()
	if err != nil {
		return Spec{}, err
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Encode renders s in the requested format.
func Encode(s Spec, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s.toDocument())
	case FormatJSON:
		return json.MarshalIndent(s.toDocument(), "", "  ")
	default:
		return nil, fmt.Errorf("unsupported rules format %q", format)
	}
}

// IsInvalid reports whether err carries an *InvalidRulesSpecError.
func IsInvalid(err error) bool {
	var target *InvalidRulesSpecError
	return errors.As(err, &target)
}
