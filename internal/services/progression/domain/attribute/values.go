package attribute

import (
	"encoding/json"
	"fmt"
)

// Accepted attribute values. Anything wider has no meaning on a percentile
// sheet and would only push XP totals toward overflow.
const (
	MinValue = -999
	MaxValue = 999
)

// OutOfRangeError reports a value outside [MinValue, MaxValue].
type OutOfRangeError struct {
	Name  string
	Value int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("attribute %q value %d outside [%d, %d]", e.Name, e.Value, MinValue, MaxValue)
}

// InRange reports whether n is an accepted attribute value.
func InRange(n int) bool {
	return n >= MinValue && n <= MaxValue
}

// Values holds one integer per key. Keys never set read as zero.
type Values [Count]int

// Get returns the value for k.
func (v *Values) Get(k Key) int {
	return v[k]
}

// Set stores n for k.
func (v *Values) Set(k Key, n int) {
	v[k] = n
}

// FromMap builds Values from wire names. Unknown names fail with
// *UnknownAttributeError and values out of range with *OutOfRangeError;
// missing names stay zero.
func FromMap(m map[string]int) (Values, error) {
	var v Values
	for name, n := range m {
		k, err := Parse(name)
		if err != nil {
			return Values{}, err
		}
		if !InRange(n) {
			return Values{}, &OutOfRangeError{Name: names[k], Value: n}
		}
		v[k] = n
	}
	return v, nil
}

// Map returns every key keyed by wire name.
func (v Values) Map() map[string]int {
	m := make(map[string]int, Count)
	for k, n := range v {
		m[names[k]] = n
	}
	return m
}

// MarshalJSON encodes the values as an object keyed by wire name.
func (v Values) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON decodes an object keyed by wire name.
func (v *Values) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode attributes: %w", err)
	}
	parsed, err := FromMap(m)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
