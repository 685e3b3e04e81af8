package attribute

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCount(t *testing.T) {
	if Count != 71 {
		t.Fatalf("Count = %d, want 71", Count)
	}
	if Other3 != Key(Count-1) {
		t.Fatalf("Other3 = %d, want last key", Other3)
	}
	if Accounting != RES+1 {
		t.Fatalf("Accounting = %d, want %d", Accounting, RES+1)
	}
}

func TestNamesAreUniqueAndParse(t *testing.T) {
	seen := make(map[string]Key, Count)
	for _, k := range All() {
		name := k.String()
		if name == "" {
			t.Fatalf("key %d has no wire name", int(k))
		}
		if prev, ok := seen[name]; ok {
			t.Fatalf("name %q used by %d and %d", name, int(prev), int(k))
		}
		seen[name] = k
		got, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", name, err)
		}
		if got != k {
			t.Fatalf("Parse(%q) = %v, want %v", name, got, k)
		}
	}
}

func TestParseWireNames(t *testing.T) {
	tests := map[string]Key{
		"SIZ":                    SIZ,
		"Art Craft":              ArtCraft,
		"Firearms Rifle Shotgun": FirearmsRifleShotgun,
		"SPOT":                   Spot,
		" Language Own ":         LanguageOwn,
	}
	for name, want := range tests {
		got, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	for _, name := range []string{"Hacking", "siz", "", "Spot"} {
		_, err := Parse(name)
		var unknown *UnknownAttributeError
		if !errors.As(err, &unknown) {
			t.Fatalf("Parse(%q) err = %v, want UnknownAttributeError", name, err)
		}
		if unknown.Name != name {
			t.Fatalf("Name = %q, want %q", unknown.Name, name)
		}
	}
}

func TestKeyStringInvalid(t *testing.T) {
	if got := Key(-1).String(); got != "Key(-1)" {
		t.Fatalf("String = %q", got)
	}
	if Key(Count).Valid() {
		t.Fatal("expected Count to be invalid")
	}
}

func TestValuesJSON(t *testing.T) {
	var v Values
	v.Set(STA, 60)
	v.Set(ArtCraft, 25)

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Values
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != v {
		t.Fatalf("decoded = %v, want %v", decoded, v)
	}
	if decoded.Get(ArtCraft) != 25 {
		t.Fatalf("Art Craft = %d, want 25", decoded.Get(ArtCraft))
	}
}

func TestValuesUnmarshalRejectsUnknownName(t *testing.T) {
	var v Values
	err := json.Unmarshal([]byte(`{"STA":50,"Hacking":40}`), &v)
	var unknown *UnknownAttributeError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownAttributeError", err)
	}
	if unknown.Name != "Hacking" {
		t.Fatalf("Name = %q, want Hacking", unknown.Name)
	}
}

func TestFromMapLeavesMissingZero(t *testing.T) {
	v, err := FromMap(map[string]int{"WILL": 55})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if v.Get(WILL) != 55 || v.Get(STR) != 0 {
		t.Fatalf("values = %v", v)
	}
}

func TestFromMapRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		value int
	}{
		{name: "ARMOR", value: 1_000_000_000_000_000_000},
		{name: "SIZ", value: MaxValue + 1},
		{name: "Climb", value: MinValue - 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromMap(map[string]int{tc.name: tc.value})
			var outOfRange *OutOfRangeError
			if !errors.As(err, &outOfRange) {
				t.Fatalf("err = %v, want OutOfRangeError", err)
			}
			if outOfRange.Name != tc.name || outOfRange.Value != tc.value {
				t.Fatalf("error = %+v, want %s=%d", outOfRange, tc.name, tc.value)
			}
		})
	}
}

func TestFromMapAcceptsRangeBounds(t *testing.T) {
	v, err := FromMap(map[string]int{"BONUS": MinValue, "ARMOR": MaxValue})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if v.Get(BONUS) != MinValue || v.Get(ARMOR) != MaxValue {
		t.Fatalf("values = %v", v)
	}
}
