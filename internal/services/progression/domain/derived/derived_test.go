package derived

import (
	"testing"

	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
	"github.com/louisbranch/d100/internal/services/progression/domain/rules"
)

func TestBuildAndDamageBonus(t *testing.T) {
	tests := []struct {
		siz, str  int
		wantBuild int
		wantBonus string
	}{
		{0, 0, -2, "-2"},
		{1, 1, -2, "-2"},
		{2, 1, -2, "-2"},
		{32, 32, -2, "-2"},
		{32, 33, -1, "-1"},
		{40, 44, -1, "-1"},
		{40, 45, 0, "0"},
		{70, 70, 0, "0"},
		{62, 62, 0, "0"},
		{62, 63, 1, "+1D3"},
		{90, 90, 2, "+1D6"},
		{82, 82, 1, "+1D3"},
		{82, 83, 2, "+1D6"},
	}
	for _, tc := range tests {
		build, bonus := BuildAndDamageBonus(tc.siz, tc.str)
		if build != tc.wantBuild || bonus != tc.wantBonus {
			t.Fatalf("BuildAndDamageBonus(%d, %d) = %d, %q; want %d, %q", tc.siz, tc.str, build, bonus, tc.wantBuild, tc.wantBonus)
		}
	}
}

func TestHPAndMP(t *testing.T) {
	if got := HP(55, 64); got != 11 {
		t.Fatalf("HP = %d, want 11", got)
	}
	if got := HP(4, 5); got != 0 {
		t.Fatalf("HP = %d, want 0", got)
	}
	if got := MP(54); got != 10 {
		t.Fatalf("MP = %d, want 10", got)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		agi, siz, str int
		want          int
	}{
		{60, 50, 50, 9},
		{40, 50, 50, 7},
		{50, 40, 60, 8},
		{50, 50, 50, 8},
		{50, 50, 40, 8},
	}
	for _, tc := range tests {
		if got := Move(tc.agi, tc.siz, tc.str); got != tc.want {
			t.Fatalf("Move(%d, %d, %d) = %d, want %d", tc.agi, tc.siz, tc.str, got, tc.want)
		}
	}
}

func TestLevel(t *testing.T) {
	lr := rules.LevelRules{BaseXP: 100000, XPPerLevel: 10000}
	tests := []struct {
		used int
		want int
	}{
		{0, 1},
		{100000, 1},
		{119999, 1},
		{125000, 2},
		{130000, 3},
	}
	for _, tc := range tests {
		if got := Level(tc.used, lr); got != tc.want {
			t.Fatalf("Level(%d) = %d, want %d", tc.used, got, tc.want)
		}
	}
	if got := Level(500, rules.LevelRules{}); got != 1 {
		t.Fatalf("Level with zero rules = %d, want 1", got)
	}
}

func TestCompute(t *testing.T) {
	var v attribute.Values
	v.Set(attribute.STA, 50)
	v.Set(attribute.SIZ, 60)
	v.Set(attribute.STR, 50)
	v.Set(attribute.WILL, 60)
	v.Set(attribute.AGI, 80)
	got := Compute(v)
	want := Stats{HP: 11, MP: 12, Build: 0, DamageBonus: "0", Move: 9}
	if got != want {
		t.Fatalf("Compute = %+v, want %+v", got, want)
	}
}

func TestFloorDivNegative(t *testing.T) {
	if got := floorDiv(-1, 10); got != -1 {
		t.Fatalf("floorDiv(-1, 10) = %d, want -1", got)
	}
	if got := floorDiv(-10, 10); got != -1 {
		t.Fatalf("floorDiv(-10, 10) = %d, want -1", got)
	}
}
